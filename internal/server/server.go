package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/vote-tally/backend/internal/config"
	"github.com/emilythestrangee/vote-tally/backend/internal/handlers"
	"github.com/emilythestrangee/vote-tally/backend/internal/service"
)

// HealthFunc reports the health of the backing store.
type HealthFunc func() map[string]string

type Server struct {
	handler *handlers.Handler
	health  HealthFunc
	logger  *slog.Logger
	dev     bool
}

func New(cfg *config.Config, svc *service.VoteService, health HealthFunc, logger *slog.Logger) *Server {
	return &Server{
		handler: handlers.NewHandler(svc, logger),
		health:  health,
		logger:  logger,
		dev:     cfg.IsDevelopment(),
	}
}

// HTTPServer wraps the router in an http.Server listening on cfg's address
func (s *Server) HTTPServer(cfg *config.Config) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		stats := s.health()
		status := http.StatusOK
		if stats["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, stats)
	})

	api := r.Group("/api")
	{
		// Stateless engine
		api.POST("/tally/apply", s.handler.Tally.Apply)
		api.POST("/tally/derive", s.handler.Tally.Derive)

		// Posts
		api.GET("/posts", s.handler.Post.GetPosts)
		api.POST("/posts", s.handler.Post.CreatePost)
		api.GET("/posts/:id", s.handler.Post.GetPost)
		api.DELETE("/posts/:id", s.handler.Post.DeletePost)
		api.POST("/posts/:id/vote", s.handler.Post.VotePost)
		api.GET("/posts/:id/tally", s.handler.Post.GetPostTally)

		// Comments
		api.GET("/posts/:id/comments", s.handler.Comment.GetComments)
		api.POST("/posts/:id/comments", s.handler.Comment.CreateComment)
		api.DELETE("/posts/:id/comments/:commentId", s.handler.Comment.DeleteComment)
		api.POST("/posts/:id/comments/:commentId/vote", s.handler.Comment.VoteComment)
	}

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Request.URL.Path == "/health" && !s.dev {
			return
		}
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

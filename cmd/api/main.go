package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/vote-tally/backend/internal/cache"
	"github.com/emilythestrangee/vote-tally/backend/internal/config"
	"github.com/emilythestrangee/vote-tally/backend/internal/database"
	"github.com/emilythestrangee/vote-tally/backend/internal/events"
	"github.com/emilythestrangee/vote-tally/backend/internal/server"
	"github.com/emilythestrangee/vote-tally/backend/internal/service"
	"github.com/emilythestrangee/vote-tally/backend/internal/store"
	"github.com/emilythestrangee/vote-tally/backend/internal/tally"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	var (
		st     store.Store
		health server.HealthFunc
	)
	if cfg.Database.Host != "" {
		db, err := database.New(cfg.Database, logger)
		if err != nil {
			logger.Error("failed to initialize database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		st = store.NewGorm(db.GetDB())
		health = db.Health
	} else {
		logger.Warn("DB_HOST not set, votes are kept in memory only")
		st = store.NewMemory()
		health = func() map[string]string {
			return map[string]string{"status": "up", "store": "memory"}
		}
	}

	var resultCache cache.ResultCache = cache.Noop{}
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rc.Close()
		resultCache = rc
	}

	var publisher events.Publisher = events.Noop{}
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := events.NewKafkaProducer(cfg.Kafka)
		if err != nil {
			logger.Error("failed to create kafka producer", "error", err)
			os.Exit(1)
		}
		publisher = events.NewKafka(producer, cfg.Kafka.Topic)
	}
	defer publisher.Close()

	svc := service.NewVoteService(st, tally.Engine{Total: cfg.Tally.TotalMode}, resultCache, publisher, logger)
	srv := server.New(cfg, svc, health, logger).HTTPServer(cfg)

	go func() {
		logger.Info("server starting", "addr", srv.Addr, "env", cfg.Server.Env, "total_mode", cfg.Tally.TotalMode.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

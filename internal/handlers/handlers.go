package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/vote-tally/backend/internal/comments"
	"github.com/emilythestrangee/vote-tally/backend/internal/service"
	"github.com/emilythestrangee/vote-tally/backend/internal/store"
	"github.com/emilythestrangee/vote-tally/backend/internal/tally"
)

// Handler combines all handler types
type Handler struct {
	Tally   *TallyHandler
	Post    *PostHandler
	Comment *CommentHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(svc *service.VoteService, logger *slog.Logger) *Handler {
	return &Handler{
		Tally:   NewTallyHandler(svc, logger),
		Post:    NewPostHandler(svc, logger),
		Comment: NewCommentHandler(svc, logger),
	}
}

// paramID reads a positive integer path parameter.
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// respondError maps service errors to status codes. Unexpected errors are
// logged and hidden behind fallback.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, tally.ErrInvalidVoteAction):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vote action must be \"upvote\" or \"downvote\""})
	case errors.Is(err, comments.ErrEmptyComment), errors.Is(err, service.ErrEmptyTitle):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
	case errors.Is(err, store.ErrCommentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
	default:
		logger.Error(fallback, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

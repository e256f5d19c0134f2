package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/vote-tally/backend/internal/models"
	"github.com/emilythestrangee/vote-tally/backend/internal/service"
)

type CommentHandler struct {
	svc    *service.VoteService
	logger *slog.Logger
}

func NewCommentHandler(svc *service.VoteService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{svc: svc, logger: logger}
}

// GetComments returns all comments for a post, newest first
func (h *CommentHandler) GetComments(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}

	list, err := h.svc.ListComments(c.Request.Context(), postID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch comments")
		return
	}

	c.JSON(http.StatusOK, list)
}

// CreateComment adds a comment to a post
func (h *CommentHandler) CreateComment(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input models.CreateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.svc.AddComment(c.Request.Context(), postID, input)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create comment")
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// DeleteComment removes a comment from a post
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	commentID, ok := paramID(c, "commentId")
	if !ok {
		return
	}

	if err := h.svc.DeleteComment(c.Request.Context(), postID, commentID); err != nil {
		respondError(c, h.logger, err, "Failed to delete comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

// VoteComment applies an upvote or downvote to a comment
func (h *CommentHandler) VoteComment(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	commentID, ok := paramID(c, "commentId")
	if !ok {
		return
	}

	var input models.VoteRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := h.svc.CastCommentVote(c.Request.Context(), postID, commentID, input.Action)
	if err != nil {
		respondError(c, h.logger, err, "Failed to vote")
		return
	}

	c.JSON(http.StatusOK, out)
}

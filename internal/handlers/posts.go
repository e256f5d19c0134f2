package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/vote-tally/backend/internal/models"
	"github.com/emilythestrangee/vote-tally/backend/internal/service"
)

type PostHandler struct {
	svc    *service.VoteService
	logger *slog.Logger
}

func NewPostHandler(svc *service.VoteService, logger *slog.Logger) *PostHandler {
	return &PostHandler{svc: svc, logger: logger}
}

// GetPosts returns all posts, newest first, with their derived results
func (h *PostHandler) GetPosts(c *gin.Context) {
	posts, err := h.svc.ListPosts(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch posts")
		return
	}

	c.JSON(http.StatusOK, posts)
}

// GetPost returns a single post by ID
func (h *PostHandler) GetPost(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}

	post, err := h.svc.GetPost(c.Request.Context(), postID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch post")
		return
	}

	c.JSON(http.StatusOK, post)
}

// CreatePost creates a new post with an empty tally
func (h *PostHandler) CreatePost(c *gin.Context) {
	var input models.CreatePostRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	post, err := h.svc.CreatePost(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create post")
		return
	}

	c.JSON(http.StatusCreated, post)
}

// DeletePost deletes a post and its comments
func (h *PostHandler) DeletePost(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeletePost(c.Request.Context(), postID); err != nil {
		respondError(c, h.logger, err, "Failed to delete post")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// VotePost applies an upvote or downvote to a post
func (h *PostHandler) VotePost(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input models.VoteRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := h.svc.CastPostVote(c.Request.Context(), postID, input.Action)
	if err != nil {
		respondError(c, h.logger, err, "Failed to vote")
		return
	}

	c.JSON(http.StatusOK, out)
}

// GetPostTally returns the derived result of a post's tally
func (h *PostHandler) GetPostTally(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}

	res, err := h.svc.PostResult(c.Request.Context(), postID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch tally")
		return
	}

	c.JSON(http.StatusOK, res)
}

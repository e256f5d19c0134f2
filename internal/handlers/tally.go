package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/vote-tally/backend/internal/models"
	"github.com/emilythestrangee/vote-tally/backend/internal/service"
)

// TallyHandler exposes the engine directly: the caller sends a tally and an
// action and keeps the returned value. Nothing is stored.
type TallyHandler struct {
	svc    *service.VoteService
	logger *slog.Logger
}

func NewTallyHandler(svc *service.VoteService, logger *slog.Logger) *TallyHandler {
	return &TallyHandler{svc: svc, logger: logger}
}

// Apply returns the tally after the vote
func (h *TallyHandler) Apply(c *gin.Context) {
	var input models.TallyRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	next, err := h.svc.Apply(input.Tally.VoteTally(), input.Action)
	if err != nil {
		respondError(c, h.logger, err, "Failed to apply vote")
		return
	}

	c.JSON(http.StatusOK, next)
}

// Derive returns the total and percentages after the vote
func (h *TallyHandler) Derive(c *gin.Context) {
	var input models.TallyRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.svc.ApplyAndDerive(input.Tally.VoteTally(), input.Action)
	if err != nil {
		respondError(c, h.logger, err, "Failed to apply vote")
		return
	}

	c.JSON(http.StatusOK, res)
}

package models

import (
	"time"

	"github.com/emilythestrangee/vote-tally/backend/internal/tally"
)

type Comment struct {
	ID              int    `gorm:"primaryKey" json:"id"`
	PostID          int    `gorm:"not null;index" json:"post_id"`
	Body            string `gorm:"not null" json:"body"`
	tally.VoteTally `gorm:"embedded"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CreateCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

package models

import (
	"time"

	"github.com/emilythestrangee/vote-tally/backend/internal/tally"
)

type Post struct {
	ID              int    `gorm:"primaryKey" json:"id"`
	Title           string `gorm:"not null" json:"title"`
	Body            string `json:"body"`
	tally.VoteTally `gorm:"embedded"`
	Comments        []Comment `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CreatePostRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body"`
}

// VoteRequest carries the raw action literal; it is validated by the tally
// engine, not by the binder.
type VoteRequest struct {
	Action string `json:"action"`
}

// Package store persists posts, comments and their tallies on behalf of the
// vote service. The tally engine itself never touches a store.
package store

import (
	"context"
	"errors"

	"github.com/emilythestrangee/vote-tally/backend/internal/models"
	"github.com/emilythestrangee/vote-tally/backend/internal/tally"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
)

// TallyFunc computes the next tally of an item from its current one. It runs
// while the store holds the item exclusively; returning an error leaves the
// stored tally untouched.
type TallyFunc func(tally.VoteTally) (tally.VoteTally, error)

type Store interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id int) (*models.Post, error)
	ListPosts(ctx context.Context) ([]models.Post, error)
	DeletePost(ctx context.Context, id int) error
	UpdatePostTally(ctx context.Context, id int, fn TallyFunc) (*models.Post, error)

	AddComment(ctx context.Context, postID int, body string) (*models.Comment, error)
	ListComments(ctx context.Context, postID int) ([]models.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID int) error
	UpdateCommentTally(ctx context.Context, postID, commentID int, fn TallyFunc) (*models.Comment, error)

	Ping(ctx context.Context) error
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*Gorm)(nil)
)

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/emilythestrangee/vote-tally/backend/internal/models"
	"github.com/emilythestrangee/vote-tally/backend/internal/tally"
)

var ErrEmptyTitle = errors.New("title is required")

// PostView is a post with its derived vote result.
type PostView struct {
	models.Post
	Result tally.VoteResult `json:"result"`
}

func (s *VoteService) CreatePost(ctx context.Context, req models.CreatePostRequest) (*models.Post, error) {
	post := &models.Post{Title: strings.TrimSpace(req.Title), Body: req.Body}
	if post.Title == "" {
		return nil, ErrEmptyTitle
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *VoteService) GetPost(ctx context.Context, id int) (PostView, error) {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return PostView{}, err
	}
	return PostView{Post: *post, Result: s.engine.Derive(post.VoteTally)}, nil
}

func (s *VoteService) ListPosts(ctx context.Context) ([]PostView, error) {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, PostView{Post: p, Result: s.engine.Derive(p.VoteTally)})
	}
	return views, nil
}

func (s *VoteService) DeletePost(ctx context.Context, id int) error {
	if err := s.store.DeletePost(ctx, id); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.Warn("failed to evict vote result", "post_id", id, "error", err)
	}
	return nil
}

func (s *VoteService) AddComment(ctx context.Context, postID int, req models.CreateCommentRequest) (*models.Comment, error) {
	return s.store.AddComment(ctx, postID, req.Body)
}

func (s *VoteService) ListComments(ctx context.Context, postID int) ([]models.Comment, error) {
	return s.store.ListComments(ctx, postID)
}

func (s *VoteService) DeleteComment(ctx context.Context, postID, commentID int) error {
	return s.store.DeleteComment(ctx, postID, commentID)
}

func (s *VoteService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

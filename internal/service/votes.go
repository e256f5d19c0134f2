// Package service applies vote events to stored posts and comments. It owns
// persistence of each tally on behalf of the pure tally engine: parse the
// action, apply it under the store's lock, derive the result, then refresh
// the cache and publish the event.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/emilythestrangee/vote-tally/backend/internal/cache"
	"github.com/emilythestrangee/vote-tally/backend/internal/events"
	"github.com/emilythestrangee/vote-tally/backend/internal/models"
	"github.com/emilythestrangee/vote-tally/backend/internal/store"
	"github.com/emilythestrangee/vote-tally/backend/internal/tally"
)

// Outcome is the stored tally after a vote together with its derived result.
type Outcome struct {
	Tally  tally.VoteTally  `json:"tally"`
	Result tally.VoteResult `json:"result"`
}

type VoteService struct {
	store     store.Store
	engine    tally.Engine
	cache     cache.ResultCache
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewVoteService(s store.Store, engine tally.Engine, c cache.ResultCache, p events.Publisher, logger *slog.Logger) *VoteService {
	if c == nil {
		c = cache.Noop{}
	}
	if p == nil {
		p = events.Noop{}
	}
	return &VoteService{
		store:     s,
		engine:    engine,
		cache:     c,
		publisher: p,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Apply is the stateless engine boundary: validate the raw action and apply it.
func (s *VoteService) Apply(t tally.VoteTally, rawAction string) (tally.VoteTally, error) {
	action, err := tally.ParseVoteAction(rawAction)
	if err != nil {
		return tally.VoteTally{}, err
	}
	return s.engine.ApplyVote(t, action)
}

func (s *VoteService) ApplyAndDerive(t tally.VoteTally, rawAction string) (tally.VoteResult, error) {
	action, err := tally.ParseVoteAction(rawAction)
	if err != nil {
		return tally.VoteResult{}, err
	}
	return s.engine.ApplyVoteAndDerive(t, action)
}

func (s *VoteService) Derive(t tally.VoteTally) tally.VoteResult {
	return s.engine.Derive(t)
}

func (s *VoteService) CastPostVote(ctx context.Context, postID int, rawAction string) (Outcome, error) {
	action, err := tally.ParseVoteAction(rawAction)
	if err != nil {
		return Outcome{}, err
	}

	post, err := s.store.UpdatePostTally(ctx, postID, s.applier(action))
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Tally: post.VoteTally, Result: s.engine.Derive(post.VoteTally)}
	s.cacheResult(ctx, postID, out.Tally, out.Result)
	s.publish(ctx, models.VoteEvent{
		TargetType: models.TargetPost,
		PostID:     postID,
		Action:     action,
		Tally:      out.Tally,
		Result:     out.Result,
	})
	return out, nil
}

func (s *VoteService) CastCommentVote(ctx context.Context, postID, commentID int, rawAction string) (Outcome, error) {
	action, err := tally.ParseVoteAction(rawAction)
	if err != nil {
		return Outcome{}, err
	}

	comment, err := s.store.UpdateCommentTally(ctx, postID, commentID, s.applier(action))
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Tally: comment.VoteTally, Result: s.engine.Derive(comment.VoteTally)}
	s.publish(ctx, models.VoteEvent{
		TargetType: models.TargetComment,
		PostID:     postID,
		CommentID:  commentID,
		Action:     action,
		Tally:      out.Tally,
		Result:     out.Result,
	})
	return out, nil
}

// PostResult returns the derived result of a post, from cache when possible.
func (s *VoteService) PostResult(ctx context.Context, postID int) (tally.VoteResult, error) {
	res, ok, err := s.cache.Get(ctx, postID)
	if err != nil {
		s.logger.Warn("failed to read cached vote result", "post_id", postID, "error", err)
	}
	if ok {
		return res, nil
	}

	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return tally.VoteResult{}, err
	}
	res = s.engine.Derive(post.VoteTally)
	s.cacheResult(ctx, postID, post.VoteTally, res)
	return res, nil
}

// cacheResult versions the entry by votes cast, so a slower writer holding an
// older tally cannot replace a newer result. If the write fails the entry is
// evicted instead.
func (s *VoteService) cacheResult(ctx context.Context, postID int, t tally.VoteTally, res tally.VoteResult) {
	err := s.cache.Set(ctx, postID, t.Votes(), res)
	if err == nil {
		return
	}
	s.logger.Warn("failed to cache vote result", "post_id", postID, "error", err)
	if err := s.cache.Delete(ctx, postID); err != nil {
		s.logger.Warn("failed to evict vote result", "post_id", postID, "error", err)
	}
}

func (s *VoteService) applier(action tally.VoteAction) store.TallyFunc {
	return func(cur tally.VoteTally) (tally.VoteTally, error) {
		return s.engine.ApplyVote(cur, action)
	}
}

// publish logs instead of failing: the tally is already stored by the time an
// event goes out.
func (s *VoteService) publish(ctx context.Context, event models.VoteEvent) {
	event.ID = uuid.NewString()
	event.OccurredAt = s.now()
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish vote event", "event_id", event.ID, "key", event.Key(), "error", err)
	}
}

package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/vote-tally/backend/internal/models"
	"github.com/emilythestrangee/vote-tally/backend/internal/store"
	"github.com/emilythestrangee/vote-tally/backend/internal/tally"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.VoteEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e models.VoteEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type cachedResult struct {
	version int
	result  tally.VoteResult
}

// mapCache mirrors the Redis cache: lower versions never replace higher ones.
type mapCache struct {
	mu      sync.Mutex
	entries map[int]cachedResult
	err     error
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[int]cachedResult)}
}

func (c *mapCache) Get(_ context.Context, id int) (tally.VoteResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return tally.VoteResult{}, false, c.err
	}
	e, ok := c.entries[id]
	return e.result, ok, nil
}

func (c *mapCache) Set(_ context.Context, id int, version int, res tally.VoteResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if cur, ok := c.entries[id]; ok && cur.version > version {
		return nil
	}
	c.entries[id] = cachedResult{version: version, result: res}
	return nil
}

func (c *mapCache) Delete(_ context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return c.err
}

func (c *mapCache) result(id int) (tally.VoteResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	return e.result, ok
}

// heldCache blocks the first Set until release is closed.
type heldCache struct {
	*mapCache
	once    sync.Once
	waiting chan struct{}
	release chan struct{}
}

func (h *heldCache) Set(ctx context.Context, id int, version int, res tally.VoteResult) error {
	first := false
	h.once.Do(func() { first = true })
	if first {
		close(h.waiting)
		<-h.release
	}
	return h.mapCache.Set(ctx, id, version, res)
}

func newTestService(engine tally.Engine) (*VoteService, *recordingPublisher, *mapCache) {
	pub := &recordingPublisher{}
	c := newMapCache()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewVoteService(store.NewMemory(), engine, c, pub, logger), pub, c
}

func createPost(t *testing.T, s *VoteService) int {
	t.Helper()
	post, err := s.CreatePost(context.Background(), models.CreatePostRequest{Title: "post"})
	require.NoError(t, err)
	return post.ID
}

func TestCastPostVote(t *testing.T) {
	ctx := context.Background()
	s, pub, c := newTestService(tally.Engine{})
	id := createPost(t, s)

	for _, a := range []string{"upvote", "upvote", "upvote", "downvote"} {
		_, err := s.CastPostVote(ctx, id, a)
		require.NoError(t, err)
	}
	out, err := s.CastPostVote(ctx, id, "downvote")
	require.NoError(t, err)

	assert.Equal(t, tally.VoteTally{Upvotes: 3, Downvotes: 2}, out.Tally)
	assert.Equal(t, tally.VoteResult{TotalCount: 5, UpvotePercentage: 60, DownvotePercentage: 40}, out.Result)
	cached, ok := c.result(id)
	require.True(t, ok)
	assert.Equal(t, out.Result, cached)

	require.Len(t, pub.events, 5)
	last := pub.events[4]
	assert.Equal(t, models.TargetPost, last.TargetType)
	assert.Equal(t, tally.Downvote, last.Action)
	assert.NotEmpty(t, last.ID)
	assert.NotEqual(t, pub.events[0].ID, last.ID)
	assert.False(t, last.OccurredAt.IsZero())
}

func TestCastPostVoteInvalidAction(t *testing.T) {
	ctx := context.Background()
	s, pub, _ := newTestService(tally.Engine{})
	id := createPost(t, s)

	_, err := s.CastPostVote(ctx, id, "sideways")
	require.ErrorIs(t, err, tally.ErrInvalidVoteAction)

	view, err := s.GetPost(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, tally.VoteTally{}, view.VoteTally)
	assert.Empty(t, pub.events)
}

func TestCastPostVoteUnknownPost(t *testing.T) {
	s, _, _ := newTestService(tally.Engine{})
	_, err := s.CastPostVote(context.Background(), 404, "upvote")
	assert.ErrorIs(t, err, store.ErrPostNotFound)
}

func TestCastVoteSurvivesSideEffectFailures(t *testing.T) {
	ctx := context.Background()
	s, pub, c := newTestService(tally.Engine{})
	pub.err = errors.New("broker down")
	c.err = errors.New("redis down")
	id := createPost(t, s)

	out, err := s.CastPostVote(ctx, id, "upvote")
	require.NoError(t, err)
	assert.Equal(t, 1, out.Tally.Upvotes)

	res, err := s.PostResult(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.UpvotePercentage)
}

func TestCastCommentVote(t *testing.T) {
	ctx := context.Background()
	s, pub, _ := newTestService(tally.Engine{Total: tally.TotalNet})
	id := createPost(t, s)

	comment, err := s.AddComment(ctx, id, models.CreateCommentRequest{Body: "nice"})
	require.NoError(t, err)

	_, err = s.CastCommentVote(ctx, id, comment.ID, "downvote")
	require.NoError(t, err)
	out, err := s.CastCommentVote(ctx, id, comment.ID, "downvote")
	require.NoError(t, err)

	assert.Equal(t, tally.VoteTally{Downvotes: 2}, out.Tally)
	assert.Equal(t, -2, out.Result.TotalCount)
	assert.Equal(t, 100.0, out.Result.DownvotePercentage)

	require.Len(t, pub.events, 2)
	assert.Equal(t, "comment:"+strconv.Itoa(comment.ID), pub.events[1].Key())

	_, err = s.CastCommentVote(ctx, id, comment.ID+1, "upvote")
	assert.ErrorIs(t, err, store.ErrCommentNotFound)
}

func TestPostResultUsesCache(t *testing.T) {
	ctx := context.Background()
	s, _, c := newTestService(tally.Engine{})
	id := createPost(t, s)

	res, err := s.PostResult(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, tally.VoteResult{}, res)

	c.entries[id] = cachedResult{result: tally.VoteResult{TotalCount: 42}}
	res, err = s.PostResult(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 42, res.TotalCount)

	require.NoError(t, s.DeletePost(ctx, id))
	_, ok := c.result(id)
	assert.False(t, ok)
}

func TestLateCacheWriteDoesNotOverwriteNewerResult(t *testing.T) {
	ctx := context.Background()
	held := &heldCache{
		mapCache: newMapCache(),
		waiting:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewVoteService(store.NewMemory(), tally.Engine{}, held, nil, logger)
	id := createPost(t, s)

	done := make(chan error, 1)
	go func() {
		_, err := s.CastPostVote(ctx, id, "upvote")
		done <- err
	}()
	<-held.waiting

	_, err := s.CastPostVote(ctx, id, "downvote")
	require.NoError(t, err)
	close(held.release)
	require.NoError(t, <-done)

	view, err := s.GetPost(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, tally.VoteTally{Upvotes: 1, Downvotes: 1}, view.VoteTally)

	res, err := s.PostResult(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, view.Result, res)
	assert.Equal(t, 2, res.TotalCount)
}

func TestFailedCacheWriteEvictsEntry(t *testing.T) {
	ctx := context.Background()
	s, _, c := newTestService(tally.Engine{})
	id := createPost(t, s)

	c.entries[id] = cachedResult{result: tally.VoteResult{TotalCount: 42}}
	c.err = errors.New("redis down")
	_, err := s.CastPostVote(ctx, id, "upvote")
	require.NoError(t, err)

	c.err = nil
	_, ok := c.result(id)
	assert.False(t, ok)
}

func TestStatelessApply(t *testing.T) {
	s, _, _ := newTestService(tally.Engine{})

	got, err := s.Apply(tally.VoteTally{}, "upvote")
	require.NoError(t, err)
	assert.Equal(t, tally.VoteTally{Upvotes: 1}, got)

	res, err := s.ApplyAndDerive(tally.VoteTally{Upvotes: 3, Downvotes: 1}, "downvote")
	require.NoError(t, err)
	assert.Equal(t, 5, res.TotalCount)

	_, err = s.Apply(tally.VoteTally{}, "sideways")
	assert.ErrorIs(t, err, tally.ErrInvalidVoteAction)
	_, err = s.ApplyAndDerive(tally.VoteTally{}, "sideways")
	assert.ErrorIs(t, err, tally.ErrInvalidVoteAction)
}

func TestCreatePostRequiresTitle(t *testing.T) {
	s, _, _ := newTestService(tally.Engine{})
	_, err := s.CreatePost(context.Background(), models.CreatePostRequest{Title: "  "})
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

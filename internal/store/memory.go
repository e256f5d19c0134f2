package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/emilythestrangee/vote-tally/backend/internal/comments"
	"github.com/emilythestrangee/vote-tally/backend/internal/models"
	"github.com/emilythestrangee/vote-tally/backend/internal/tally"
)

type postRecord struct {
	post          models.Post
	comments      []comments.Comment
	meta          map[int]commentMeta
	nextCommentID int
}

type commentMeta struct {
	tally     tally.VoteTally
	createdAt time.Time
	updatedAt time.Time
}

// Memory keeps everything in process memory. Comment ids are allocated per
// post from a counter that never goes back, so deleted ids are not reused.
type Memory struct {
	mu     sync.Mutex
	nextID int
	posts  map[int]*postRecord
	now    func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		nextID: 1,
		posts:  make(map[int]*postRecord),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (m *Memory) CreatePost(_ context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	post.ID = m.nextID
	post.CreatedAt = now
	post.UpdatedAt = now
	m.nextID++

	m.posts[post.ID] = &postRecord{post: *post, meta: make(map[int]commentMeta), nextCommentID: 1}
	return nil
}

func (m *Memory) GetPost(_ context.Context, id int) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	post := rec.post
	return &post, nil
}

// ListPosts returns posts newest first.
func (m *Memory) ListPosts(_ context.Context) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	posts := make([]models.Post, 0, len(m.posts))
	for _, rec := range m.posts {
		posts = append(posts, rec.post)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID > posts[j].ID })
	return posts, nil
}

func (m *Memory) DeletePost(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.posts[id]; !ok {
		return ErrPostNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *Memory) UpdatePostTally(_ context.Context, id int, fn TallyFunc) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	next, err := fn(rec.post.VoteTally)
	if err != nil {
		return nil, err
	}
	rec.post.VoteTally = next
	rec.post.UpdatedAt = m.now()

	post := rec.post
	return &post, nil
}

func (m *Memory) AddComment(_ context.Context, postID int, body string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.posts[postID]
	if !ok {
		return nil, ErrPostNotFound
	}
	list, err := comments.AddWithID(rec.comments, rec.nextCommentID, body)
	if err != nil {
		return nil, err
	}
	added := list[len(list)-1]
	rec.nextCommentID++

	now := m.now()
	rec.comments = list
	rec.meta[added.ID] = commentMeta{createdAt: now, updatedAt: now}

	c := rec.comment(added)
	return &c, nil
}

// ListComments returns comments newest first.
func (m *Memory) ListComments(_ context.Context, postID int) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.posts[postID]
	if !ok {
		return nil, ErrPostNotFound
	}
	out := make([]models.Comment, 0, len(rec.comments))
	for i := len(rec.comments) - 1; i >= 0; i-- {
		out = append(out, rec.comment(rec.comments[i]))
	}
	return out, nil
}

func (m *Memory) DeleteComment(_ context.Context, postID, commentID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.posts[postID]
	if !ok {
		return ErrPostNotFound
	}
	if _, ok := comments.Find(rec.comments, commentID); !ok {
		return ErrCommentNotFound
	}
	rec.comments = comments.Delete(rec.comments, commentID)
	delete(rec.meta, commentID)
	return nil
}

func (m *Memory) UpdateCommentTally(_ context.Context, postID, commentID int, fn TallyFunc) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.posts[postID]
	if !ok {
		return nil, ErrPostNotFound
	}
	entry, ok := comments.Find(rec.comments, commentID)
	if !ok {
		return nil, ErrCommentNotFound
	}

	meta := rec.meta[commentID]
	next, err := fn(meta.tally)
	if err != nil {
		return nil, err
	}
	meta.tally = next
	meta.updatedAt = m.now()
	rec.meta[commentID] = meta

	c := rec.comment(entry)
	return &c, nil
}

func (m *Memory) Ping(context.Context) error {
	return nil
}

func (r *postRecord) comment(entry comments.Comment) models.Comment {
	meta := r.meta[entry.ID]
	return models.Comment{
		ID:        entry.ID,
		PostID:    r.post.ID,
		Body:      entry.Text,
		VoteTally: meta.tally,
		CreatedAt: meta.createdAt,
		UpdatedAt: meta.updatedAt,
	}
}

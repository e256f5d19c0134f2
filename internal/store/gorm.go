package store

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/vote-tally/backend/internal/comments"
	"github.com/emilythestrangee/vote-tally/backend/internal/models"
)

const pgForeignKeyViolation = "23503"

// Gorm stores posts and comments in Postgres. Tally updates lock the row for
// the duration of the TallyFunc.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (s *Gorm) CreatePost(ctx context.Context, post *models.Post) error {
	return s.db.WithContext(ctx).Create(post).Error
}

func (s *Gorm) GetPost(ctx context.Context, id int) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, notFound(err, ErrPostNotFound)
	}
	return &post, nil
}

func (s *Gorm) ListPosts(ctx context.Context) ([]models.Post, error) {
	posts := []models.Post{}
	if err := s.db.WithContext(ctx).Order("created_at desc, id desc").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Gorm) DeletePost(ctx context.Context, id int) error {
	res := s.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (s *Gorm) UpdatePostTally(ctx context.Context, id int, fn TallyFunc) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, id).Error; err != nil {
			return notFound(err, ErrPostNotFound)
		}
		next, err := fn(post.VoteTally)
		if err != nil {
			return err
		}
		post.VoteTally = next
		return tx.Model(&post).Updates(map[string]any{
			"upvotes":   next.Upvotes,
			"downvotes": next.Downvotes,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *Gorm) AddComment(ctx context.Context, postID int, body string) (*models.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, comments.ErrEmptyComment
	}

	comment := models.Comment{PostID: postID, Body: body}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &comment, nil
}

func (s *Gorm) ListComments(ctx context.Context, postID int) ([]models.Comment, error) {
	if err := s.postExists(ctx, postID); err != nil {
		return nil, err
	}

	list := []models.Comment{}
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at desc, id desc").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Gorm) DeleteComment(ctx context.Context, postID, commentID int) error {
	if err := s.postExists(ctx, postID); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Comment{}, commentID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func (s *Gorm) UpdateCommentTally(ctx context.Context, postID, commentID int, fn TallyFunc) (*models.Comment, error) {
	if err := s.postExists(ctx, postID); err != nil {
		return nil, err
	}

	var comment models.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("post_id = ?", postID).
			First(&comment, commentID).Error
		if err != nil {
			return notFound(err, ErrCommentNotFound)
		}
		next, err := fn(comment.VoteTally)
		if err != nil {
			return err
		}
		comment.VoteTally = next
		return tx.Model(&comment).Updates(map[string]any{
			"upvotes":   next.Upvotes,
			"downvotes": next.Downvotes,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *Gorm) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Gorm) postExists(ctx context.Context, postID int) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrPostNotFound
	}
	return nil
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

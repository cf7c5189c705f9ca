package repository

import (
	"context"
	"errors"

	"pollshare/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines persistence operations for poll comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	// ListByPoll returns the comment tree: top-level comments newest first,
	// each with its replies oldest first.
	ListByPoll(ctx context.Context, pollID uint) ([]models.Comment, error)
	// Delete removes the comment and its replies.
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository returns a new CommentRepository implementation.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	comment.Replies = []models.Comment{}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment")
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *commentRepository) ListByPoll(ctx context.Context, pollID uint) ([]models.Comment, error) {
	var flat []models.Comment
	if err := readDB(r.db).WithContext(ctx).
		Where("poll_id = ?", pollID).
		Order("created_at ASC, id ASC").
		Find(&flat).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return buildTree(flat), nil
}

// buildTree expects flat in ascending creation order. Replies whose parent is
// missing are dropped.
func buildTree(flat []models.Comment) []models.Comment {
	replies := make(map[uint][]models.Comment)
	var top []models.Comment
	for _, c := range flat {
		if c.ParentID == nil {
			top = append(top, c)
			continue
		}
		replies[*c.ParentID] = append(replies[*c.ParentID], c)
	}

	out := make([]models.Comment, 0, len(top))
	for i := len(top) - 1; i >= 0; i-- {
		c := top[i]
		c.Replies = replies[c.ID]
		if c.Replies == nil {
			c.Replies = []models.Comment{}
		}
		out = append(out, c)
	}
	return out
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Comment{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

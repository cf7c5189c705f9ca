package repository

import (
	"context"

	"pollshare/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SavedPostRepository manages a user's bookmarked polls.
type SavedPostRepository interface {
	// Save reports whether the poll was newly saved.
	Save(ctx context.Context, userID, pollID uint) (bool, error)
	Unsave(ctx context.Context, userID, pollID uint) error
	ListPolls(ctx context.Context, userID uint) ([]models.Poll, error)
}

type savedPostRepository struct {
	db *gorm.DB
}

// NewSavedPostRepository creates a new saved post repository
func NewSavedPostRepository(db *gorm.DB) SavedPostRepository {
	return &savedPostRepository{db: db}
}

func (r *savedPostRepository) Save(ctx context.Context, userID, pollID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.SavedPost{UserID: userID, PollID: pollID})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *savedPostRepository) Unsave(ctx context.Context, userID, pollID uint) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND poll_id = ?", userID, pollID).
		Delete(&models.SavedPost{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListPolls returns the saved polls, most recently saved first.
func (r *savedPostRepository) ListPolls(ctx context.Context, userID uint) ([]models.Poll, error) {
	db := readDB(r.db).WithContext(ctx)

	polls := []models.Poll{}
	if err := db.
		Joins("JOIN saved_posts ON saved_posts.poll_id = polls.id").
		Where("saved_posts.user_id = ?", userID).
		Order("saved_posts.created_at DESC, saved_posts.id DESC").
		Preload("Options", orderByPosition).
		Find(&polls).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	if err := attachVotedUsers(db, polls); err != nil {
		return nil, models.NewInternalError(err)
	}
	return polls, nil
}

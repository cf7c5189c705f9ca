package repository

import (
	"context"

	"pollshare/internal/cache"
	"pollshare/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository mutates the follow graph. Each mutation writes the edge and
// both users' counters in one transaction.
type FollowRepository interface {
	// Follow reports whether a new edge was created.
	Follow(ctx context.Context, followerID, followeeID uint) (bool, error)
	// Unfollow reports whether an edge was removed.
	Unfollow(ctx context.Context, followerID, followeeID uint) (bool, error)
	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
	FollowingIDs(ctx context.Context, followerID uint) ([]uint, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Follow(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return r.mutate(ctx, followerID, followeeID, func(tx *gorm.DB) (int64, error) {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Follow{FollowerID: followerID, FolloweeID: followeeID})
		return res.RowsAffected, res.Error
	}, 1)
}

func (r *followRepository) Unfollow(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return r.mutate(ctx, followerID, followeeID, func(tx *gorm.DB) (int64, error) {
		res := tx.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
			Delete(&models.Follow{})
		return res.RowsAffected, res.Error
	}, -1)
}

// mutate applies edge and, only when it changed a row, moves both counters by delta.
func (r *followRepository) mutate(ctx context.Context, followerID, followeeID uint, edge func(tx *gorm.DB) (int64, error), delta int) (bool, error) {
	var changed bool
	var touched []models.User

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := edge(tx)
		if err != nil {
			return err
		}
		if rows == 0 {
			return nil
		}
		changed = true

		if err := adjustCounter(tx, followerID, "following_count", delta); err != nil {
			return err
		}
		if err := adjustCounter(tx, followeeID, "followers_count", delta); err != nil {
			return err
		}

		return tx.Select("id", "user_id", "handle").
			Where("id IN ?", []uint{followerID, followeeID}).
			Find(&touched).Error
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}

	for _, u := range touched {
		cache.InvalidateUser(ctx, u.ID, u.UserID, u.Handle)
	}
	return changed, nil
}

func adjustCounter(tx *gorm.DB, userID uint, column string, delta int) error {
	q := tx.Model(&models.User{}).Where("id = ?", userID)
	if delta < 0 {
		q = q.Where(column+" > 0")
	}
	return q.UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *followRepository) FollowingIDs(ctx context.Context, followerID uint) ([]uint, error) {
	ids := []uint{}
	if err := readDB(r.db).WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", followerID).
		Order("id").
		Pluck("followee_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

package repository

import (
	"context"
	"errors"

	"pollshare/internal/cache"
	"pollshare/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUserID(ctx context.Context, subject string) (*models.User, error)
	GetByHandle(ctx context.Context, handle string) (*models.User, error)
	HandleExists(ctx context.Context, handle string) (bool, error)
	Update(ctx context.Context, user *models.User) error
	Suggestions(ctx context.Context, excludeID uint, limit int) ([]models.UserSummary, error)
	Search(ctx context.Context, term string, excludeID uint, limit int) ([]models.UserSummary, error)
}

const (
	DefaultSuggestionLimit = 10
	DefaultSearchLimit     = 5
	MaxListLimit           = 50
)

var summaryColumns = []string{"users.id", "users.name", "users.handle", "users.profile_picture"}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User")
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUserID(ctx context.Context, subject string) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserExternalKey(subject), &user, cache.UserTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).Where("user_id = ?", subject).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User")
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByHandle expects a normalized handle and populates both follow lists.
func (r *userRepository) GetByHandle(ctx context.Context, handle string) (*models.User, error) {
	db := readDB(r.db).WithContext(ctx)

	var user models.User
	if err := db.Where("handle = ?", handle).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User")
		}
		return nil, models.NewInternalError(err)
	}

	user.Followers = []models.UserSummary{}
	if err := db.Model(&models.User{}).
		Select(summaryColumns).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followee_id = ?", user.ID).
		Order("follows.created_at DESC, follows.id DESC").
		Scan(&user.Followers).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	user.Following = []models.UserSummary{}
	if err := db.Model(&models.User{}).
		Select(summaryColumns).
		Joins("JOIN follows ON follows.followee_id = users.id").
		Where("follows.follower_id = ?", user.ID).
		Order("follows.created_at DESC, follows.id DESC").
		Scan(&user.Following).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return &user, nil
}

// HandleExists matches case-insensitively, including soft-deleted rows, since
// the unique index covers them too.
func (r *userRepository) HandleExists(ctx context.Context, handle string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Unscoped().
		Model(&models.User{}).
		Where("LOWER(handle) = LOWER(?)", handle).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID, user.UserID, user.Handle)
	return nil
}

// Suggestions returns a random sample of users that excludeID does not follow yet.
func (r *userRepository) Suggestions(ctx context.Context, excludeID uint, limit int) ([]models.UserSummary, error) {
	limit = clampLimit(limit, DefaultSuggestionLimit, MaxListLimit)

	following := r.db.Model(&models.Follow{}).Select("followee_id").Where("follower_id = ?", excludeID)

	out := []models.UserSummary{}
	if err := readDB(r.db).WithContext(ctx).
		Model(&models.User{}).
		Select(summaryColumns).
		Where("users.id <> ?", excludeID).
		Where("users.id NOT IN (?)", following).
		Order("RANDOM()").
		Limit(limit).
		Scan(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

// Search matches term literally and case-insensitively against name or handle.
func (r *userRepository) Search(ctx context.Context, term string, excludeID uint, limit int) ([]models.UserSummary, error) {
	limit = clampLimit(limit, DefaultSearchLimit, MaxListLimit)
	pattern := containsPattern(term)

	q := readDB(r.db).WithContext(ctx).
		Model(&models.User{}).
		Select(summaryColumns).
		Where(`(LOWER(users.name) LIKE ? ESCAPE '\' OR LOWER(users.handle) LIKE ? ESCAPE '\')`, pattern, pattern)
	if excludeID != 0 {
		q = q.Where("users.id <> ?", excludeID)
	}

	out := []models.UserSummary{}
	if err := q.Order("users.handle").Limit(limit).Scan(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

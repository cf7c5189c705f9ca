package repository

import (
	"context"
	"errors"
	"time"

	"pollshare/internal/cache"
	"pollshare/internal/models"
	"pollshare/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrAlreadyVoted is returned when the user is already in the poll's voted-set.
var ErrAlreadyVoted = models.NewConflictError("User has already voted on this poll")

// PollRepository defines persistence operations for polls and their votes.
type PollRepository interface {
	Create(ctx context.Context, poll *models.Poll) error
	GetByID(ctx context.Context, id uint) (*models.Poll, error)
	// CastVote records the vote and increments the option and the total
	// together. A retry carrying the idempotency key of the stored vote
	// returns the current poll with replayed set instead of ErrAlreadyVoted.
	CastVote(ctx context.Context, vote *models.PollVote) (poll *models.Poll, replayed bool, err error)
}

type pollRepository struct {
	db *gorm.DB
}

// NewPollRepository returns a new PollRepository implementation.
func NewPollRepository(db *gorm.DB) PollRepository {
	return &pollRepository{db: db}
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *pollRepository) Create(ctx context.Context, poll *models.Poll) error {
	poll.TotalVotes = 0
	for i := range poll.Options {
		poll.Options[i].Position = i
		poll.Options[i].Votes = 0
	}
	if err := r.db.WithContext(ctx).Create(poll).Error; err != nil {
		return models.NewInternalError(err)
	}
	poll.VotedUsers = []uint{}
	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, id uint) (*models.Poll, error) {
	var poll models.Poll
	err := cache.Aside(ctx, cache.PollKey(id), &poll, cache.PollTTL, func() error {
		p, err := loadPoll(readDB(r.db).WithContext(ctx), id)
		if err != nil {
			return err
		}
		poll = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &poll, nil
}

func loadPoll(db *gorm.DB, id uint) (*models.Poll, error) {
	defer observability.TrackQuery("select", "polls")()

	var poll models.Poll
	if err := db.Preload("Options", orderByPosition).First(&poll, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Poll")
		}
		return nil, models.NewInternalError(err)
	}
	polls := []models.Poll{poll}
	if err := attachVotedUsers(db, polls); err != nil {
		return nil, models.NewInternalError(err)
	}
	return &polls[0], nil
}

// attachVotedUsers fills VotedUsers for each poll in one query.
func attachVotedUsers(db *gorm.DB, polls []models.Poll) error {
	if len(polls) == 0 {
		return nil
	}
	ids := make([]uint, len(polls))
	index := make(map[uint]int, len(polls))
	for i := range polls {
		ids[i] = polls[i].ID
		index[polls[i].ID] = i
		polls[i].VotedUsers = []uint{}
	}

	var votes []models.PollVote
	if err := db.Select("poll_id", "user_id").
		Where("poll_id IN ?", ids).
		Order("id").
		Find(&votes).Error; err != nil {
		return err
	}
	for _, v := range votes {
		i := index[v.PollID]
		polls[i].VotedUsers = append(polls[i].VotedUsers, v.UserID)
	}
	return nil
}

func (r *pollRepository) CastVote(ctx context.Context, vote *models.PollVote) (*models.Poll, bool, error) {
	ctx, span := observability.StartRepositorySpan(ctx, r.db.Dialector.Name(), "CastVote", "poll_votes")
	defer span.End()
	defer observability.TrackQuery("vote", "poll_votes")()

	if vote.CreatedAt.IsZero() {
		vote.CreatedAt = time.Now()
	}

	var replay bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(vote)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var existing models.PollVote
			if err := tx.Where("poll_id = ? AND user_id = ?", vote.PollID, vote.UserID).First(&existing).Error; err != nil {
				return err
			}
			if vote.IdempotencyKey != "" && existing.IdempotencyKey == vote.IdempotencyKey {
				replay = true
				return nil
			}
			return ErrAlreadyVoted
		}

		opt := tx.Model(&models.PollOption{}).
			Where("poll_id = ? AND position = ?", vote.PollID, vote.OptionIndex).
			UpdateColumn("votes", gorm.Expr("votes + 1"))
		if opt.Error != nil {
			return opt.Error
		}
		if opt.RowsAffected == 0 {
			return models.NewValidationError("Invalid option index")
		}

		return tx.Model(&models.Poll{}).
			Where("id = ?", vote.PollID).
			UpdateColumn("total_votes", gorm.Expr("total_votes + 1")).Error
	})
	if err != nil {
		observability.RecordErrorInContext(ctx, err)
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, false, appErr
		}
		return nil, false, models.NewInternalError(err)
	}

	// A replay may follow a stale cached read, so drop the entry either way.
	cache.InvalidatePoll(ctx, vote.PollID)
	poll, err := loadPoll(r.db.WithContext(ctx), vote.PollID)
	if err != nil {
		return nil, false, err
	}
	return poll, replay, nil
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"pollshare/internal/events"
	"pollshare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn       func(context.Context, *models.User) error
	getByIDFn      func(context.Context, uint) (*models.User, error)
	getByUserIDFn  func(context.Context, string) (*models.User, error)
	getByHandleFn  func(context.Context, string) (*models.User, error)
	handleExistsFn func(context.Context, string) (bool, error)
	updateFn       func(context.Context, *models.User) error
	suggestionsFn  func(context.Context, uint, int) ([]models.UserSummary, error)
	searchFn       func(context.Context, string, uint, int) ([]models.UserSummary, error)
}

func (s *userRepoStub) Create(ctx context.Context, u *models.User) error { return s.createFn(ctx, u) }
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUserID(ctx context.Context, subject string) (*models.User, error) {
	return s.getByUserIDFn(ctx, subject)
}
func (s *userRepoStub) GetByHandle(ctx context.Context, handle string) (*models.User, error) {
	return s.getByHandleFn(ctx, handle)
}
func (s *userRepoStub) HandleExists(ctx context.Context, handle string) (bool, error) {
	return s.handleExistsFn(ctx, handle)
}
func (s *userRepoStub) Update(ctx context.Context, u *models.User) error { return s.updateFn(ctx, u) }
func (s *userRepoStub) Suggestions(ctx context.Context, excludeID uint, limit int) ([]models.UserSummary, error) {
	return s.suggestionsFn(ctx, excludeID, limit)
}
func (s *userRepoStub) Search(ctx context.Context, term string, excludeID uint, limit int) ([]models.UserSummary, error) {
	return s.searchFn(ctx, term, excludeID, limit)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn: func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Handle: "user", Name: "User"}, nil
		},
		getByUserIDFn: func(_ context.Context, subject string) (*models.User, error) {
			return &models.User{ID: 1, UserID: subject}, nil
		},
		getByHandleFn:  func(_ context.Context, h string) (*models.User, error) { return &models.User{Handle: h}, nil },
		handleExistsFn: func(_ context.Context, _ string) (bool, error) { return false, nil },
		updateFn:       func(_ context.Context, _ *models.User) error { return nil },
		suggestionsFn:  func(_ context.Context, _ uint, _ int) ([]models.UserSummary, error) { return nil, nil },
		searchFn:       func(_ context.Context, _ string, _ uint, _ int) ([]models.UserSummary, error) { return nil, nil },
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	followFn       func(context.Context, uint, uint) (bool, error)
	unfollowFn     func(context.Context, uint, uint) (bool, error)
	isFollowingFn  func(context.Context, uint, uint) (bool, error)
	followingIDsFn func(context.Context, uint) ([]uint, error)
}

func (s *followRepoStub) Follow(ctx context.Context, a, b uint) (bool, error) {
	return s.followFn(ctx, a, b)
}
func (s *followRepoStub) Unfollow(ctx context.Context, a, b uint) (bool, error) {
	return s.unfollowFn(ctx, a, b)
}
func (s *followRepoStub) IsFollowing(ctx context.Context, a, b uint) (bool, error) {
	return s.isFollowingFn(ctx, a, b)
}
func (s *followRepoStub) FollowingIDs(ctx context.Context, id uint) ([]uint, error) {
	return s.followingIDsFn(ctx, id)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		followFn:       func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unfollowFn:     func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		isFollowingFn:  func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		followingIDsFn: func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
	}
}

// savedPostRepoStub is a stub for repository.SavedPostRepository.
type savedPostRepoStub struct {
	saveFn      func(context.Context, uint, uint) (bool, error)
	unsaveFn    func(context.Context, uint, uint) error
	listPollsFn func(context.Context, uint) ([]models.Poll, error)
}

func (s *savedPostRepoStub) Save(ctx context.Context, u, p uint) (bool, error) {
	return s.saveFn(ctx, u, p)
}
func (s *savedPostRepoStub) Unsave(ctx context.Context, u, p uint) error { return s.unsaveFn(ctx, u, p) }
func (s *savedPostRepoStub) ListPolls(ctx context.Context, u uint) ([]models.Poll, error) {
	return s.listPollsFn(ctx, u)
}

func noopSavedPostRepo() *savedPostRepoStub {
	return &savedPostRepoStub{
		saveFn:      func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unsaveFn:    func(_ context.Context, _, _ uint) error { return nil },
		listPollsFn: func(_ context.Context, _ uint) ([]models.Poll, error) { return nil, nil },
	}
}

// pollRepoStub is a stub for repository.PollRepository.
type pollRepoStub struct {
	createFn   func(context.Context, *models.Poll) error
	getByIDFn  func(context.Context, uint) (*models.Poll, error)
	castVoteFn func(context.Context, *models.PollVote) (*models.Poll, bool, error)
}

func (s *pollRepoStub) Create(ctx context.Context, p *models.Poll) error { return s.createFn(ctx, p) }
func (s *pollRepoStub) GetByID(ctx context.Context, id uint) (*models.Poll, error) {
	return s.getByIDFn(ctx, id)
}
func (s *pollRepoStub) CastVote(ctx context.Context, v *models.PollVote) (*models.Poll, bool, error) {
	return s.castVoteFn(ctx, v)
}

func noopPollRepo() *pollRepoStub {
	return &pollRepoStub{
		createFn:   func(_ context.Context, _ *models.Poll) error { return nil },
		getByIDFn:  func(_ context.Context, id uint) (*models.Poll, error) { return &models.Poll{ID: id}, nil },
		castVoteFn: func(_ context.Context, _ *models.PollVote) (*models.Poll, bool, error) { return &models.Poll{}, false, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPollFn func(context.Context, uint) ([]models.Comment, error)
	deleteFn     func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPoll(ctx context.Context, pollID uint) ([]models.Comment, error) {
	return s.listByPollFn(ctx, pollID)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:    func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listByPollFn: func(_ context.Context, _ uint) ([]models.Comment, error) { return nil, nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}

// recordingActivity captures events and poll notifications.
type recordingActivity struct {
	mu      sync.Mutex
	events  []events.Event
	notices []string
	failPub bool
}

func (r *recordingActivity) Publish(_ context.Context, ev events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failPub {
		return errors.New("broker down")
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingActivity) Close() error { return nil }

func (r *recordingActivity) Notify(_ context.Context, _ uint, eventType string, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, eventType)
}

func (r *recordingActivity) eventTypes() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func newRecordingActivity() (*Activity, *recordingActivity) {
	rec := &recordingActivity{}
	return NewActivity(rec, rec), rec
}

func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeValidation)
}

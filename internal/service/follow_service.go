package service

import (
	"context"
	"strconv"

	"pollshare/internal/events"
	"pollshare/internal/models"
	"pollshare/internal/observability"
	"pollshare/internal/repository"
)

// FollowService maintains the follow graph.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	activity   *Activity
}

// FollowResult is returned by Follow and Unfollow. Both users are reloaded
// after the write so the counters are current.
type FollowResult struct {
	Changed  bool         `json:"changed"`
	Follower *models.User `json:"follower"`
	Followee *models.User `json:"followee"`
}

// NewFollowService returns a new FollowService.
func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	activity *Activity,
) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		activity:   activity,
	}
}

// Follow adds followeeID to followerID's following list. Following twice is a no-op.
func (s *FollowService) Follow(ctx context.Context, followerID, followeeID uint) (*FollowResult, error) {
	if err := s.checkPair(ctx, followerID, followeeID); err != nil {
		return nil, err
	}

	changed, err := s.followRepo.Follow(ctx, followerID, followeeID)
	if err != nil {
		return nil, err
	}
	observability.FollowOperations.WithLabelValues("follow", strconv.FormatBool(changed)).Inc()
	if changed {
		s.activity.emit(ctx, events.New(events.UserFollowed, events.UserKey(followeeID), followerID,
			map[string]uint{"followerId": followerID, "followeeId": followeeID}))
	}
	return s.result(ctx, changed, followerID, followeeID)
}

// Unfollow removes the edge. Unfollowing a user that is not followed is a no-op.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID uint) (*FollowResult, error) {
	if err := s.checkPair(ctx, followerID, followeeID); err != nil {
		return nil, err
	}

	changed, err := s.followRepo.Unfollow(ctx, followerID, followeeID)
	if err != nil {
		return nil, err
	}
	observability.FollowOperations.WithLabelValues("unfollow", strconv.FormatBool(changed)).Inc()
	if changed {
		s.activity.emit(ctx, events.New(events.UserUnfollowed, events.UserKey(followeeID), followerID,
			map[string]uint{"followerId": followerID, "followeeId": followeeID}))
	}
	return s.result(ctx, changed, followerID, followeeID)
}

// IsFollowing reports whether followerID follows followeeID.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.followRepo.IsFollowing(ctx, followerID, followeeID)
}

func (s *FollowService) checkPair(ctx context.Context, followerID, followeeID uint) error {
	if followerID == 0 || followeeID == 0 {
		return models.NewValidationError("followerId and followeeId are required")
	}
	if followerID == followeeID {
		return models.NewValidationError("Cannot follow yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, followerID); err != nil {
		return err
	}
	if _, err := s.userRepo.GetByID(ctx, followeeID); err != nil {
		return err
	}
	return nil
}

func (s *FollowService) result(ctx context.Context, changed bool, followerID, followeeID uint) (*FollowResult, error) {
	follower, err := s.userRepo.GetByID(ctx, followerID)
	if err != nil {
		return nil, err
	}
	followee, err := s.userRepo.GetByID(ctx, followeeID)
	if err != nil {
		return nil, err
	}
	return &FollowResult{Changed: changed, Follower: follower, Followee: followee}, nil
}

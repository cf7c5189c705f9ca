package service

import (
	"context"

	"pollshare/internal/events"
	"pollshare/internal/models"
	"pollshare/internal/repository"
)

const (
	MsgPostAlreadySaved = "Post already saved"
	MsgPostSaved        = "Post saved successfully"
	MsgPostUnsaved      = "Post unsaved successfully"
)

// SavedPostService manages a user's saved polls.
type SavedPostService struct {
	savedRepo repository.SavedPostRepository
	userRepo  repository.UserRepository
	pollRepo  repository.PollRepository
	activity  *Activity
}

func NewSavedPostService(
	savedRepo repository.SavedPostRepository,
	userRepo repository.UserRepository,
	pollRepo repository.PollRepository,
	activity *Activity,
) *SavedPostService {
	return &SavedPostService{
		savedRepo: savedRepo,
		userRepo:  userRepo,
		pollRepo:  pollRepo,
		activity:  activity,
	}
}

// Save adds the poll to the user's saved list and returns the status message.
func (s *SavedPostService) Save(ctx context.Context, userID, pollID uint) (string, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return "", err
	}
	if pollID == 0 {
		return "", models.NewValidationError("postId is required")
	}
	if _, err := s.pollRepo.GetByID(ctx, pollID); err != nil {
		return "", err
	}

	created, err := s.savedRepo.Save(ctx, userID, pollID)
	if err != nil {
		return "", err
	}
	if !created {
		return MsgPostAlreadySaved, nil
	}
	s.activity.emit(ctx, events.New(events.PostSaved, events.UserKey(userID), userID,
		map[string]uint{"postId": pollID}))
	return MsgPostSaved, nil
}

// Unsave removes the poll from the saved list. Removing an absent poll succeeds.
func (s *SavedPostService) Unsave(ctx context.Context, userID, pollID uint) (string, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return "", err
	}
	if err := s.savedRepo.Unsave(ctx, userID, pollID); err != nil {
		return "", err
	}
	s.activity.emit(ctx, events.New(events.PostUnsaved, events.UserKey(userID), userID,
		map[string]uint{"postId": pollID}))
	return MsgPostUnsaved, nil
}

// List returns the saved polls, most recently saved first.
func (s *SavedPostService) List(ctx context.Context, userID uint) ([]models.Poll, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.savedRepo.ListPolls(ctx, userID)
}

func (s *SavedPostService) checkUser(ctx context.Context, userID uint) error {
	if userID == 0 {
		return models.NewNotFoundError("User")
	}
	_, err := s.userRepo.GetByID(ctx, userID)
	return err
}

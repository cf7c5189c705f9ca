package service

import (
	"context"
	"strings"

	"pollshare/internal/models"
	"pollshare/internal/repository"
	"pollshare/internal/validation"
)

// UserService covers profile creation, lookup, and discovery.
type UserService struct {
	userRepo repository.UserRepository
}

// CreateUserInput carries the signup form.
type CreateUserInput struct {
	UserID         string
	Name           string
	Email          string
	Role           string
	Handle         string
	ProfilePicture string
	Interests      []string
	PhoneNumber    string
	Gender         string
	Age            int
}

// UpdateProfileInput holds optional profile fields; nil fields are left unchanged.
type UpdateProfileInput struct {
	UserID         string
	Name           *string
	Role           *string
	ProfilePicture *string
	Interests      []string
	PhoneNumber    *string
	Gender         *string
	Age            *int
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateUser registers a profile. Handles are stored lower-case and must be
// unique regardless of case.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return nil, models.NewValidationError("userid is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, models.NewValidationError("name is required")
	}
	if in.Age < 0 {
		return nil, models.NewValidationError("age must not be negative")
	}

	handle := validation.NormalizeHandle(in.Handle)
	if err := validation.ValidateHandle(handle); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	exists, err := s.userRepo.HandleExists(ctx, handle)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewValidationError("Handle already taken")
	}

	user := &models.User{
		UserID:         strings.TrimSpace(in.UserID),
		Handle:         handle,
		Name:           strings.TrimSpace(in.Name),
		Email:          strings.TrimSpace(in.Email),
		Role:           in.Role,
		ProfilePicture: in.ProfilePicture,
		Interests:      in.Interests,
		PhoneNumber:    in.PhoneNumber,
		Gender:         in.Gender,
		Age:            in.Age,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// HandleExists reports whether the handle is taken, ignoring case.
func (s *UserService) HandleExists(ctx context.Context, handle string) (bool, error) {
	handle = validation.NormalizeHandle(handle)
	if handle == "" {
		return false, models.NewValidationError("Handle is required")
	}
	return s.userRepo.HandleExists(ctx, handle)
}

// GetByExternalID looks a user up by the identity provider's subject.
func (s *UserService) GetByExternalID(ctx context.Context, subject string) (*models.User, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, models.NewNotFoundError("User")
	}
	return s.userRepo.GetByUserID(ctx, subject)
}

// GetByID loads a user by internal id.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if id == 0 {
		return nil, models.NewNotFoundError("User")
	}
	return s.userRepo.GetByID(ctx, id)
}

// GetByHandle returns the profile with populated follower and following lists.
func (s *UserService) GetByHandle(ctx context.Context, handle string) (*models.User, error) {
	handle = validation.NormalizeHandle(handle)
	if handle == "" {
		return nil, models.NewNotFoundError("User")
	}
	user, err := s.userRepo.GetByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	user.FollowersCount = len(user.Followers)
	user.FollowingCount = len(user.Following)
	return user, nil
}

// UpdateProfile applies the provided fields to the user's profile.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.GetByExternalID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, models.NewValidationError("name must not be empty")
		}
		user.Name = name
	}
	if in.Age != nil {
		if *in.Age < 0 {
			return nil, models.NewValidationError("age must not be negative")
		}
		user.Age = *in.Age
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if in.ProfilePicture != nil {
		user.ProfilePicture = *in.ProfilePicture
	}
	if in.Interests != nil {
		user.Interests = in.Interests
	}
	if in.PhoneNumber != nil {
		user.PhoneNumber = *in.PhoneNumber
	}
	if in.Gender != nil {
		user.Gender = *in.Gender
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Suggestions samples users that excludeID does not follow yet.
func (s *UserService) Suggestions(ctx context.Context, excludeID uint, limit int) ([]models.UserSummary, error) {
	if excludeID == 0 {
		return nil, models.NewValidationError("Invalid excludeId")
	}
	if _, err := s.userRepo.GetByID(ctx, excludeID); err != nil {
		return nil, err
	}
	return s.userRepo.Suggestions(ctx, excludeID, limit)
}

// Search matches the term against names and handles, ignoring case.
func (s *UserService) Search(ctx context.Context, term string, excludeID uint, limit int) ([]models.UserSummary, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, models.NewValidationError("Search term required")
	}
	return s.userRepo.Search(ctx, term, excludeID, limit)
}

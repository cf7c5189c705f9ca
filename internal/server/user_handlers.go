package server

import (
	"context"
	"strconv"

	"pollshare/internal/featureflags"
	"pollshare/internal/models"
	"pollshare/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createUserRequest struct {
	UserID         string   `json:"userid"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Role           string   `json:"role"`
	Interests      []string `json:"interests"`
	PhoneNumber    string   `json:"phoneNumber"`
	Handle         string   `json:"handle"`
	Gender         string   `json:"gender"`
	Age            int      `json:"age"`
	ProfilePicture string   `json:"profilePicture"`
}

// CreateUser handles POST /api/users
// @Summary Create user
// @Description Register a profile for an authenticated identity
// @Tags users
// @Accept json
// @Produce json
// @Param request body createUserRequest true "Profile"
// @Success 201 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /users [post]
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if err := s.authorizeSubject(c, req.UserID); err != nil {
		return respondError(c, err)
	}

	user, err := s.userService.CreateUser(c.UserContext(), service.CreateUserInput{
		UserID:         req.UserID,
		Name:           req.Name,
		Email:          req.Email,
		Role:           req.Role,
		Handle:         req.Handle,
		ProfilePicture: req.ProfilePicture,
		Interests:      req.Interests,
		PhoneNumber:    req.PhoneNumber,
		Gender:         req.Gender,
		Age:            req.Age,
	})
	if err != nil {
		// Signup failures are reported as bad requests.
		if models.StatusFor(err) == fiber.StatusInternalServerError {
			return models.RespondWithError(c, fiber.StatusBadRequest, err)
		}
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// CheckHandle handles GET /api/users/check-handle?handle=
// @Summary Check handle availability
// @Tags users
// @Produce json
// @Param handle query string true "Handle"
// @Success 200 {object} object{exists=bool}
// @Failure 400 {object} models.ErrorResponse
// @Router /users/check-handle [get]
func (s *Server) CheckHandle(c *fiber.Ctx) error {
	exists, err := s.userService.HandleExists(c.UserContext(), c.Query("handle"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"exists": exists})
}

// GetUser handles GET /api/users/:id where id is the external user id
// @Summary Get user by external id
// @Tags users
// @Produce json
// @Param id path string true "External user id"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	user, err := s.userService.GetByExternalID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// GetUserByHandle handles GET /api/users/handle/:handle
// @Summary Get user by handle
// @Description Includes follower and following summaries
// @Tags users
// @Produce json
// @Param handle path string true "Handle"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/handle/{handle} [get]
func (s *Server) GetUserByHandle(c *fiber.Ctx) error {
	user, err := s.userService.GetByHandle(c.UserContext(), c.Params("handle"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

type updateUserRequest struct {
	Name           *string  `json:"name"`
	Role           *string  `json:"role"`
	ProfilePicture *string  `json:"profilePicture"`
	Interests      []string `json:"interests"`
	PhoneNumber    *string  `json:"phoneNumber"`
	Gender         *string  `json:"gender"`
	Age            *int     `json:"age"`
}

// UpdateUser handles PUT /api/users/:id
// @Summary Update profile
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "External user id"
// @Param request body updateUserRequest true "Fields to change"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [put]
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	subject := c.Params("id")
	if err := s.authorizeSubject(c, subject); err != nil {
		return respondError(c, err)
	}

	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:         subject,
		Name:           req.Name,
		Role:           req.Role,
		ProfilePicture: req.ProfilePicture,
		Interests:      req.Interests,
		PhoneNumber:    req.PhoneNumber,
		Gender:         req.Gender,
		Age:            req.Age,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

type suggestionsRequest struct {
	ExcludeID looseID `json:"excludeId" swaggertype:"integer"`
	Limit     looseID `json:"limit" swaggertype:"integer"`
}

// GetSuggestions handles POST /api/users/suggestions
// @Summary Suggest users to follow
// @Description Random sample excluding the caller and users they already follow
// @Tags users
// @Accept json
// @Produce json
// @Param request body suggestionsRequest true "Caller and limit"
// @Success 200 {array} models.UserSummary
// @Failure 400 {object} models.ErrorResponse
// @Router /users/suggestions [post]
func (s *Server) GetSuggestions(c *fiber.Ctx) error {
	var req suggestionsRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if !req.ExcludeID.Valid() {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid excludeId"))
	}
	if !s.featureFlags.Enabled(featureflags.Suggestions, strconv.FormatUint(uint64(req.ExcludeID.Value()), 10)) {
		return c.JSON([]models.UserSummary{})
	}

	out, err := s.userService.Suggestions(c.UserContext(), req.ExcludeID.Value(), int(req.Limit.Value()))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(nonNil(out))
}

type searchUsersRequest struct {
	SearchTerm string  `json:"searchTerm"`
	ExcludeID  looseID `json:"excludeId" swaggertype:"integer"`
	Limit      looseID `json:"limit" swaggertype:"integer"`
}

// SearchUsers handles POST /api/users/search-users
// @Summary Search users
// @Description Case-insensitive substring match on name or handle
// @Tags users
// @Accept json
// @Produce json
// @Param request body searchUsersRequest true "Search"
// @Success 200 {array} models.UserSummary
// @Failure 400 {object} models.ErrorResponse
// @Router /users/search-users [post]
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	var req searchUsersRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	out, err := s.userService.Search(c.UserContext(), req.SearchTerm, req.ExcludeID.Value(), int(req.Limit.Value()))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(nonNil(out))
}

type followRequest struct {
	FollowerID looseID `json:"followerId" swaggertype:"integer"`
	FolloweeID looseID `json:"followeeId" swaggertype:"integer"`
}

// FollowUser handles POST /api/users/follow
// @Summary Follow a user
// @Tags users
// @Accept json
// @Produce json
// @Param request body followRequest true "Follower and followee"
// @Success 200 {object} object{success=bool}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/follow [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	return s.handleFollow(c, s.followService.Follow)
}

// UnfollowUser handles POST /api/users/unfollow
// @Summary Unfollow a user
// @Tags users
// @Accept json
// @Produce json
// @Param request body followRequest true "Follower and followee"
// @Success 200 {object} object{success=bool}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/unfollow [post]
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	return s.handleFollow(c, s.followService.Unfollow)
}

func (s *Server) handleFollow(c *fiber.Ctx, op func(ctx context.Context, followerID, followeeID uint) (*service.FollowResult, error)) error {
	var req followRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if !req.FollowerID.Valid() || !req.FolloweeID.Valid() {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("followerId and followeeId are required"))
	}
	if err := s.authorizeActor(c, req.FollowerID.Value()); err != nil {
		return respondError(c, err)
	}

	res, err := op(c.UserContext(), req.FollowerID.Value(), req.FolloweeID.Value())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"follower": res.Follower,
		"followee": res.Followee,
	})
}

type savePostRequest struct {
	UserID looseID `json:"userId" swaggertype:"integer"`
	PostID looseID `json:"postId" swaggertype:"integer"`
}

// SavePost handles POST /api/users/save-post
// @Summary Save a poll
// @Tags users
// @Accept json
// @Produce json
// @Param request body savePostRequest true "User and poll"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/save-post [post]
func (s *Server) SavePost(c *fiber.Ctx) error {
	return s.handleSave(c, s.savedPostService.Save)
}

// UnsavePost handles POST /api/users/unsave-post
// @Summary Remove a saved poll
// @Tags users
// @Accept json
// @Produce json
// @Param request body savePostRequest true "User and poll"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/unsave-post [post]
func (s *Server) UnsavePost(c *fiber.Ctx) error {
	return s.handleSave(c, s.savedPostService.Unsave)
}

func (s *Server) handleSave(c *fiber.Ctx, op func(ctx context.Context, userID, pollID uint) (string, error)) error {
	var req savePostRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if err := s.authorizeActor(c, req.UserID.Value()); err != nil {
		return respondError(c, err)
	}

	msg, err := op(c.UserContext(), req.UserID.Value(), req.PostID.Value())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": msg})
}

// GetSavedPosts handles GET /api/users/saved-posts/:userId
// @Summary List saved polls
// @Tags users
// @Produce json
// @Param userId path int true "User id"
// @Success 200 {array} models.Poll
// @Failure 404 {object} models.ErrorResponse
// @Router /users/saved-posts/{userId} [get]
func (s *Server) GetSavedPosts(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("userId")
	if err != nil || userID <= 0 {
		return respondError(c, models.NewNotFoundError("User"))
	}

	polls, err := s.savedPostService.List(c.UserContext(), uint(userID))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(nonNil(polls))
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

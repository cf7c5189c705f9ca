package server

import (
	"strings"
	"time"

	"pollshare/internal/models"
	"pollshare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// idempotencyKeyMaxLen matches the stored column size.
const idempotencyKeyMaxLen = 64

type createPollRequest struct {
	Author                looseID   `json:"author" swaggertype:"integer"`
	Question              string    `json:"question"`
	Options               []string  `json:"options"`
	CommunityHandle       string    `json:"communityHandle"`
	ExpiresAt             time.Time `json:"expiresAt"`
	ShowVotesBeforeExpire bool      `json:"showVotesBeforeExpire"`
}

// CreatePoll handles POST /api/polls
// @Summary Create poll
// @Tags polls
// @Accept json
// @Produce json
// @Param request body createPollRequest true "Poll"
// @Success 201 {object} models.Poll
// @Failure 400 {object} models.ErrorResponse
// @Router /polls [post]
func (s *Server) CreatePoll(c *fiber.Ctx) error {
	var req createPollRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if !req.Author.Valid() {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("author is required"))
	}
	if err := s.authorizeActor(c, req.Author.Value()); err != nil {
		return respondError(c, err)
	}

	poll, err := s.pollService.CreatePoll(c.UserContext(), service.CreatePollInput{
		AuthorID:              req.Author.Value(),
		Question:              req.Question,
		Options:               req.Options,
		CommunityHandle:       req.CommunityHandle,
		ExpiresAt:             req.ExpiresAt,
		ShowVotesBeforeExpire: req.ShowVotesBeforeExpire,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(poll)
}

// GetPoll handles GET /api/polls/:id
// @Summary Get poll
// @Tags polls
// @Produce json
// @Param id path int true "Poll id"
// @Success 200 {object} models.Poll
// @Failure 404 {object} models.ErrorResponse
// @Router /polls/{id} [get]
func (s *Server) GetPoll(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	poll, err := s.pollService.GetPoll(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(poll)
}

type voteRequest struct {
	OptionIndex *int    `json:"optionIndex"`
	UserID      looseID `json:"userId" swaggertype:"integer"`
}

// VotePoll handles POST /api/polls/:id/vote
// @Summary Vote on a poll
// @Description One vote per user. Retries carrying the same Idempotency-Key return the current poll.
// @Tags polls
// @Accept json
// @Produce json
// @Param id path int true "Poll id"
// @Param Idempotency-Key header string false "Client retry key"
// @Param request body voteRequest true "Vote"
// @Success 200 {object} models.Poll
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /polls/{id}/vote [post]
func (s *Server) VotePoll(c *fiber.Ctx) error {
	pollID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req voteRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if req.OptionIndex == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("optionIndex is required"))
	}
	if !req.UserID.Valid() {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("userId is required"))
	}
	key := strings.TrimSpace(c.Get("Idempotency-Key"))
	if len(key) > idempotencyKeyMaxLen {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Idempotency-Key is too long"))
	}
	if err := s.authorizeActor(c, req.UserID.Value()); err != nil {
		return respondError(c, err)
	}

	poll, err := s.pollService.Vote(c.UserContext(), service.VoteInput{
		PollID:         pollID,
		UserID:         req.UserID.Value(),
		OptionIndex:    *req.OptionIndex,
		IdempotencyKey: key,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(poll)
}

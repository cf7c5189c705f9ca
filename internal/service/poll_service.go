package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"pollshare/internal/events"
	"pollshare/internal/models"
	"pollshare/internal/observability"
	"pollshare/internal/repository"
	"pollshare/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultPollDuration applies when a poll is created without an expiry.
const DefaultPollDuration = 7 * 24 * time.Hour

// Vote outcomes used as metric labels.
const (
	voteAccepted  = "accepted"
	voteDuplicate = "duplicate"
	voteReplayed  = "replayed"
	voteExpired   = "expired"
	voteInvalid   = "invalid"
	voteError     = "error"
)

var ErrPollExpired = models.NewConflictError("Poll has expired")

// PollService covers poll creation, lookup, and voting.
type PollService struct {
	pollRepo repository.PollRepository
	userRepo repository.UserRepository
	activity *Activity
	now      func() time.Time
}

// CreatePollInput describes a new poll.
type CreatePollInput struct {
	AuthorID              uint
	Question              string
	Options               []string
	CommunityHandle       string
	ExpiresAt             time.Time
	ShowVotesBeforeExpire bool
}

// VoteInput is one vote. IdempotencyKey lets a client retry safely.
type VoteInput struct {
	PollID         uint
	UserID         uint
	OptionIndex    int
	IdempotencyKey string
}

// VoteUpdate is the live payload sent to poll viewers after a vote.
type VoteUpdate struct {
	Options    []models.PollOption `json:"options"`
	TotalVotes int                 `json:"totalVotes"`
}

func NewPollService(
	pollRepo repository.PollRepository,
	userRepo repository.UserRepository,
	activity *Activity,
) *PollService {
	return &PollService{
		pollRepo: pollRepo,
		userRepo: userRepo,
		activity: activity,
		now:      time.Now,
	}
}

// CreatePoll validates and stores a poll with zeroed counts.
func (s *PollService) CreatePoll(ctx context.Context, in CreatePollInput) (*models.Poll, error) {
	if err := validation.ValidatePoll(in.Question, in.Options); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if _, err := s.userRepo.GetByID(ctx, in.AuthorID); err != nil {
		return nil, err
	}

	now := s.now()
	expiresAt := in.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = now.Add(DefaultPollDuration)
	}
	if !expiresAt.After(now) {
		return nil, models.NewValidationError("expiresAt must be in the future")
	}

	poll := &models.Poll{
		Question:              strings.TrimSpace(in.Question),
		AuthorID:              in.AuthorID,
		CommunityHandle:       validation.NormalizeHandle(in.CommunityHandle),
		ExpiresAt:             expiresAt.UTC(),
		ShowVotesBeforeExpire: in.ShowVotesBeforeExpire,
	}
	for _, text := range in.Options {
		poll.Options = append(poll.Options, models.PollOption{Text: strings.TrimSpace(text)})
	}

	if err := s.pollRepo.Create(ctx, poll); err != nil {
		return nil, err
	}
	return s.pollRepo.GetByID(ctx, poll.ID)
}

// GetPoll returns the poll with options in order and its voted-set.
func (s *PollService) GetPoll(ctx context.Context, id uint) (*models.Poll, error) {
	if id == 0 {
		return nil, models.NewNotFoundError("Poll")
	}
	return s.pollRepo.GetByID(ctx, id)
}

// Vote records one vote per user and poll. The returned poll reflects the
// committed counts.
func (s *PollService) Vote(ctx context.Context, in VoteInput) (_ *models.Poll, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PollService.Vote",
		attribute.Int64("poll.id", int64(in.PollID)),
		attribute.Int("poll.option", in.OptionIndex),
	)
	outcome := voteInvalid
	defer func() {
		observability.VotesTotal.WithLabelValues(outcome).Inc()
		observability.EndSpan(span, err, attribute.String("vote.outcome", outcome))
	}()

	if in.UserID == 0 {
		return nil, models.NewValidationError("userId is required")
	}
	if _, err := s.userRepo.GetByID(ctx, in.UserID); err != nil {
		return nil, err
	}

	poll, err := s.GetPoll(ctx, in.PollID)
	if err != nil {
		return nil, err
	}
	if in.OptionIndex < 0 || in.OptionIndex >= len(poll.Options) {
		return nil, models.NewValidationError("Invalid option index")
	}
	if poll.Expired(s.now()) {
		outcome = voteExpired
		return nil, ErrPollExpired
	}
	// Without a key a known voter can only be a duplicate. With one, the
	// repository decides whether this is a replay.
	if poll.HasVoted(in.UserID) && in.IdempotencyKey == "" {
		outcome = voteDuplicate
		return nil, repository.ErrAlreadyVoted
	}

	updated, replayed, err := s.pollRepo.CastVote(ctx, &models.PollVote{
		PollID:         in.PollID,
		UserID:         in.UserID,
		OptionIndex:    in.OptionIndex,
		IdempotencyKey: in.IdempotencyKey,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyVoted):
			outcome = voteDuplicate
		case models.IsCode(err, models.CodeValidation):
			outcome = voteInvalid
		default:
			outcome = voteError
		}
		return nil, err
	}
	if replayed {
		outcome = voteReplayed
		return updated, nil
	}
	outcome = voteAccepted

	s.activity.emit(ctx, events.New(events.VoteCast, events.PollKey(in.PollID), in.UserID,
		map[string]int{"optionIndex": in.OptionIndex}))
	s.activity.notifyPoll(ctx, in.PollID, events.VoteCast, VoteUpdate{
		Options:    updated.Options,
		TotalVotes: updated.TotalVotes,
	})
	return updated, nil
}

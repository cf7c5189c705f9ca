package polldetail

import (
	"context"
	"log/slog"

	"pollshare/internal/models"
)

// PollState is a copy of the voting state for rendering.
type PollState struct {
	Poll       *models.Poll
	Options    []models.PollOption
	TotalVotes int
	Selected   int
	HasVoted   bool
}

// State returns a copy of the current voting state. Selected is -1 when no
// option has been picked in this view.
func (v *View) State() PollState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return PollState{
		Poll:       v.confirmed,
		Options:    cloneOptions(v.options),
		TotalVotes: v.totalVotes,
		Selected:   v.selected,
		HasVoted:   v.hasVoted,
	}
}

// Vote records the viewer's choice. The option count, total and has-voted
// flag change before the request is sent; a failed request restores the last
// server-confirmed counts and clears the selection. Calls made while a vote is
// in flight, or without a viewer or poll, return ErrVoteRejected and change
// nothing.
func (v *View) Vote(ctx context.Context, optionIndex int) error {
	var userID uint

	apply := func() error {
		v.mu.Lock()
		defer v.mu.Unlock()
		if v.viewer == nil || v.confirmed == nil || v.hasVoted ||
			optionIndex < 0 || optionIndex >= len(v.options) {
			return ErrVoteRejected
		}
		userID = v.viewer.ID
		v.selected = optionIndex
		v.hasVoted = true
		v.options[optionIndex].Votes++
		v.totalVotes++
		return nil
	}

	request := func(ctx context.Context) error {
		poll, err := v.api.Vote(ctx, v.pollID, optionIndex, userID)
		if err != nil {
			return err
		}
		v.mu.Lock()
		v.setConfirmed(poll)
		v.mu.Unlock()
		return nil
	}

	rollback := func(err error) {
		v.logger.ErrorContext(ctx, "vote failed",
			slog.Uint64("poll_id", uint64(v.pollID)),
			slog.Int("option", optionIndex),
			slog.String("error", err.Error()),
		)
		v.mu.Lock()
		defer v.mu.Unlock()
		v.hasVoted = false
		v.selected = noSelection
		v.options = cloneOptions(v.confirmed.Options)
		v.totalVotes = v.confirmed.TotalVotes
	}

	return Run(ctx, apply, request, rollback)
}

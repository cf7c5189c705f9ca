// Package polldetail holds the state of a poll detail screen: optimistic
// voting, the comment thread, reply and delete state, local comment votes and
// the hover profile card. Event handlers may call into a View from any goroutine.
package polldetail

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"pollshare/internal/models"
	"pollshare/internal/pollclient"
)

var (
	ErrVoteRejected    = errors.New("polldetail: vote not allowed")
	ErrNotReady        = errors.New("polldetail: user or poll missing")
	ErrEmptyComment    = errors.New("polldetail: comment body is empty")
	ErrCommentPending  = errors.New("polldetail: comment already being posted")
	ErrNoReplyTarget   = errors.New("polldetail: no comment selected for reply")
	ErrNotAuthor       = errors.New("polldetail: only the author can delete a comment")
	ErrDeletePending   = errors.New("polldetail: delete already in progress")
	ErrCommentNotFound = errors.New("polldetail: comment not in thread")
)

// PollAPI is the subset of the poll endpoints the view calls.
type PollAPI interface {
	GetPoll(ctx context.Context, pollID uint) (*models.Poll, error)
	GetComments(ctx context.Context, pollID uint) ([]models.Comment, error)
	Vote(ctx context.Context, pollID uint, optionIndex int, userID uint) (*models.Poll, error)
	PostComment(ctx context.Context, pollID uint, in pollclient.NewComment) (*models.Comment, error)
	DeleteComment(ctx context.Context, pollID, commentID, userID uint) error
}

var _ PollAPI = (*pollclient.Client)(nil)

// Viewer is the signed-in user looking at the poll.
type Viewer struct {
	ID             uint
	Handle         string
	ProfilePicture string
}

const noSelection = -1

// View is the state behind one poll detail screen.
type View struct {
	mu     sync.Mutex
	api    PollAPI
	pollID uint
	viewer *Viewer
	logger *slog.Logger
	now    func() time.Time

	// confirmed is the last poll returned by the server. options and
	// totalVotes are the local copies voting mutates ahead of it.
	confirmed  *models.Poll
	options    []models.PollOption
	totalVotes int
	selected   int
	hasVoted   bool

	comments     []models.Comment
	draft        string
	commenting   bool
	replyingTo   uint
	replyContent string
	commentVotes map[uint]CommentVote
	deletingID   uint

	hover *HoverCard
}

// Option configures a View.
type Option func(*View)

// WithViewer sets the signed-in user. Without one the view is read-only.
func WithViewer(v Viewer) Option {
	return func(view *View) { view.viewer = &v }
}

// WithPoll seeds the view with a poll already on hand, e.g. from a feed.
func WithPoll(p *models.Poll) Option {
	return func(view *View) { view.setConfirmed(p) }
}

// WithLogger sets the logger used for failed background calls.
func WithLogger(l *slog.Logger) Option {
	return func(view *View) { view.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(view *View) { view.now = now }
}

// WithScheduler sets the timer source of the hover card.
func WithScheduler(s Scheduler) Option {
	return func(view *View) { view.hover = NewHoverCard(s) }
}

// NewView returns the view for pollID.
func NewView(api PollAPI, pollID uint, opts ...Option) *View {
	v := &View{
		api:          api,
		pollID:       pollID,
		logger:       slog.Default(),
		now:          time.Now,
		selected:     noSelection,
		commentVotes: make(map[uint]CommentVote),
	}
	for _, opt := range opts {
		opt(v)
	}
	// Re-derive has-voted in case the viewer was set after the poll.
	v.setConfirmed(v.confirmed)
	if v.hover == nil {
		v.hover = NewHoverCard(nil)
	}
	return v
}

// Load fetches the poll and then its comments. It does nothing when a poll
// was seeded with WithPoll.
func (v *View) Load(ctx context.Context) error {
	v.mu.Lock()
	loaded := v.confirmed != nil
	v.mu.Unlock()
	if loaded {
		return nil
	}

	poll, err := v.api.GetPoll(ctx, v.pollID)
	if err != nil {
		v.logger.ErrorContext(ctx, "fetch poll failed", slog.Uint64("poll_id", uint64(v.pollID)), slog.String("error", err.Error()))
		return err
	}
	comments, err := v.api.GetComments(ctx, v.pollID)
	if err != nil {
		v.logger.ErrorContext(ctx, "fetch comments failed", slog.Uint64("poll_id", uint64(v.pollID)), slog.String("error", err.Error()))
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.setConfirmed(poll)
	if err == nil {
		v.comments = comments
	}
	return err
}

// setConfirmed records a server poll and resets the local counts to it.
// Callers hold mu.
func (v *View) setConfirmed(p *models.Poll) {
	if p == nil {
		return
	}
	v.confirmed = p
	v.options = cloneOptions(p.Options)
	v.totalVotes = p.TotalVotes
	if v.viewer != nil && p.HasVoted(v.viewer.ID) {
		v.hasVoted = true
	}
}

// Hover returns the hover profile card of the view.
func (v *View) Hover() *HoverCard {
	return v.hover
}

// Close stops pending timers.
func (v *View) Close() {
	v.hover.Close()
}

func cloneOptions(in []models.PollOption) []models.PollOption {
	if in == nil {
		return nil
	}
	out := make([]models.PollOption, len(in))
	copy(out, in)
	return out
}

package polldetail

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"pollshare/internal/models"
	"pollshare/internal/pollclient"
)

var errNetwork = errors.New("network down")

type stubAPI struct {
	getPollFn       func(ctx context.Context, pollID uint) (*models.Poll, error)
	getCommentsFn   func(ctx context.Context, pollID uint) ([]models.Comment, error)
	voteFn          func(ctx context.Context, pollID uint, optionIndex int, userID uint) (*models.Poll, error)
	postCommentFn   func(ctx context.Context, pollID uint, in pollclient.NewComment) (*models.Comment, error)
	deleteCommentFn func(ctx context.Context, pollID, commentID, userID uint) error
}

func (s *stubAPI) GetPoll(ctx context.Context, pollID uint) (*models.Poll, error) {
	return s.getPollFn(ctx, pollID)
}

func (s *stubAPI) GetComments(ctx context.Context, pollID uint) ([]models.Comment, error) {
	return s.getCommentsFn(ctx, pollID)
}

func (s *stubAPI) Vote(ctx context.Context, pollID uint, optionIndex int, userID uint) (*models.Poll, error) {
	return s.voteFn(ctx, pollID, optionIndex, userID)
}

func (s *stubAPI) PostComment(ctx context.Context, pollID uint, in pollclient.NewComment) (*models.Comment, error) {
	return s.postCommentFn(ctx, pollID, in)
}

func (s *stubAPI) DeleteComment(ctx context.Context, pollID, commentID, userID uint) error {
	return s.deleteCommentFn(ctx, pollID, commentID, userID)
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func samplePoll() *models.Poll {
	return &models.Poll{
		ID:        1,
		Question:  "Best editor?",
		AuthorID:  10,
		ExpiresAt: fixedNow.Add(5 * time.Hour),
		Options: []models.PollOption{
			{Position: 0, Text: "vim", Votes: 2},
			{Position: 1, Text: "emacs", Votes: 1},
		},
		TotalVotes: 3,
		VotedUsers: []uint{20, 21, 22},
	}
}

// votedCopy is p after userID voted for optionIndex.
func votedCopy(p *models.Poll, optionIndex int, userID uint) *models.Poll {
	out := *p
	out.Options = cloneOptions(p.Options)
	out.Options[optionIndex].Votes++
	out.TotalVotes++
	out.VotedUsers = append(append([]uint(nil), p.VotedUsers...), userID)
	return &out
}

func sampleThread() []models.Comment {
	parent := uint(100)
	return []models.Comment{
		{ID: 100, PollID: 1, AuthorID: 10, Handle: "alice", Body: "top", VoteCount: 4, Replies: []models.Comment{
			{ID: 101, PollID: 1, AuthorID: 11, Handle: "bob", Body: "reply", ParentID: &parent},
		}},
		{ID: 102, PollID: 1, AuthorID: 11, Body: "second"},
	}
}

// fakeScheduler fires timers when the test advances its clock.
type fakeScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	s       *fakeScheduler
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{s: s, at: s.now + d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves the clock forward and runs due timers in order.
func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired && t.at <= s.now {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

// Pending counts timers that have neither fired nor been stopped.
func (s *fakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

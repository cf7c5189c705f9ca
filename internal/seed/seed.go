// Package seed fills a database with demo users, polls, follows, votes and
// comments. Everything goes through the repositories so the stored data
// satisfies the same rules as API writes. Intended for development and tests.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pollshare/internal/database"
	"pollshare/internal/middleware"
	"pollshare/internal/models"
	"pollshare/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options sizes a seeding run.
type Options struct {
	NumUsers        int
	NumPolls        int
	MaxFollows      int
	CommentsPerPoll int
	// VoteRate is the chance in [0,1] that a user votes on a given poll.
	VoteRate float64
	// ExpiredRate is the share of polls created already closed.
	ExpiredRate float64
}

// DefaultOptions is a small but lively data set.
var DefaultOptions = Options{
	NumUsers:        30,
	NumPolls:        40,
	MaxFollows:      8,
	CommentsPerPoll: 4,
	VoteRate:        0.5,
	ExpiredRate:     0.2,
}

// Summary counts what a run created.
type Summary struct {
	Users    int
	Polls    int
	Follows  int
	Votes    int
	Comments int
	Saves    int
}

// Seeder writes demo data through the repositories.
type Seeder struct {
	db       *gorm.DB
	faker    *gofakeit.Faker
	users    repository.UserRepository
	follows  repository.FollowRepository
	polls    repository.PollRepository
	comments repository.CommentRepository
	saved    repository.SavedPostRepository
	now      func() time.Time
	handles  map[string]struct{}
}

// NewSeeder returns a seeder. The same seed value yields the same content.
func NewSeeder(db *gorm.DB, seed int64) *Seeder {
	return &Seeder{
		db:       db,
		faker:    gofakeit.New(seed),
		users:    repository.NewUserRepository(db),
		follows:  repository.NewFollowRepository(db),
		polls:    repository.NewPollRepository(db),
		comments: repository.NewCommentRepository(db),
		saved:    repository.NewSavedPostRepository(db),
		now:      time.Now,
		handles:  make(map[string]struct{}),
	}
}

// ClearAll deletes every row, dependents first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	tables := database.PersistentModels()
	for i := len(tables) - 1; i >= 0; i-- {
		// A fresh chain per table; a reused one keeps the first statement's table.
		tx := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true, NewDB: true}).Unscoped()
		if err := tx.Delete(tables[i]).Error; err != nil {
			return fmt.Errorf("clear %T: %w", tables[i], err)
		}
	}
	s.handles = make(map[string]struct{})
	middleware.Logger.InfoContext(ctx, "seed data cleared")
	return nil
}

// Run creates users, their follow graph, polls, votes, comments and saves.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.NumUsers < 2 {
		return nil, errors.New("seed: at least two users are required")
	}
	sum := &Summary{}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		u, err := s.CreateUser(ctx)
		if err != nil {
			return sum, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)

	for _, u := range users {
		n, err := s.followSome(ctx, u, users, opts.MaxFollows)
		if err != nil {
			return sum, fmt.Errorf("follow: %w", err)
		}
		sum.Follows += n
	}

	for i := 0; i < opts.NumPolls; i++ {
		author := users[s.faker.Number(0, len(users)-1)]
		expired := s.faker.Float64Range(0, 1) < opts.ExpiredRate
		poll, err := s.CreatePoll(ctx, author, expired)
		if err != nil {
			return sum, fmt.Errorf("create poll: %w", err)
		}
		sum.Polls++

		votes, err := s.voteOn(ctx, poll, users, opts.VoteRate)
		if err != nil {
			return sum, fmt.Errorf("vote: %w", err)
		}
		sum.Votes += votes

		comments, err := s.commentOn(ctx, poll, users, opts.CommentsPerPoll)
		if err != nil {
			return sum, fmt.Errorf("comment: %w", err)
		}
		sum.Comments += comments

		if s.faker.Bool() {
			saver := users[s.faker.Number(0, len(users)-1)]
			added, err := s.saved.Save(ctx, saver.ID, poll.ID)
			if err != nil {
				return sum, fmt.Errorf("save: %w", err)
			}
			if added {
				sum.Saves++
			}
		}
	}

	middleware.Logger.InfoContext(ctx, "seed completed",
		slog.Int("users", sum.Users),
		slog.Int("polls", sum.Polls),
		slog.Int("follows", sum.Follows),
		slog.Int("votes", sum.Votes),
		slog.Int("comments", sum.Comments),
		slog.Int("saves", sum.Saves),
	)
	return sum, nil
}

func (s *Seeder) followSome(ctx context.Context, u *models.User, users []*models.User, maxFollows int) (int, error) {
	if maxFollows <= 0 {
		return 0, nil
	}
	order := indexes(len(users))
	s.faker.ShuffleInts(order)

	n := 0
	for _, idx := range order[:min(maxFollows, len(users))] {
		target := users[idx]
		if target.ID == u.ID {
			continue
		}
		changed, err := s.follows.Follow(ctx, u.ID, target.ID)
		if err != nil {
			return n, err
		}
		if changed {
			n++
		}
	}
	return n, nil
}

func (s *Seeder) voteOn(ctx context.Context, poll *models.Poll, users []*models.User, rate float64) (int, error) {
	n := 0
	for _, u := range users {
		if s.faker.Float64Range(0, 1) >= rate {
			continue
		}
		_, _, err := s.polls.CastVote(ctx, &models.PollVote{
			PollID:      poll.ID,
			UserID:      u.ID,
			OptionIndex: s.faker.Number(0, len(poll.Options)-1),
		})
		if errors.Is(err, repository.ErrAlreadyVoted) {
			continue
		}
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (s *Seeder) commentOn(ctx context.Context, poll *models.Poll, users []*models.User, perPoll int) (int, error) {
	n := 0
	for i := 0; i < perPoll; i++ {
		author := users[s.faker.Number(0, len(users)-1)]
		top := s.BuildComment(poll, author, nil)
		if err := s.comments.Create(ctx, top); err != nil {
			return n, err
		}
		n++

		for r := s.faker.Number(0, 2); r > 0; r-- {
			replier := users[s.faker.Number(0, len(users)-1)]
			if err := s.comments.Create(ctx, s.BuildComment(poll, replier, &top.ID)); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

func indexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pollshare/internal/models"
	"pollshare/internal/validation"
)

// BuildUser returns an unsaved user with a handle unique within this seeder.
func (s *Seeder) BuildUser(overrides ...func(*models.User)) *models.User {
	first, last := s.faker.FirstName(), s.faker.LastName()
	user := &models.User{
		UserID:         "seed|" + s.faker.UUID(),
		Handle:         s.uniqueHandle(first, last),
		Name:           first + " " + last,
		Email:          s.faker.Email(),
		Role:           "user",
		ProfilePicture: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", s.faker.UUID()),
		Interests:      []string{s.faker.HipsterWord(), s.faker.HipsterWord()},
		PhoneNumber:    s.faker.Phone(),
		Gender:         s.faker.Gender(),
		Age:            s.faker.Number(18, 70),
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser builds and stores a user.
func (s *Seeder) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	user := s.BuildUser(overrides...)
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPoll returns an unsaved poll with two to five options. Expired polls
// closed within the last week; open ones close within the next two.
func (s *Seeder) BuildPoll(author *models.User, expired bool) *models.Poll {
	options := make([]models.PollOption, s.faker.Number(2, 5))
	for i := range options {
		options[i] = models.PollOption{Position: i, Text: s.optionText()}
	}

	expiresAt := s.now().Add(time.Duration(s.faker.Number(1, 14*24)) * time.Hour)
	if expired {
		expiresAt = s.now().Add(-time.Duration(s.faker.Number(1, 7*24)) * time.Hour)
	}

	return &models.Poll{
		Question:              s.faker.Question(),
		AuthorID:              author.ID,
		Options:               options,
		ExpiresAt:             expiresAt,
		ShowVotesBeforeExpire: s.faker.Bool(),
	}
}

// CreatePoll builds and stores a poll.
func (s *Seeder) CreatePoll(ctx context.Context, author *models.User, expired bool) (*models.Poll, error) {
	poll := s.BuildPoll(author, expired)
	if err := s.polls.Create(ctx, poll); err != nil {
		return nil, err
	}
	return poll, nil
}

// BuildComment returns an unsaved comment, a reply when parentID is set.
func (s *Seeder) BuildComment(poll *models.Poll, author *models.User, parentID *uint) *models.Comment {
	return &models.Comment{
		PollID:   poll.ID,
		AuthorID: author.ID,
		Handle:   author.Handle,
		UserDp:   author.ProfilePicture,
		Body:     s.faker.Sentence(s.faker.Number(4, 16)),
		ParentID: parentID,
	}
}

func (s *Seeder) optionText() string {
	text := s.faker.Adjective() + " " + s.faker.Noun()
	if len(text) > validation.MaxOptionLength {
		text = text[:validation.MaxOptionLength]
	}
	return text
}

// uniqueHandle derives a valid handle from a name, adding a number when the
// plain form is taken or reserved.
func (s *Seeder) uniqueHandle(first, last string) string {
	base := sanitizeHandle(first + "_" + last)
	if len(base) < 3 {
		base = "user"
	}
	base = base[:min(len(base), 24)]

	handle := base
	for n := 1; ; n++ {
		if _, taken := s.handles[handle]; !taken && validation.ValidateHandle(handle) == nil {
			break
		}
		handle = fmt.Sprintf("%s%d", base, n)
	}
	s.handles[handle] = struct{}{}
	return handle
}

func sanitizeHandle(raw string) string {
	var b strings.Builder
	for _, r := range validation.NormalizeHandle(raw) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

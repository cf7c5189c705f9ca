package models

import (
	"time"

	"gorm.io/gorm"
)

// Poll is a question with an ordered list of options. TotalVotes always
// equals the sum of the option counts.
type Poll struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	Question              string         `gorm:"type:text;not null" json:"question"`
	AuthorID              uint           `gorm:"not null;index" json:"author"`
	CommunityHandle       string         `gorm:"index" json:"communityHandle,omitempty"`
	Options               []PollOption   `gorm:"foreignKey:PollID" json:"options"`
	TotalVotes            int            `gorm:"not null;default:0" json:"totalVotes"`
	ExpiresAt             time.Time      `gorm:"not null;index" json:"expiresAt"`
	ShowVotesBeforeExpire bool           `gorm:"not null;default:false" json:"showVotesBeforeExpire"`
	CreatedAt             time.Time      `json:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`

	// VotedUsers is filled from poll_votes when the poll is loaded.
	VotedUsers []uint `gorm:"-" json:"votedUsers"`
}

// Expired reports whether the poll closed before now.
func (p *Poll) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// HasVoted reports whether userID is in the voted-set.
func (p *Poll) HasVoted(userID uint) bool {
	for _, id := range p.VotedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// PollOption is a single answer. Position is its index in Poll.Options.
type PollOption struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	PollID   uint   `gorm:"not null;uniqueIndex:idx_poll_option_position" json:"-"`
	Position int    `gorm:"not null;uniqueIndex:idx_poll_option_position" json:"-"`
	Text     string `gorm:"not null" json:"text"`
	Votes    int    `gorm:"not null;default:0" json:"votes"`
}

// PollVote is a member of a poll's voted-set.
type PollVote struct {
	ID             uint      `gorm:"primaryKey"`
	PollID         uint      `gorm:"not null;uniqueIndex:idx_poll_vote_user"`
	UserID         uint      `gorm:"not null;uniqueIndex:idx_poll_vote_user"`
	OptionIndex    int       `gorm:"not null"`
	IdempotencyKey string    `gorm:"size:64"`
	CreatedAt      time.Time
}

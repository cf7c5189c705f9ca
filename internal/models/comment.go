package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment belongs to a poll. Top-level comments have no ParentID; replies
// point at a top-level comment and are never parents themselves.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PollID    uint           `gorm:"not null;index" json:"pollId"`
	AuthorID  uint           `gorm:"not null;index" json:"author"`
	Handle    string         `json:"handle"`
	UserDp    string         `json:"userDp"`
	Body      string         `gorm:"type:text;not null" json:"body"`
	VoteCount int            `gorm:"not null;default:0" json:"voteCount"`
	ParentID  *uint          `gorm:"index" json:"parentId,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Replies []Comment `gorm:"-" json:"replies"`
}

// IsReply reports whether the comment is nested under another.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

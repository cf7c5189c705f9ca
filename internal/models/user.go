// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a profile created at signup. UserID is the subject issued by the
// external identity provider; ID is the internal key used by follows and saves.
type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         string         `gorm:"uniqueIndex;not null" json:"userid"`
	Handle         string         `gorm:"uniqueIndex;not null" json:"handle"`
	Name           string         `gorm:"not null" json:"name"`
	Email          string         `gorm:"index" json:"email"`
	Role           string         `json:"role"`
	ProfilePicture string         `json:"profilePicture"`
	Interests      []string       `gorm:"serializer:json" json:"interests"`
	PhoneNumber    string         `json:"phoneNumber"`
	Gender         string         `json:"gender"`
	Age            int            `json:"age"`
	FollowersCount int            `gorm:"not null;default:0" json:"followersCount"`
	FollowingCount int            `gorm:"not null;default:0" json:"followingCount"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Followers and Following are populated by handle lookups only.
	Followers []UserSummary `gorm:"-" json:"followers,omitempty"`
	Following []UserSummary `gorm:"-" json:"followingUsers,omitempty"`
}

// UserSummary is the public projection used in follow lists, search and suggestions.
type UserSummary struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Handle         string `json:"handle"`
	ProfilePicture string `json:"profilePicture"`
}

// Summary projects the user onto its public fields.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:             u.ID,
		Name:           u.Name,
		Handle:         u.Handle,
		ProfilePicture: u.ProfilePicture,
	}
}

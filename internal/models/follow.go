package models

import "time"

// Follow is one edge of the follow graph. A single row answers both
// "who does A follow" and "who follows B", so the graph cannot go asymmetric.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follow_pair" json:"followerId"`
	FolloweeID uint      `gorm:"not null;uniqueIndex:idx_follow_pair;index" json:"followeeId"`
	CreatedAt  time.Time `json:"createdAt"`

	Follower User `gorm:"foreignKey:FollowerID" json:"-"`
	Followee User `gorm:"foreignKey:FolloweeID" json:"-"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}

// SavedPost records a poll bookmarked by a user. It carries no association
// fields: User also has a UserID column, which GORM would read as a has-one.
// The foreign keys are added in database.Migrate.
type SavedPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_saved_post" json:"userId"`
	PollID    uint      `gorm:"not null;uniqueIndex:idx_saved_post" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for GORM
func (SavedPost) TableName() string {
	return "saved_posts"
}

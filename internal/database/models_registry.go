package database

import "pollshare/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Order matters: referenced tables come first.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Poll{},
		&models.PollOption{},
		&models.PollVote{},
		&models.Comment{},
		&models.Follow{},
		&models.SavedPost{},
	}
}

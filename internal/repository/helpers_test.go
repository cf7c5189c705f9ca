package repository

import (
	"context"
	"testing"
	"time"

	"pollshare/internal/models"
	"pollshare/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.NewSQLiteDB(t)
}

func createUser(t *testing.T, db *gorm.DB, handle, name string) *models.User {
	t.Helper()
	u := &models.User{
		UserID: "auth0|" + handle,
		Handle: handle,
		Name:   name,
		Email:  handle + "@example.com",
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func createPoll(t *testing.T, db *gorm.DB, authorID uint, options ...string) *models.Poll {
	t.Helper()
	p := &models.Poll{
		Question:  "Which one?",
		AuthorID:  authorID,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	for _, o := range options {
		p.Options = append(p.Options, models.PollOption{Text: o})
	}
	require.NoError(t, NewPollRepository(db).Create(context.Background(), p))
	return p
}

func reloadUser(t *testing.T, db *gorm.DB, id uint) models.User {
	t.Helper()
	var u models.User
	require.NoError(t, db.First(&u, id).Error)
	return u
}

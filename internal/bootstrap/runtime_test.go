package bootstrap

import (
	"path/filepath"
	"testing"

	"pollshare/internal/cache"
	"pollshare/internal/config"
	"pollshare/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig(t *testing.T, redisURL string) *config.Config {
	t.Helper()
	return &config.Config{
		Env:                      "test",
		DBDriver:                 "sqlite",
		SQLitePath:               filepath.Join(t.TempDir(), "pollshare.db") + "?_foreign_keys=1",
		DBMaxOpenConns:           1,
		DBMaxIdleConns:           1,
		DBConnMaxLifetimeMinutes: 1,
		RedisURL:                 redisURL,
	}
}

func TestInitRuntime_SeedsEmptyDatabaseOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Cleanup(cache.Close)

	cfg := sqliteConfig(t, mr.Addr())
	db, rdb, err := InitRuntime(cfg, Options{SeedDemo: true})
	require.NoError(t, err)
	require.NotNil(t, rdb)
	assert.Same(t, rdb, cache.GetClient())

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Greater(t, users, int64(0))

	require.NoError(t, seedIfEmpty(t.Context(), db))
	var again int64
	require.NoError(t, db.Model(&models.User{}).Count(&again).Error)
	assert.Equal(t, users, again)
}

func TestInitRuntime_NoSeedWithoutRedis(t *testing.T) {
	cfg := sqliteConfig(t, "redis://%zz")
	db, rdb, err := InitRuntime(cfg, Options{})
	require.NoError(t, err)
	assert.Nil(t, rdb)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users)
}

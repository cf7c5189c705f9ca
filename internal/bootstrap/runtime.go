// Package bootstrap wires the process-wide database and cache connections.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pollshare/internal/cache"
	"pollshare/internal/config"
	"pollshare/internal/database"
	"pollshare/internal/middleware"
	"pollshare/internal/models"
	"pollshare/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty database with demo data. Ignored in production.
	SeedDemo bool
}

// InitRuntime connects to DB and Redis and optionally seeds demo content.
// The Redis client is nil when Redis is unreachable.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	r := cache.InitRedis(cfg.RedisURL)

	if opts.SeedDemo && !cfg.IsProduction() {
		if err := seedIfEmpty(context.Background(), db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

func seedIfEmpty(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		middleware.Logger.Info("demo seed skipped, database not empty", slog.Int64("users", count))
		return nil
	}
	_, err := seed.NewSeeder(db, time.Now().UnixNano()).Run(ctx, seed.DefaultOptions)
	return err
}

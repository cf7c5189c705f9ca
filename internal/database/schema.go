package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pollshare/internal/config"
	"pollshare/internal/middleware"

	"gorm.io/gorm"
)

func isProdLikeEnv(env string) bool {
	e := strings.ToLower(strings.TrimSpace(env))
	return e == "production" || e == "prod" || e == "staging" || e == "stage"
}

// ApplySchema migrates on startup outside production. Production schemas are
// changed by cmd/migrate only.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	if isProdLikeEnv(cfg.Env) {
		middleware.Logger.Info("Skipping startup migration", slog.String("env", cfg.Env))
		return nil
	}
	return Migrate(ctx, db)
}

// Migrate creates or updates every table and the constraints AutoMigrate
// cannot express.
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	if err := db.AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if db.Dialector.Name() == "postgres" {
		for _, stmt := range postgresConstraints {
			if err := db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("apply constraint: %w", err)
			}
		}
	}

	middleware.Logger.InfoContext(ctx, "Database migration completed")
	return nil
}

var postgresConstraints = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_handle_lower ON users (LOWER(handle))`,
	`DO $$ BEGIN
		ALTER TABLE follows ADD CONSTRAINT chk_follows_not_self CHECK (follower_id <> followee_id);
	EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`DO $$ BEGIN
		ALTER TABLE saved_posts ADD CONSTRAINT fk_saved_posts_user
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE;
	EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`DO $$ BEGIN
		ALTER TABLE saved_posts ADD CONSTRAINT fk_saved_posts_poll
			FOREIGN KEY (poll_id) REFERENCES polls(id) ON DELETE CASCADE;
	EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`DO $$ BEGIN
		ALTER TABLE polls ADD CONSTRAINT chk_polls_total_votes CHECK (total_votes >= 0);
	EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
}

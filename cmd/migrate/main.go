// Command migrate applies the schema to the configured database and exits.
package main

import (
	"context"
	"fmt"
	"log"

	"pollshare/internal/config"
	"pollshare/internal/database"
	"pollshare/internal/middleware"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	middleware.InitLogger(cfg.Env)

	// Connect skips migration in production; this command always runs it.
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(context.Background(), db); err != nil {
		return err
	}
	log.Println("schema applied")
	return nil
}

// Command seed fills the configured database with demo data.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"pollshare/internal/cache"
	"pollshare/internal/config"
	"pollshare/internal/database"
	"pollshare/internal/middleware"
	"pollshare/internal/seed"
)

func main() {
	opts := seed.DefaultOptions
	flag.IntVar(&opts.NumUsers, "users", opts.NumUsers, "Number of users to create")
	flag.IntVar(&opts.NumPolls, "polls", opts.NumPolls, "Number of polls to create")
	flag.IntVar(&opts.MaxFollows, "follows", opts.MaxFollows, "Maximum follows per user")
	flag.IntVar(&opts.CommentsPerPoll, "comments", opts.CommentsPerPoll, "Top-level comments per poll")
	flag.Float64Var(&opts.VoteRate, "vote-rate", opts.VoteRate, "Chance that a user votes on a poll")
	flag.Float64Var(&opts.ExpiredRate, "expired-rate", opts.ExpiredRate, "Share of polls that are already closed")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	seedValue := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.InitLogger(cfg.Env)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Cached polls would go stale as votes are seeded.
	cache.InitRedis(cfg.RedisURL)
	defer cache.Close()

	ctx := context.Background()
	s := seed.NewSeeder(db, *seedValue)
	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	sum, err := s.Run(ctx, opts)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %d users, %d polls, %d follows, %d votes, %d comments, %d saves",
		sum.Users, sum.Polls, sum.Follows, sum.Votes, sum.Comments, sum.Saves)
}

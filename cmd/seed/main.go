// Command main runs the database seeder for Snapshare.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"snapshare/internal/config"
	"snapshare/internal/database"
	"snapshare/internal/repository"
	"snapshare/internal/seed"
	"snapshare/internal/service"
	"snapshare/internal/session"
	"snapshare/internal/storage"
)

func main() {
	numAccounts := flag.Int("accounts", 20, "Number of accounts to create")
	numPosts := flag.Int("posts", 5, "Posts per account")
	numComments := flag.Int("comments", 3, "Comments per post")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randSeed := flag.Int64("seed", time.Now().UnixNano(), "Random seed for generated data")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d accounts, %d posts each, clean=%v\n", *numAccounts, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	blobs, err := storage.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open blob storage: %v", err)
	}

	// Seeding never signs in, so sessions stay in memory.
	identity := service.NewIdentityService(repository.NewAccountRepository(db), session.NewMemoryStore(cfg.SessionTTL()), cfg)
	content := service.NewContentService(repository.NewProfileRepository(db), repository.NewPostRepository(db), blobs, cfg)
	s := seed.NewSeeder(db, identity, content, repository.NewCommentRepository(db), *randSeed)

	if _, err := s.Run(ctx, seed.Options{
		Accounts:        *numAccounts,
		PostsPerAccount: *numPosts,
		CommentsPerPost: *numComments,
		ShouldClean:     *shouldClean,
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with demo data.")
	log.Printf("📧 All seeded accounts have the password: %s", seed.DefaultPassword)
}

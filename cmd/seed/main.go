package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/haritsetu/backend/internal/auth"
	"github.com/haritsetu/backend/internal/config"
	"github.com/haritsetu/backend/internal/db"
	"github.com/haritsetu/backend/internal/logger"
	"github.com/haritsetu/backend/internal/seed"
)

func main() {
	usersFile := flag.String("users", "", "path to the users JSON file (default data/initial-users.json)")
	printTokens := flag.Bool("tokens", false, "print a bearer token for every seeded user")
	flag.Parse()

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.File)

	// Connect to database and run migrations first
	st, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	log.Println("Seeding database with sample data...")
	data, err := seed.LoadUsers(*usersFile)
	if err != nil {
		log.Fatalf("Error loading users: %v", err)
	}
	users, err := seed.Users(context.Background(), st, data)
	if err != nil {
		log.Fatalf("Error seeding users: %v", err)
	}

	log.Printf("✅ Database seeding completed successfully! (%d users)", len(users))

	if !*printTokens {
		return
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("JWT_SECRET is required to print tokens")
	}
	for _, user := range users {
		token, expiresAt, err := auth.GenerateToken(cfg.JWT.Secret, user)
		if err != nil {
			log.Fatalf("Failed to sign token for %s: %v", user.Email, err)
		}
		fmt.Printf("%-8s %-32s expires %s\n  %s\n", user.Role, user.Email, expiresAt.Format("2006-01-02 15:04"), token)
	}
}

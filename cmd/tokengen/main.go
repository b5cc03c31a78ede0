// Command tokengen mints an access token for an existing user, for smoke
// tests and environments without the auth frontend.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/white/sales-tracker/config"
	"github.com/white/sales-tracker/internal/repositories"
	"github.com/white/sales-tracker/internal/utils"
	"github.com/white/sales-tracker/pkg/mongodb"
)

func main() {
	email := flag.String("email", "", "email of the user to issue the token for")
	flag.Parse()
	if *email == "" {
		fmt.Fprintln(os.Stderr, "usage: tokengen -email user@example.com")
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	mongoClient, err := mongodb.NewClient(mongodb.Config{
		URI:         cfg.MongoDB.URI,
		Database:    cfg.MongoDB.Database,
		MaxPoolSize: cfg.MongoDB.MaxPoolSize,
		MinPoolSize: cfg.MongoDB.MinPoolSize,
		MaxRetries:  cfg.MongoDB.MaxRetries,
	})
	if err != nil {
		logrus.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	defer mongoClient.Disconnect(ctx)

	userRepo := repositories.NewUserRepository(mongoClient)
	user, err := userRepo.GetUserByEmail(ctx, *email)
	if err != nil {
		logrus.Fatalf("Failed to look up user %s: %v", *email, err)
	}
	if !user.IsActive {
		logrus.Fatalf("User %s is inactive", *email)
	}

	jwtService, err := utils.NewJWTService(cfg.JWT)
	if err != nil {
		logrus.Fatalf("Failed to initialize JWT service: %v", err)
	}

	token, err := jwtService.GenerateAccessToken(user)
	if err != nil {
		logrus.Fatalf("Failed to generate token: %v", err)
	}

	fmt.Println(token)
}

// cmd/adduser/main.go
// Creates a user in the database.
//
// Usage:
//
//	go run ./cmd/adduser -username admin -password admin123 -admin
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/anonto42/imageboard/backend/internal/repositories"
	"github.com/anonto42/imageboard/backend/internal/services"
	"github.com/anonto42/imageboard/backend/pkg/config"
	applog "github.com/anonto42/imageboard/backend/pkg/logger"
	"github.com/anonto42/imageboard/backend/pkg/password"
)

func main() {
	username := flag.String("username", "", "username (required)")
	plaintext := flag.String("password", "", "plain-text password (required)")
	admin := flag.Bool("admin", false, "grant the create_post capability")
	flag.Parse()

	if *username == "" || *plaintext == "" {
		log.Fatal("both -username and -password are required")
	}
	if err := run(*username, *plaintext, *admin); err != nil {
		log.Fatal(err)
	}
}

func run(username, plaintext string, admin bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger, err := applog.New("imageboard-adduser", cfg.Debug)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := config.InitDB(cfg, logger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.CloseDB()
	if err := config.AutoMigrate(db.Gorm); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	accounts := services.NewAccountService(repositories.NewGormUserRepository(db.Gorm), password.NewBcrypt(cfg.BcryptCost))
	user, err := accounts.Register(context.Background(), username, plaintext, admin)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return fmt.Errorf("user %q already exists", username)
		}
		return fmt.Errorf("create user: %w", err)
	}
	logger.Info("user created", zap.Uint("user_id", user.ID), zap.String("username", user.Username), zap.Bool("admin", user.IsAdmin))
	return nil
}

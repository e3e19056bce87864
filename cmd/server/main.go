package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/anonto42/imageboard/backend/internal/repositories"
	"github.com/anonto42/imageboard/backend/internal/router"
	"github.com/anonto42/imageboard/backend/internal/services"
	"github.com/anonto42/imageboard/backend/internal/session"
	"github.com/anonto42/imageboard/backend/internal/storage"
	"github.com/anonto42/imageboard/backend/internal/views"
	"github.com/anonto42/imageboard/backend/pkg/config"
	applog "github.com/anonto42/imageboard/backend/pkg/logger"
	"github.com/anonto42/imageboard/backend/pkg/password"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run owns every resource it opens, so deferred cleanup runs on all exits.
func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := applog.New("imageboard", cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	// Initialize database connection
	db, err := config.InitDB(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize database", zap.Error(err))
		return err
	}
	defer db.CloseDB()

	if err := config.AutoMigrate(db.Gorm); err != nil {
		logger.Error("failed to auto migrate models", zap.Error(err))
		return err
	}
	logger.Info("auto-migrations completed")

	sqlDB, err := db.Gorm.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	userRepo := repositories.NewGormUserRepository(db.Gorm)
	postRepo := repositories.NewGormPostRepository(db.Gorm)
	favoriteRepo := repositories.NewGormFavoriteRepository(db.Gorm)
	accounts := services.NewAccountService(userRepo, password.NewBcrypt(cfg.BcryptCost))

	if cfg.AdminPassword != "" {
		created, err := accounts.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			logger.Error("failed to seed admin user", zap.Error(err))
			return err
		}
		if created {
			logger.Info("admin user seeded", zap.String("username", cfg.AdminUsername))
		}
	}

	renderer, err := views.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	e := router.New(router.Dependencies{
		Users:         userRepo,
		Posts:         postRepo,
		Favorites:     favoriteRepo,
		Accounts:      accounts,
		Sessions:      session.NewManager(cfg.JWTKey(), cfg.SessionTTL),
		Images:        storage.NewImageStore(cfg.UploadDir, "/static/images", cfg.MaxUploadBytes),
		Renderer:      renderer,
		DB:            sqlDB,
		Logger:        logger,
		StaticDir:     cfg.StaticDir,
		SecureCookies: !cfg.IsDevelopment(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.Addr()), zap.String("env", cfg.Env))
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("server exited", zap.Error(err))
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

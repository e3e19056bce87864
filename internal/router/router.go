package router

import (
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/anonto42/imageboard/backend/internal/handlers"
	"github.com/anonto42/imageboard/backend/internal/middleware"
	"github.com/anonto42/imageboard/backend/internal/repositories"
	"github.com/anonto42/imageboard/backend/internal/services"
	"github.com/anonto42/imageboard/backend/internal/session"
	"github.com/anonto42/imageboard/backend/internal/storage"
	"github.com/anonto42/imageboard/backend/validators"
)

// Dependencies are the collaborators the routes are wired to.
type Dependencies struct {
	Users     repositories.UserRepository
	Posts     repositories.PostRepository
	Favorites repositories.FavoriteRepository

	Accounts *services.AccountService
	Sessions *session.Manager
	Images   *storage.ImageStore
	Renderer echo.Renderer
	DB       handlers.Pinger // optional, used by /health
	Logger   *zap.Logger

	// StaticDir is served under /static when set.
	StaticDir     string
	SecureCookies bool
}

// New builds a fully configured Echo instance.
func New(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()
	e.Renderer = deps.Renderer

	SetupMiddleware(e, deps.Logger, deps.Sessions)
	SetupRoutes(e, deps)
	return e
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, logger *zap.Logger, sessions *session.Manager) {
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.Int("status", v.Status),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= 500:
				logger.Error("http request", fields...)
			case v.Status >= 400:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
			return nil
		},
	}))
	e.Use(eMiddleware.Recover())
	e.Use(middleware.LoadSession(sessions))
	logger.Debug("global middleware configured")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	logger := deps.Logger

	e.GET("/health", handlers.HealthCheck(deps.DB))

	if deps.Images != nil {
		e.Static(deps.Images.URLPrefix, deps.Images.Dir)
	}
	if deps.StaticDir != "" {
		e.Static("/static", deps.StaticDir)
	}

	authHandler := handlers.NewAuthHandler(deps.Accounts, deps.Sessions, logger, deps.SecureCookies)
	authHandler.RegisterAuthRoutes(e)
	logger.Debug("auth routes configured")

	admin := e.Group("/admin", middleware.RequireAdmin())
	postHandler := handlers.NewPostHandler(deps.Posts, deps.Users, deps.Images, logger)
	postHandler.RegisterPostRoutes(e, admin)
	logger.Debug("post routes configured")

	users := e.Group("/user")
	userHandler := handlers.NewUserHandler(deps.Users, deps.Posts, deps.Favorites, logger)
	userHandler.RegisterUserRoutes(users)

	favoriteHandler := handlers.NewFavoriteHandler(deps.Favorites, deps.Posts, deps.Users, logger)
	favoriteHandler.RegisterFavoriteRoutes(users, middleware.RequireSelf("username"))
	logger.Debug("user routes configured")
}

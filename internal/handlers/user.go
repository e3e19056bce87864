package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/imageboard/backend/internal/middleware"
	"github.com/anonto42/imageboard/backend/internal/models"
	"github.com/anonto42/imageboard/backend/internal/repositories"
	"github.com/anonto42/imageboard/backend/internal/views"
)

// UserHandler renders the public user pages
type UserHandler struct {
	userRepository     repositories.UserRepository
	postRepository     repositories.PostRepository
	favoriteRepository repositories.FavoriteRepository
	logger             *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, postRepo repositories.PostRepository, favoriteRepo repositories.FavoriteRepository, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userRepository:     userRepo,
		postRepository:     postRepo,
		favoriteRepository: favoriteRepo,
		logger:             logger,
	}
}

// RegisterUserRoutes registers the user page routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/:username", h.UserPage)
	g.GET("/:username/favorites", h.Favorites)
}

// UserPage lists a user's posts and favorites.
func (h *UserHandler) UserPage(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.lookup(c)
	if err != nil {
		return err
	}

	posts, err := h.postRepository.GetPostsByUserID(ctx, user.ID)
	if err != nil {
		h.logger.Error("list user posts", zap.Uint("user_id", user.ID), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load posts")
	}
	favorites, err := h.favoriteRepository.GetFavoritePosts(ctx, user.ID)
	if err != nil {
		h.logger.Error("list favorites", zap.Uint("user_id", user.ID), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load favorites")
	}

	return c.Render(http.StatusOK, "user.html", views.Data{
		"username":  user.Username,
		"viewer":    viewerName(c),
		"posts":     posts,
		"favorites": favorites,
	})
}

// Favorites lists the posts a user has favorited.
func (h *UserHandler) Favorites(c echo.Context) error {
	user, err := h.lookup(c)
	if err != nil {
		return err
	}

	favorites, err := h.favoriteRepository.GetFavoritePosts(c.Request().Context(), user.ID)
	if err != nil {
		h.logger.Error("list favorites", zap.Uint("user_id", user.ID), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load favorites")
	}

	return c.Render(http.StatusOK, "favorites.html", views.Data{
		"username":  user.Username,
		"favorites": favorites,
	})
}

// lookup loads the user named by the :username path parameter.
func (h *UserHandler) lookup(c echo.Context) (*models.User, error) {
	return findUser(c, h.userRepository, h.logger)
}

func findUser(c echo.Context, users repositories.UserRepository, logger *zap.Logger) (*models.User, error) {
	username := c.Param("username")
	user, err := users.GetUserByUsername(c.Request().Context(), username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		logger.Error("load user", zap.String("username", username), zap.Error(err))
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to load user")
	}
	return user, nil
}

// viewerName is the logged-in username, or "" for anonymous requests.
func viewerName(c echo.Context) string {
	if claims, ok := middleware.CurrentUser(c); ok {
		return claims.Username
	}
	return ""
}

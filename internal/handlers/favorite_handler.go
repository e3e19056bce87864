package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/imageboard/backend/internal/models"
	"github.com/anonto42/imageboard/backend/internal/repositories"
)

// FavoriteHandler handles favorite HTTP requests
type FavoriteHandler struct {
	favoriteRepository repositories.FavoriteRepository
	postRepository     repositories.PostRepository
	userRepository     repositories.UserRepository
	logger             *zap.Logger
}

// NewFavoriteHandler creates a new FavoriteHandler
func NewFavoriteHandler(favoriteRepo repositories.FavoriteRepository, postRepo repositories.PostRepository, userRepo repositories.UserRepository, logger *zap.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteRepository: favoriteRepo,
		postRepository:     postRepo,
		userRepository:     userRepo,
		logger:             logger,
	}
}

// RegisterFavoriteRoutes registers favorite routes; mw guards the mutation.
func (h *FavoriteHandler) RegisterFavoriteRoutes(g *echo.Group, mw ...echo.MiddlewareFunc) {
	g.POST("/:username/add_favorite", h.AddFavorite, mw...)
}

// AddFavorite records a post as one of the user's favorites. Adding the same
// post twice is not an error.
func (h *FavoriteHandler) AddFavorite(c echo.Context) error {
	user, err := findUser(c, h.userRepository, h.logger)
	if err != nil {
		return err
	}

	var req models.AddFavoriteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	post, err := h.resolvePost(c, req)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	already, err := h.favoriteRepository.IsFavorite(ctx, user.ID, post.ID)
	if err != nil {
		h.logger.Error("check favorite", zap.Uint("user_id", user.ID), zap.Uint("post_id", post.ID), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to add favorite")
	}
	if already {
		return c.Redirect(http.StatusSeeOther, "/user/"+url.PathEscape(user.Username))
	}

	favorite := &models.Favorite{UserID: user.ID, PostID: post.ID}
	if err := h.favoriteRepository.AddFavorite(ctx, favorite); err != nil {
		switch {
		case errors.Is(err, repositories.ErrConflict):
			// favorited concurrently
		case errors.Is(err, repositories.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		default:
			h.logger.Error("add favorite", zap.Uint("user_id", user.ID), zap.Uint("post_id", post.ID), zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to add favorite")
		}
	}

	return c.Redirect(http.StatusSeeOther, "/user/"+url.PathEscape(user.Username))
}

// resolvePost finds the post by ID, or by title when the title is unambiguous.
func (h *FavoriteHandler) resolvePost(c echo.Context, req models.AddFavoriteRequest) (*models.Post, error) {
	ctx := c.Request().Context()

	if req.PostID != 0 {
		post, err := h.postRepository.GetPostByID(ctx, req.PostID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, echo.NewHTTPError(http.StatusNotFound, "Post not found")
			}
			h.logger.Error("load post", zap.Uint("post_id", req.PostID), zap.Error(err))
			return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to load post")
		}
		return post, nil
	}

	title := strings.TrimSpace(req.PostTitle)
	if title == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "post_id or post_title is required")
	}
	posts, err := h.postRepository.GetPostsByTitle(ctx, title)
	if err != nil {
		h.logger.Error("find posts by title", zap.String("title", title), zap.Error(err))
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to load post")
	}
	switch len(posts) {
	case 0:
		return nil, echo.NewHTTPError(http.StatusNotFound, "Post not found")
	case 1:
		return &posts[0], nil
	}
	return nil, echo.NewHTTPError(http.StatusConflict, "Several posts share this title; use post_id")
}

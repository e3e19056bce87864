package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/imageboard/backend/internal/middleware"
	"github.com/anonto42/imageboard/backend/internal/models"
	"github.com/anonto42/imageboard/backend/internal/repositories"
	"github.com/anonto42/imageboard/backend/internal/storage"
	"github.com/anonto42/imageboard/backend/internal/views"
)

// recentPostsLimit caps the landing page listing.
const recentPostsLimit = 20

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	images         *storage.ImageStore
	logger         *zap.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, images *storage.ImageStore, logger *zap.Logger) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		userRepository: userRepo,
		images:         images,
		logger:         logger,
	}
}

// RegisterPostRoutes registers the landing page on e and the authoring routes on admin.
func (h *PostHandler) RegisterPostRoutes(e *echo.Echo, admin *echo.Group) {
	e.GET("/", h.Home)
	admin.GET("", h.AdminPage)
	admin.POST("/create_post", h.CreatePost)
}

// Home renders the landing page with the newest posts.
func (h *PostHandler) Home(c echo.Context) error {
	posts, err := h.postRepository.GetRecentPosts(c.Request().Context(), recentPostsLimit)
	if err != nil {
		h.logger.Error("list recent posts", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load posts")
	}
	return c.Render(http.StatusOK, "index.html", views.Data{"posts": posts})
}

// AdminPage renders the post creation form.
func (h *PostHandler) AdminPage(c echo.Context) error {
	claims, _ := middleware.CurrentUser(c)
	return c.Render(http.StatusOK, "admin.html", views.Data{"username": claims.Username})
}

// CreatePost stores the uploaded image and inserts a post owned by the
// current user.
func (h *PostHandler) CreatePost(c echo.Context) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Login required")
	}
	ctx := c.Request().Context()

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image is required")
	}

	// Check the owner before touching the filesystem.
	owner, err := h.userRepository.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		h.logger.Error("load post owner", zap.Uint("user_id", claims.UserID), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create post")
	}

	stored, err := h.images.Save(fileHeader)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotAnImage):
			return echo.NewHTTPError(http.StatusBadRequest, "image must be an image file")
		case errors.Is(err, storage.ErrTooLarge):
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "image is too large")
		}
		h.logger.Error("store uploaded image", zap.String("filename", fileHeader.Filename), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store image")
	}

	post := &models.Post{
		Title:       req.Title,
		Description: req.Description,
		Image:       stored.PublicPath,
		ImageName:   stored.OriginalName,
		UserID:      owner.ID,
	}
	if err := h.postRepository.CreatePost(ctx, post); err != nil {
		if rmErr := h.images.Remove(stored.PublicPath); rmErr != nil {
			h.logger.Warn("remove orphaned image", zap.String("image", stored.PublicPath), zap.Error(rmErr))
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		h.logger.Error("insert post", zap.Uint("user_id", owner.ID), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create post")
	}

	h.logger.Info("post created", zap.Uint("post_id", post.ID), zap.Uint("user_id", owner.ID))
	return c.JSON(http.StatusCreated, echo.Map{"message": "Post created successfully", "post": post})
}

package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/imageboard/backend/internal/models"
	"github.com/anonto42/imageboard/backend/internal/repositories"
	"github.com/anonto42/imageboard/backend/internal/services"
	"github.com/anonto42/imageboard/backend/internal/session"
	"github.com/anonto42/imageboard/backend/internal/views"
	"github.com/anonto42/imageboard/backend/pkg/password"
)

// SessionHeader echoes the issued session token for non-browser clients.
const SessionHeader = "X-Session-Token"

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	accounts     *services.AccountService
	sessions     *session.Manager
	logger       *zap.Logger
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(accounts *services.AccountService, sessions *session.Manager, logger *zap.Logger, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		accounts:     accounts,
		sessions:     sessions,
		logger:       logger,
		secureCookie: secureCookie,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(e *echo.Echo) {
	e.GET("/register", h.RegisterPage)
	e.POST("/register", h.Register)
	e.GET("/login", h.LoginPage)
	e.POST("/login", h.Login)
	e.POST("/logout", h.Logout)
}

func (h *AuthHandler) RegisterPage(c echo.Context) error {
	return c.Render(http.StatusOK, "register.html", views.Data{})
}

func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", views.Data{})
}

// Register creates a regular account and sends the caller to the login page.
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.accounts.Register(c.Request().Context(), req.Username, req.Password, false)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrConflict):
			return echo.NewHTTPError(http.StatusConflict, "Username already exists")
		case errors.Is(err, password.ErrTooLong):
			return echo.NewHTTPError(http.StatusBadRequest, "password must be at most 72 bytes")
		}
		h.logger.Error("register user", zap.String("username", req.Username), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to register user")
	}

	h.logger.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return c.Redirect(http.StatusSeeOther, "/login")
}

// Login verifies credentials, issues a session and redirects by role.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.accounts.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			h.logger.Warn("failed login attempt", zap.String("username", req.Username))
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
		case errors.Is(err, password.ErrMalformedDigest):
			h.logger.Error("stored password digest is corrupt", zap.String("username", req.Username), zap.Error(err))
		default:
			h.logger.Error("authenticate user", zap.String("username", req.Username), zap.Error(err))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to log in")
	}

	token, err := h.sessions.Issue(user)
	if err != nil {
		h.logger.Error("issue session", zap.Uint("user_id", user.ID), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}
	c.SetCookie(h.sessionCookie(token, h.sessions.TTL()))
	c.Response().Header().Set(SessionHeader, token)

	if user.IsAdmin {
		return c.Redirect(http.StatusSeeOther, "/admin")
	}
	return c.Redirect(http.StatusSeeOther, "/user/"+url.PathEscape(user.Username))
}

// Logout drops the session cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.sessionCookie("", -1))
	return c.Redirect(http.StatusSeeOther, "/login")
}

// sessionCookie builds the session cookie; a negative ttl expires it.
func (h *AuthHandler) sessionCookie(token string, ttl time.Duration) *http.Cookie {
	cookie := &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl < 0 {
		cookie.MaxAge = -1
		return cookie
	}
	cookie.MaxAge = int(ttl.Seconds())
	cookie.Expires = time.Now().Add(ttl)
	return cookie
}

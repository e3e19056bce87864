package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/imageboard/backend/internal/models"
	"github.com/anonto42/imageboard/backend/internal/session"
)

// userKey is where LoadSession stores the session claims on the echo context.
const userKey = "user"

// LoadSession resolves the current user from a bearer token or the session
// cookie. A request without a valid token passes through anonymous.
func LoadSession(sessions *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if tokenString == "" {
				if cookie, err := c.Cookie(session.CookieName); err == nil {
					tokenString = cookie.Value
				}
			}
			if tokenString != "" {
				if claims, err := sessions.Parse(tokenString); err == nil {
					c.Set(userKey, claims)
				}
			}
			return next(c)
		}
	}
}

// RequireUser rejects anonymous requests with 401.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := CurrentUser(c); !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Login required")
			}
			return next(c)
		}
	}
}

// RequireAdmin rejects anonymous requests with 401 and non-admins with 403.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := CurrentUser(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Login required")
			}
			if !claims.IsAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
			}
			return next(c)
		}
	}
}

// RequireSelf only lets the user named by the path parameter through.
// Anonymous requests are rejected by RequireUser first.
func RequireSelf(param string) echo.MiddlewareFunc {
	requireUser := RequireUser()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return requireUser(func(c echo.Context) error {
			claims, _ := CurrentUser(c)
			if claims.Username != c.Param(param) {
				return echo.NewHTTPError(http.StatusForbidden, "You can only act on your own account")
			}
			return next(c)
		})
	}
}

// CurrentUser returns the claims LoadSession attached to c, if any.
func CurrentUser(c echo.Context) (*models.SessionClaims, bool) {
	claims, ok := c.Get(userKey).(*models.SessionClaims)
	return claims, ok && claims != nil
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

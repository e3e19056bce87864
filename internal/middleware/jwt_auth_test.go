package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/imageboard/backend/internal/models"
	"github.com/anonto42/imageboard/backend/internal/session"
)

func newTestServer(t *testing.T) (*echo.Echo, *session.Manager) {
	t.Helper()
	sessions := session.NewManager([]byte("test-secret"), time.Hour)
	e := echo.New()
	e.Use(LoadSession(sessions))

	whoami := func(c echo.Context) error {
		claims, ok := CurrentUser(c)
		if !ok {
			return c.String(http.StatusOK, "anonymous")
		}
		return c.String(http.StatusOK, claims.Username)
	}
	e.GET("/whoami", whoami)
	e.GET("/members", whoami, RequireUser())
	e.GET("/admin", whoami, RequireAdmin())
	e.GET("/user/:username", whoami, RequireSelf("username"))
	return e, sessions
}

func do(e *echo.Echo, path string, prepare func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if prepare != nil {
		prepare(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func token(t *testing.T, sessions *session.Manager, user *models.User) string {
	t.Helper()
	tok, err := sessions.Issue(user)
	require.NoError(t, err)
	return tok
}

func TestLoadSessionSources(t *testing.T) {
	e, sessions := newTestServer(t)
	tok := token(t, sessions, &models.User{ID: 1, Username: "alice"})

	rec := do(e, "/whoami", nil)
	assert.Equal(t, "anonymous", rec.Body.String())

	rec = do(e, "/whoami", func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+tok) })
	assert.Equal(t, "alice", rec.Body.String())

	rec = do(e, "/whoami", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: session.CookieName, Value: tok}) })
	assert.Equal(t, "alice", rec.Body.String())

	rec = do(e, "/whoami", func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer forged") })
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestRequireGuards(t *testing.T) {
	e, sessions := newTestServer(t)
	alice := token(t, sessions, &models.User{ID: 1, Username: "alice"})
	admin := token(t, sessions, &models.User{ID: 2, Username: "root", IsAdmin: true})
	bearer := func(tok string) func(*http.Request) {
		return func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+tok) }
	}

	assert.Equal(t, http.StatusUnauthorized, do(e, "/members", nil).Code)
	assert.Equal(t, http.StatusOK, do(e, "/members", bearer(alice)).Code)

	assert.Equal(t, http.StatusUnauthorized, do(e, "/admin", nil).Code)
	assert.Equal(t, http.StatusForbidden, do(e, "/admin", bearer(alice)).Code)
	assert.Equal(t, http.StatusOK, do(e, "/admin", bearer(admin)).Code)

	assert.Equal(t, http.StatusUnauthorized, do(e, "/user/alice", nil).Code)
	assert.Equal(t, http.StatusOK, do(e, "/user/alice", bearer(alice)).Code)
	assert.Equal(t, http.StatusForbidden, do(e, "/user/alice", bearer(admin)).Code)
}

package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/imageboard/backend/internal/handlers"
)

func TestRegisterThenLogin(t *testing.T) {
	app := newTestApp(t)

	rec := app.postForm("/register", url.Values{"username": {"alice"}, "password": {"secret1"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = app.postForm("/login", url.Values{"username": {"alice"}, "password": {"secret1"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/user/alice", rec.Header().Get("Location"))
	assert.NotEmpty(t, rec.Header().Get(handlers.SessionHeader))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	assert.Greater(t, cookies[0].MaxAge, 0)

	claims, err := app.sessions.Parse(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.False(t, claims.IsAdmin)

	rec = app.postForm("/login", url.Values{"username": {"alice"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLoginUnknownUser(t *testing.T) {
	app := newTestApp(t)

	rec := app.postForm("/login", url.Values{"username": {"nobody"}, "password": {"secret1"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminLoginRedirectsToAdmin(t *testing.T) {
	app := newTestApp(t)
	app.seedAdmin(t)

	rec := app.postForm("/login", url.Values{"username": {"admin"}, "password": {"admin123"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "secret1")

	rec := app.postForm("/register", url.Values{"username": {"alice"}, "password": {"another1"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t)

	cases := map[string]url.Values{
		"missing password": {"username": {"alice"}},
		"missing username": {"password": {"secret1"}},
		"short password":   {"username": {"alice"}, "password": {"abc"}},
		"bad username":     {"username": {"a/b/c"}, "password": {"secret1"}},
	}
	for name, form := range cases {
		t.Run(name, func(t *testing.T) {
			rec := app.postForm("/register", form)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLoginMissingFields(t *testing.T) {
	app := newTestApp(t)

	rec := app.postForm("/login", url.Values{"username": {"alice"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutExpiresCookie(t *testing.T) {
	app := newTestApp(t)

	rec := app.postForm("/logout", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestAuthPagesRender(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/register", "/login"} {
		rec := app.get(path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "<form", path)
	}
}

func TestRegisterPasswordByteLimit(t *testing.T) {
	app := newTestApp(t)

	// 50 characters but 100 bytes, beyond what bcrypt accepts.
	rec := app.postForm("/register", url.Values{"username": {"alice"}, "password": {strings.Repeat("é", 50)}})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	// Exactly 72 bytes is accepted and can log in.
	longest := strings.Repeat("é", 36)
	app.register(t, "alice", longest)
	app.login(t, "alice", longest)
}

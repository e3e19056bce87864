package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserPagesUnknownUser(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, http.StatusNotFound, app.get("/user/nobody").Code)
	assert.Equal(t, http.StatusNotFound, app.get("/user/nobody/favorites").Code)
}

func TestUserPageShowsFavoriteFormOnlyWhenLoggedIn(t *testing.T) {
	app := newTestApp(t)
	app.seedAdmin(t)
	app.createPost(t, app.login(t, "admin", "admin123"), "A")
	app.register(t, "alice", "secret1")
	alice := app.login(t, "alice", "secret1")

	rec := app.get("/user/admin")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "add_favorite")

	rec = app.get("/user/admin", alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/user/alice/add_favorite"`)
}

func TestUserPageWithoutPosts(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "secret1")

	rec := app.get("/user/alice")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No posts.")
	assert.Contains(t, rec.Body.String(), "No favorites.")
}

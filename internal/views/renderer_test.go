package views

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/imageboard/backend/internal/models"
)

func TestRendererPages(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	for _, name := range pageNames {
		var buf bytes.Buffer
		err := r.Render(&buf, name, Data{"username": "alice", "viewer": "", "posts": nil, "favorites": nil}, nil)
		require.NoError(t, err, name)
		assert.Contains(t, buf.String(), "<!DOCTYPE html>", name)
	}
}

func TestRendererEscapesPostFields(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	posts := []models.Post{{ID: 1, Title: "<script>x</script>", Image: "/static/images/a.png"}}
	require.NoError(t, r.Render(&buf, "user.html", Data{"username": "alice", "viewer": "alice", "posts": posts, "favorites": nil}, nil))

	out := buf.String()
	assert.NotContains(t, out, "<script>x</script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, `action="/user/alice/add_favorite"`)
	assert.Contains(t, out, "No favorites.")
}

func TestRendererUnknownTemplate(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	assert.Error(t, r.Render(&bytes.Buffer{}, "missing.html", nil, nil))
}

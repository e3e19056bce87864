package handlers_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/anonto42/imageboard/backend/internal/repositories"
	"github.com/anonto42/imageboard/backend/internal/router"
	"github.com/anonto42/imageboard/backend/internal/services"
	"github.com/anonto42/imageboard/backend/internal/session"
	"github.com/anonto42/imageboard/backend/internal/storage"
	"github.com/anonto42/imageboard/backend/internal/views"
	"github.com/anonto42/imageboard/backend/pkg/password"
)

type testApp struct {
	e         *echo.Echo
	store     *repositories.MemoryStore
	accounts  *services.AccountService
	sessions  *session.Manager
	uploadDir string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWith(t, nil)
}

// newTestAppWith lets a test swap dependencies before the router is built.
func newTestAppWith(t *testing.T, override func(*router.Dependencies)) *testApp {
	t.Helper()
	store := repositories.NewMemoryStore()
	accounts := services.NewAccountService(store.Users(), password.NewBcrypt(bcrypt.MinCost))
	sessions := session.NewManager([]byte("test-secret"), time.Hour)
	uploadDir := t.TempDir()
	renderer, err := views.NewRenderer()
	require.NoError(t, err)

	deps := router.Dependencies{
		Users:     store.Users(),
		Posts:     store.Posts(),
		Favorites: store.Favorites(),
		Accounts:  accounts,
		Sessions:  sessions,
		Images:    storage.NewImageStore(uploadDir, "/static/images", 1<<20),
		Renderer:  renderer,
		Logger:    zap.NewNop(),
	}
	if override != nil {
		override(&deps)
	}
	e := router.New(deps)
	return &testApp{e: e, store: store, accounts: accounts, sessions: sessions, uploadDir: uploadDir}
}

func (a *testApp) serve(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return a.serve(httptest.NewRequest(http.MethodGet, path, nil), cookies...)
}

func (a *testApp) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return a.serve(req, cookies...)
}

// postMultipart sends fields plus an optional "image" file part.
func (a *testApp) postMultipart(t *testing.T, path string, fields map[string]string, filename string, content []byte, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if content != nil {
		part, err := w.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return a.serve(req, cookies...)
}

func (a *testApp) register(t *testing.T, username, plaintext string) {
	t.Helper()
	rec := a.postForm("/register", url.Values{"username": {username}, "password": {plaintext}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
}

func (a *testApp) seedAdmin(t *testing.T) {
	t.Helper()
	created, err := a.accounts.EnsureAdmin(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	require.True(t, created)
}

// login returns the session cookie issued for a successful login.
func (a *testApp) login(t *testing.T, username, plaintext string) *http.Cookie {
	t.Helper()
	rec := a.postForm("/login", url.Values{"username": {username}, "password": {plaintext}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatalf("login for %s did not set a session cookie", username)
	return nil
}

func (a *testApp) createPost(t *testing.T, cookie *http.Cookie, title string) {
	t.Helper()
	rec := a.postMultipart(t, "/admin/create_post",
		map[string]string{"title": title, "description": "d"}, "photo.png", pngBytes(t), cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (a *testApp) uploadedFiles(t *testing.T) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(a.uploadDir)
	require.NoError(t, err)
	return entries
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	return buf.Bytes()
}

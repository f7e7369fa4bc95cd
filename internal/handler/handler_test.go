package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sajal/inkpad/internal/auth"
	"github.com/sajal/inkpad/internal/model"
	"github.com/sajal/inkpad/internal/repository/sqlite"
	"github.com/sajal/inkpad/internal/service"
)

const testTokenTTL = time.Hour

// newTestRouter wires the full API — real services over an in-memory
// database — the same way internal/server does, minus the listener.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", testTokenTTL)
	require.NoError(t, err)

	authSvc := service.NewAuthService(db, tokens, auth.NewPasswordServiceForTest(), logger)
	noteSvc := service.NewNoteService(db, logger)

	authHandler := NewAuthHandler(authSvc, false, testTokenTTL, logger)
	noteHandler := NewNoteHandler(noteSvc, logger)
	userHandler := NewUserHandler(authSvc, logger)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Get("/auth/check", authHandler.HandleAuthCheck)
		r.Post("/auth/logout", authHandler.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/notes", noteHandler.HandleList)
			r.Post("/notes", noteHandler.HandleCreate)
			r.Put("/notes/positions", noteHandler.HandleReposition)
			r.Put("/notes/{id}", noteHandler.HandleUpdate)
			r.Delete("/notes/{id}", noteHandler.HandleDelete)
			r.Get("/users/theme", userHandler.HandleGetTheme)
			r.Put("/users/theme", userHandler.HandleSetTheme)
		})
	})
	return r
}

// doJSON performs a request with an optional JSON body and bearer token.
func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// registerAndLogin creates an account and returns the bearer token.
func registerAndLogin(t *testing.T, h http.Handler, username string) string {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": "hunter22",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRegisterLoginFlow(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "dana",
		"email":    "dana@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "$2", "register response must not leak the password digest")
	assert.NotContains(t, rec.Body.String(), "hunter22")

	rec = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "dana",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "$2")

	// The session cookie must be HttpOnly and carry the token.
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.NotEmpty(t, cookies[0].Value)

	// The token from the body must pass the auth check.
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	rec = doJSON(t, h, http.MethodGet, "/api/auth/check", resp.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin_CookieLifetimeMatchesTokenTTL(t *testing.T) {
	h := newTestRouter(t)
	registerAndLogin(t, h, "dana")

	rec := doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "dana",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, int(testTokenTTL.Seconds()), cookies[0].MaxAge,
		"cookie must expire together with the token it carries")
}

func TestRegister_Conflict(t *testing.T) {
	h := newTestRouter(t)
	registerAndLogin(t, h, "dana")

	rec := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "dana",
		"email":    "elsewhere@example.com",
		"password": "pw",
	})
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newTestRouter(t)
	registerAndLogin(t, h, "dana")

	rec := doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "dana",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies(), "failed login must not set a cookie")
}

func TestAuthCheck_MissingToken(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodGet, "/api/auth/check", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing token")
}

func TestLogout_ClearsCookie(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/api/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestNotes_RequireAuth(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodGet, "/api/notes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNoteCRUDFlow(t *testing.T) {
	h := newTestRouter(t)
	token := registerAndLogin(t, h, "dana")

	// Create two notes.
	rec := doJSON(t, h, http.MethodPost, "/api/notes", token, map[string]string{
		"title": "first", "body": "alpha",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var first model.Note
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.Equal(t, 0, first.Position)

	rec = doJSON(t, h, http.MethodPost, "/api/notes", token, map[string]string{
		"title": "second", "body": "beta",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var second model.Note
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, 1, second.Position)

	// List returns both in position order.
	rec = doJSON(t, h, http.MethodGet, "/api/notes", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var notes []model.Note
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notes))
	require.Len(t, notes, 2)
	assert.Equal(t, "first", notes[0].Title)
	assert.Equal(t, "second", notes[1].Title)

	// Update the first note.
	rec = doJSON(t, h, http.MethodPut, "/api/notes/"+first.ID, token, map[string]string{
		"title": "renamed", "body": "gamma",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated model.Note
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, 0, updated.Position, "update must not move the note")

	// Delete the first note; the second slides to position 0.
	rec = doJSON(t, h, http.MethodDelete, "/api/notes/"+first.ID, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/notes", token, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "second", notes[0].Title)
	assert.Equal(t, 0, notes[0].Position)
}

func TestNoteCreate_EmptyNote(t *testing.T) {
	h := newTestRouter(t)
	token := registerAndLogin(t, h, "dana")

	rec := doJSON(t, h, http.MethodPost, "/api/notes", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReposition(t *testing.T) {
	h := newTestRouter(t)
	token := registerAndLogin(t, h, "dana")

	var created []model.Note
	for _, title := range []string{"a", "b"} {
		rec := doJSON(t, h, http.MethodPost, "/api/notes", token, map[string]string{"title": title, "body": "x"})
		require.Equal(t, http.StatusCreated, rec.Code)
		var n model.Note
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &n))
		created = append(created, n)
	}

	rec := doJSON(t, h, http.MethodPut, "/api/notes/positions", token, []map[string]any{
		{"id": created[0].ID, "position": 1},
		{"id": created[1].ID, "position": 0},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"updated":2}`, rec.Body.String())

	recList := doJSON(t, h, http.MethodGet, "/api/notes", token, nil)
	var notes []model.Note
	require.NoError(t, json.Unmarshal(recList.Body.Bytes(), &notes))
	require.Len(t, notes, 2)
	assert.Equal(t, "b", notes[0].Title)
	assert.Equal(t, "a", notes[1].Title)
}

func TestReposition_MissingPosition(t *testing.T) {
	h := newTestRouter(t)
	token := registerAndLogin(t, h, "dana")

	rec := doJSON(t, h, http.MethodPost, "/api/notes", token, map[string]string{"title": "a", "body": "x"})
	var n model.Note
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &n))

	rec = doJSON(t, h, http.MethodPut, "/api/notes/positions", token, []map[string]any{
		{"id": n.ID},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReposition_NonIntegerPosition(t *testing.T) {
	h := newTestRouter(t)
	token := registerAndLogin(t, h, "dana")

	rec := doJSON(t, h, http.MethodPost, "/api/notes", token, map[string]string{"title": "a", "body": "x"})
	var n model.Note
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &n))

	rec = doJSON(t, h, http.MethodPut, "/api/notes/positions", token, []map[string]any{
		{"id": n.ID, "position": 1.5},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "fractional positions must be rejected, not truncated")
}

func TestReposition_ForeignNote(t *testing.T) {
	h := newTestRouter(t)
	alice := registerAndLogin(t, h, "alice")
	bob := registerAndLogin(t, h, "bob")

	rec := doJSON(t, h, http.MethodPost, "/api/notes", alice, map[string]string{"title": "private", "body": "x"})
	var theirs model.Note
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &theirs))

	rec = doJSON(t, h, http.MethodPut, "/api/notes/positions", bob, []map[string]any{
		{"id": theirs.ID, "position": 0},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestNotesAreOwnerScoped(t *testing.T) {
	h := newTestRouter(t)
	alice := registerAndLogin(t, h, "alice")
	bob := registerAndLogin(t, h, "bob")

	doJSON(t, h, http.MethodPost, "/api/notes", alice, map[string]string{"title": "alice note", "body": "x"})

	rec := doJSON(t, h, http.MethodGet, "/api/notes", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestTheme(t *testing.T) {
	h := newTestRouter(t)
	token := registerAndLogin(t, h, "dana")

	rec := doJSON(t, h, http.MethodGet, "/api/users/theme", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"darkMode":false}`, rec.Body.String())

	rec = doJSON(t, h, http.MethodPut, "/api/users/theme", token, map[string]any{"darkMode": true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/users/theme", token, nil)
	assert.JSONEq(t, `{"darkMode":true}`, rec.Body.String())
}

func TestTheme_RejectsMissingFlag(t *testing.T) {
	h := newTestRouter(t)
	token := registerAndLogin(t, h, "dana")

	rec := doJSON(t, h, http.MethodPut, "/api/users/theme", token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

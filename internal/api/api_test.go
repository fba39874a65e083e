package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/bookclub-server/internal/auth"
	"github.com/listenupapp/bookclub-server/internal/domain"
	"github.com/listenupapp/bookclub-server/internal/logger"
	"github.com/listenupapp/bookclub-server/internal/metrics"
	"github.com/listenupapp/bookclub-server/internal/search"
	"github.com/listenupapp/bookclub-server/internal/service"
	"github.com/listenupapp/bookclub-server/internal/store/sqldb"
	"github.com/listenupapp/bookclub-server/internal/validation"
)

// setupTestServer mounts the API on a fresh router backed by a temporary database.
func setupTestServer(t *testing.T, cfg Config) (humatest.TestAPI, chi.Router) {
	t.Helper()

	log := logger.Discard().Logger
	st, err := sqldb.Open(context.Background(), sqldb.Options{
		Driver: sqldb.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	index, err := search.NewSearchIndex(log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	key, err := auth.LoadOrGenerateKey(t.TempDir())
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key)
	require.NoError(t, err)

	m := metrics.New()
	v := validation.New()
	sessions := service.NewSessionService(st, tokens, time.Hour, m, log)
	services := &service.Services{
		Auth:     service.NewAuthService(st, sessions, v, m, log),
		Sessions: sessions,
		Books:    service.NewBookService(st, index, v, m, log),
		Reviews:  service.NewReviewService(st, v, m, log),
		Comments: service.NewCommentService(st, v, m, log),
		Profiles: service.NewProfileService(st, log),
		Search:   service.NewSearchService(st, index, log),
	}

	router := chi.NewRouter()
	srv := NewServer(cfg, services, log)
	srv.Mount(router)

	return humatest.Wrap(t, srv.API()), router
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &v), resp.Body.String())
	return v
}

// signUp registers and logs in, returning the Authorization header argument.
func signUp(t *testing.T, api humatest.TestAPI, username string) (string, *domain.User) {
	t.Helper()

	resp := api.Post("/auth/register", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "pw-" + username,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = api.Post("/auth/login", map[string]any{
		"email":    username + "@example.com",
		"password": "pw-" + username,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	login := decode[service.AuthResponse](t, resp)
	require.NotEmpty(t, login.Token)
	return "Authorization: Bearer " + login.Token, login.User
}

func createBook(t *testing.T, api humatest.TestAPI, authz, title string) *domain.Book {
	t.Helper()
	resp := api.Post("/books", authz, map[string]any{
		"title":  title,
		"author": "Frank Herbert",
		"rating": 4.5,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[*domain.Book](t, resp)
}

func TestAuthFlow(t *testing.T) {
	api, _ := setupTestServer(t, Config{})

	authz, user := signUp(t, api, "alice")
	assert.Equal(t, "alice", user.Username)

	resp := api.Get("/auth/me", authz)
	require.Equal(t, http.StatusOK, resp.Code)
	me := decode[domain.User](t, resp)
	assert.Equal(t, user.ID, me.ID)
	assert.NotContains(t, resp.Body.String(), "password")

	resp = api.Post("/auth/logout", authz)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	// The token no longer resolves.
	resp = api.Get("/auth/me", authz)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	// Logging out without a session still succeeds.
	resp = api.Post("/auth/logout")
	assert.Equal(t, http.StatusNoContent, resp.Code)
}

func TestAuthErrors(t *testing.T) {
	api, _ := setupTestServer(t, Config{})
	signUp(t, api, "alice")

	tests := []struct {
		name   string
		path   string
		body   map[string]any
		status int
		code   string
	}{
		{
			name:   "duplicate username ignoring case",
			path:   "/auth/register",
			body:   map[string]any{"username": "ALICE", "email": "other@example.com", "password": "pw"},
			status: http.StatusConflict,
			code:   "CONFLICT",
		},
		{
			name:   "invalid email",
			path:   "/auth/register",
			body:   map[string]any{"username": "bob", "email": "not-an-email", "password": "pw"},
			status: http.StatusBadRequest,
			code:   "VALIDATION",
		},
		{
			name:   "missing field",
			path:   "/auth/register",
			body:   map[string]any{"username": "bob", "email": "bob@example.com"},
			status: http.StatusUnprocessableEntity,
			code:   "VALIDATION",
		},
		{
			name:   "wrong password",
			path:   "/auth/login",
			body:   map[string]any{"email": "alice@example.com", "password": "wrong"},
			status: http.StatusUnauthorized,
			code:   "INVALID_CREDENTIALS",
		},
		{
			name:   "unknown email",
			path:   "/auth/login",
			body:   map[string]any{"email": "nobody@example.com", "password": "pw"},
			status: http.StatusUnauthorized,
			code:   "INVALID_CREDENTIALS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := api.Post(tt.path, tt.body)
			assert.Equal(t, tt.status, resp.Code, resp.Body.String())
			apiErr := decode[APIError](t, resp)
			assert.Equal(t, tt.code, apiErr.Code)
		})
	}
}

func TestBooks_RequireLogin(t *testing.T) {
	api, _ := setupTestServer(t, Config{})

	resp := api.Post("/books", map[string]any{"title": "Dune", "author": "Frank Herbert", "rating": 5})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "UNAUTHENTICATED", decode[APIError](t, resp).Code)

	// An invalid token is treated as anonymous.
	resp = api.Post("/books", "Authorization: Bearer garbage",
		map[string]any{"title": "Dune", "author": "Frank Herbert", "rating": 5})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestBooks_CreateListAndDetail(t *testing.T) {
	api, _ := setupTestServer(t, Config{})
	authz, user := signUp(t, api, "alice")

	createBook(t, api, authz, "Dune")
	book := createBook(t, api, authz, "Children of Dune")
	assert.Equal(t, user.ID, book.OwnerID)
	assert.InDelta(t, 4.5, book.Rating, 0.0001)

	resp := api.Post("/books", authz, map[string]any{"title": "Dune", "author": "Someone", "rating": 1})
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = api.Post("/books", authz, map[string]any{"title": "   ", "author": "Someone", "rating": 1})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = api.Get("/books")
	require.Equal(t, http.StatusOK, resp.Code)
	list := decode[struct {
		Books []*domain.Book `json:"books"`
	}](t, resp)
	require.Len(t, list.Books, 2)
	assert.Equal(t, "Children of Dune", list.Books[0].Title)
	assert.Equal(t, "Dune", list.Books[1].Title)

	resp = api.Get("/books/" + book.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	detail := decode[domain.BookDetail](t, resp)
	assert.Equal(t, book.ID, detail.Book.ID)
	assert.Empty(t, detail.Reviews)

	resp = api.Get("/books/book-missing")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", decode[APIError](t, resp).Code)
}

func TestBooks_Ownership(t *testing.T) {
	api, _ := setupTestServer(t, Config{})
	alice, _ := signUp(t, api, "alice")
	bob, _ := signUp(t, api, "bob")

	book := createBook(t, api, alice, "Dune")

	resp := api.Patch("/books/"+book.ID, bob, map[string]any{"rating": 1})
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "FORBIDDEN", decode[APIError](t, resp).Code)

	resp = api.Delete("/books/"+book.ID, bob)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = api.Patch("/books/"+book.ID, alice, map[string]any{"rating": -3.25})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.InDelta(t, -3.25, decode[domain.Book](t, resp).Rating, 0.0001)
}

func TestBooks_DeleteCascades(t *testing.T) {
	api, _ := setupTestServer(t, Config{})
	alice, _ := signUp(t, api, "alice")
	bob, _ := signUp(t, api, "bob")

	book := createBook(t, api, alice, "Dune")

	resp := api.Post("/books/"+book.ID+"/reviews", bob, map[string]any{"content": "Spice must flow."})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	review := decode[domain.Review](t, resp)

	resp = api.Post("/reviews/"+review.ID+"/comments", alice, map[string]any{"content": "Agreed."})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = api.Delete("/books/"+book.ID, alice)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	deleted := decode[struct {
		Deleted domain.CascadeResult `json:"deleted"`
	}](t, resp)
	assert.Equal(t, domain.CascadeResult{Reviews: 1, Comments: 1}, deleted.Deleted)

	resp = api.Get("/books/" + book.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestReviewsAndComments(t *testing.T) {
	api, _ := setupTestServer(t, Config{})
	alice, _ := signUp(t, api, "alice")
	bob, _ := signUp(t, api, "bob")

	book := createBook(t, api, alice, "Dune")

	resp := api.Post("/books/"+book.ID+"/reviews", map[string]any{"content": "anon"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = api.Post("/books/book-missing/reviews", bob, map[string]any{"content": "lost"})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = api.Post("/books/"+book.ID+"/reviews", bob, map[string]any{"content": "Great."})
	require.Equal(t, http.StatusCreated, resp.Code)
	review := decode[domain.Review](t, resp)
	assert.Equal(t, "bob", review.AuthorName)

	resp = api.Patch("/reviews/"+review.ID, alice, map[string]any{"content": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = api.Patch("/reviews/"+review.ID, bob, map[string]any{"content": "Great, on reflection."})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Great, on reflection.", decode[domain.Review](t, resp).Content)

	resp = api.Post("/reviews/"+review.ID+"/comments", alice, map[string]any{"content": "Thanks!"})
	require.Equal(t, http.StatusCreated, resp.Code)
	comment := decode[service.CommentResult](t, resp)
	assert.Equal(t, book.ID, comment.BookID)

	resp = api.Delete("/comments/"+comment.Comment.ID, bob)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = api.Get("/books/" + book.ID)
	detail := decode[domain.BookDetail](t, resp)
	require.Len(t, detail.Reviews, 1)
	require.Len(t, detail.Reviews[0].Comments, 1)
	assert.Equal(t, "Thanks!", detail.Reviews[0].Comments[0].Content)

	resp = api.Delete("/comments/"+comment.Comment.ID, alice)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = api.Delete("/reviews/"+review.ID, alice)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = api.Delete("/reviews/"+review.ID, bob)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = api.Delete("/reviews/"+review.ID, bob)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestProfile(t *testing.T) {
	api, _ := setupTestServer(t, Config{})
	alice, user := signUp(t, api, "alice")
	createBook(t, api, alice, "Dune")

	resp := api.Get("/profile")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = api.Get("/profile", alice)
	require.Equal(t, http.StatusOK, resp.Code)
	profile := decode[domain.Profile](t, resp)
	assert.Equal(t, user.ID, profile.User.ID)
	assert.Len(t, profile.Books, 1)
}

func TestSearch(t *testing.T) {
	api, _ := setupTestServer(t, Config{})
	alice, _ := signUp(t, api, "alice")
	createBook(t, api, alice, "Dune")
	createBook(t, api, alice, "Neuromancer")

	resp := api.Get("/search?q=dune")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	result := decode[search.SearchResult](t, resp)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "Dune", result.Hits[0].Title)

	resp = api.Get("/search?q=")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decode[search.SearchResult](t, resp).Hits)
}

func TestMount_CORSAndOpenAPI(t *testing.T) {
	_, router := setupTestServer(t, Config{CORSAllowedOrigins: []string{"https://app.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, BasePath+"/books", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, BasePath+"/openapi.json", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "list-books")

	req = httptest.NewRequest(http.MethodGet, BasePath+"/books", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

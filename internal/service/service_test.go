package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/listenupapp/bookclub-server/internal/auth"
	"github.com/listenupapp/bookclub-server/internal/domain"
	"github.com/listenupapp/bookclub-server/internal/logger"
	"github.com/listenupapp/bookclub-server/internal/metrics"
	"github.com/listenupapp/bookclub-server/internal/search"
	"github.com/listenupapp/bookclub-server/internal/store/sqldb"
	"github.com/listenupapp/bookclub-server/internal/validation"
)

// testEnv wires every service against a temporary SQLite database.
type testEnv struct {
	store    *sqldb.Store
	index    *search.SearchIndex
	metrics  *metrics.Metrics
	sessions *SessionService
	auth     *AuthService
	books    *BookService
	reviews  *ReviewService
	comments *CommentService
	profiles *ProfileService
	search   *SearchService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logger.Discard().Logger
	ctx := context.Background()

	s, err := sqldb.Open(ctx, sqldb.Options{
		Driver: sqldb.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	index, err := search.NewSearchIndex(log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	tokens, err := auth.NewTokenService(key)
	require.NoError(t, err)

	m := metrics.New()
	v := validation.New()
	sessions := NewSessionService(s, tokens, time.Hour, m, log)

	return &testEnv{
		store:    s,
		index:    index,
		metrics:  m,
		sessions: sessions,
		auth:     NewAuthService(s, sessions, v, m, log),
		books:    NewBookService(s, index, v, m, log),
		reviews:  NewReviewService(s, v, m, log),
		comments: NewCommentService(s, v, m, log),
		profiles: NewProfileService(s, log),
		search:   NewSearchService(s, index, log),
	}
}

// signUp registers and logs in a user, returning the resolved identity.
func (e *testEnv) signUp(t *testing.T, username string) domain.Identity {
	t.Helper()
	ctx := context.Background()

	_, err := e.auth.Register(ctx, RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "pw-" + username,
	})
	require.NoError(t, err)

	resp, err := e.auth.Login(ctx, LoginRequest{Email: username + "@example.com", Password: "pw-" + username})
	require.NoError(t, err)

	identity := e.sessions.Resolve(ctx, resp.Token)
	require.True(t, identity.Authenticated())
	return identity
}

func (e *testEnv) addBook(t *testing.T, owner domain.Identity, title string) *domain.Book {
	t.Helper()
	book, err := e.books.CreateBook(context.Background(), owner, CreateBookRequest{
		Title:  title,
		Author: "Frank Herbert",
		Rating: "4.5",
	})
	require.NoError(t, err)
	return book
}

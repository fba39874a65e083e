package sqldb

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/listenupapp/bookclub-server/internal/domain"
	"github.com/listenupapp/bookclub-server/internal/store"
)

func newMockPostgresStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	d, err := dialectFor(DriverPostgres)
	if err != nil {
		t.Fatalf("dialect: %v", err)
	}
	x := sqlx.NewDb(db, DriverPostgres)
	return &Store{db: x, q: x, dialect: d, logger: slog.Default()}, mock
}

func TestPostgres_UniqueViolationMapsToAlreadyExists(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO books")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "books_title_key"})

	b := &domain.Book{Title: "Dune", Author: "Frank Herbert", Rating: 4.5, OwnerID: "user-a"}
	b.ID = "book-1"
	b.InitTimestamps()

	err := s.CreateBook(context.Background(), b)
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgres_ForeignKeyViolationMapsToNotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reviews")).
		WillReturnError(&pq.Error{Code: "23503"})

	r := &domain.Review{BookID: "book-gone", AuthorID: "user-a", Content: "hi"}
	r.ID = "review-1"
	r.InitTimestamps()

	if err := s.CreateReview(context.Background(), r); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgres_ListBooksUsesByteOrderAndDollarPlaceholders(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := formatTime(time.Now())

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE b.user_id = $1 ORDER BY b.title COLLATE "C", b.id`)).
		WithArgs("user-a").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "author", "rating", "user_id", "created_at", "updated_at", "owner_name",
		}).AddRow("book-1", "Dune", "Frank Herbert", 4.5, "user-a", now, now, "alice"))

	books, err := s.ListBooksByOwner(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("ListBooksByOwner: %v", err)
	}
	if len(books) != 1 || books[0].OwnerName != "alice" {
		t.Fatalf("unexpected books: %+v", books)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgres_DeleteBookCascadeRollsBackWhenBookMissing(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM comments WHERE review_id IN")).
		WithArgs("book-x").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reviews WHERE book_id = $1")).
		WithArgs("book-x").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM books WHERE id = $1")).
		WithArgs("book-x").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	if _, err := s.DeleteBookCascade(context.Background(), "book-x"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

// TestPostgresIntegration runs the store against a real server.
func TestPostgresIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	ctx := context.Background()
	s, err := Open(ctx, Options{Driver: DriverPostgres, DSN: dsn}, slog.Default())
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	defer s.Close()

	suffix := time.Now().Format("150405.000000000")
	u := &domain.User{Username: "pg-" + suffix, Email: "pg-" + suffix + "@example.com", PasswordHash: "x"}
	u.ID = "user-pg-" + suffix
	u.InitTimestamps()
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	b := &domain.Book{Title: "PG Book " + suffix, Author: "A", Rating: 3, OwnerID: u.ID}
	b.ID = "book-pg-" + suffix
	b.InitTimestamps()
	if err := s.CreateBook(ctx, b); err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	if err := s.CreateBook(ctx, b); !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	r := &domain.Review{BookID: b.ID, AuthorID: u.ID, Content: "ok"}
	r.ID = "review-pg-" + suffix
	r.InitTimestamps()
	if err := s.CreateReview(ctx, r); err != nil {
		t.Fatalf("CreateReview: %v", err)
	}

	result, err := s.DeleteBookCascade(ctx, b.ID)
	if err != nil {
		t.Fatalf("DeleteBookCascade: %v", err)
	}
	if result.Reviews != 1 {
		t.Errorf("removed %d reviews, want 1", result.Reviews)
	}
}

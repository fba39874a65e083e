// Package store defines the persistence contract for users, sessions and the catalog.
package store

import (
	"context"
	"time"

	"github.com/listenupapp/bookclub-server/internal/domain"
)

// Store is the persistence contract. Implementations return ErrNotFound for
// missing rows and ErrAlreadyExists for unique-constraint violations.
type Store interface {
	// InTx runs fn inside one transaction. fn receives a Store bound to it;
	// returning an error rolls back. Calls nested inside fn join the outer transaction.
	InTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
	Close() error

	UserStore
	SessionStore
	BookStore
	ReviewStore
	CommentStore
}

// UserStore persists accounts. Lookups by username or email are case-insensitive.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, userID, hash string, at time.Time) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
}

// SessionStore persists login sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	TouchSession(ctx context.Context, id string, at time.Time) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)
}

// BookStore persists catalog entries.
type BookStore interface {
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	// ListBooks returns every book ordered by title ascending.
	ListBooks(ctx context.Context) ([]*domain.Book, error)
	ListBooksByOwner(ctx context.Context, userID string) ([]*domain.Book, error)
	UpdateBookRating(ctx context.Context, id string, rating float64, at time.Time) error
	// DeleteBookCascade removes the book's comments, then its reviews, then the book.
	DeleteBookCascade(ctx context.Context, id string) (domain.CascadeResult, error)
}

// ReviewStore persists reviews.
type ReviewStore interface {
	CreateReview(ctx context.Context, review *domain.Review) error
	GetReview(ctx context.Context, id string) (*domain.Review, error)
	// ListReviewsByBook returns the book's reviews oldest first.
	ListReviewsByBook(ctx context.Context, bookID string) ([]*domain.Review, error)
	UpdateReviewContent(ctx context.Context, id, content string, at time.Time) error
	// DeleteReviewCascade removes the review's comments, then the review.
	// It returns the number of comments removed.
	DeleteReviewCascade(ctx context.Context, id string) (int, error)
	CountReviewsByAuthor(ctx context.Context, userID string) (int, error)
}

// CommentStore persists comments.
type CommentStore interface {
	CreateComment(ctx context.Context, comment *domain.Comment) error
	GetComment(ctx context.Context, id string) (*domain.Comment, error)
	// ListCommentsByBook returns comments on every review of the book, oldest first.
	ListCommentsByBook(ctx context.Context, bookID string) ([]*domain.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	CountCommentsByAuthor(ctx context.Context, userID string) (int, error)
}

// SearchIndexer is the interface for keeping the catalog search index current.
type SearchIndexer interface {
	IndexBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, bookID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

func (NoopSearchIndexer) IndexBook(context.Context, *domain.Book) error { return nil }
func (NoopSearchIndexer) DeleteBook(context.Context, string) error      { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer.
func NewNoopSearchIndexer() SearchIndexer { return NoopSearchIndexer{} }

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/listenupapp/bookclub-server/internal/domain"
	domainerrors "github.com/listenupapp/bookclub-server/internal/errors"
	"github.com/listenupapp/bookclub-server/internal/id"
	"github.com/listenupapp/bookclub-server/internal/metrics"
	"github.com/listenupapp/bookclub-server/internal/store"
	"github.com/listenupapp/bookclub-server/internal/validation"
)

// Messages shown to users for catalog outcomes.
const (
	MsgBookLoginNeeded     = "You must be logged in to add a book."
	MsgBookEditLoginNeeded = "You must be logged in to edit a book."
	MsgBookDelLoginNeeded  = "You must be logged in to delete a book."
	MsgBookEditForbidden   = "You cannot edit someone else's book."
	MsgBookDeleteForbidden = "You cannot delete someone else's book."
	MsgBookNotFound        = "Book not found."
	MsgBookTitleTaken      = "A book with that title already exists."
)

// BookService manages the catalog.
type BookService struct {
	store     store.Store
	indexer   store.SearchIndexer
	validator *validation.Validator
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewBookService creates a new book service. A nil indexer disables search sync.
func NewBookService(
	bookStore store.Store,
	indexer store.SearchIndexer,
	validator *validation.Validator,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) *BookService {
	if indexer == nil {
		indexer = store.NewNoopSearchIndexer()
	}
	return &BookService{
		store:     bookStore,
		indexer:   indexer,
		validator: validator,
		metrics:   metrics,
		logger:    loggerOrDefault(logger),
	}
}

// CreateBookRequest is the data submitted on the add-book form.
// Rating is the raw submitted text.
type CreateBookRequest struct {
	Title  string `json:"title" validate:"required,notblank,max=250"`
	Author string `json:"author" validate:"required,notblank,max=250"`
	Rating string `json:"rating" validate:"required"`
}

// ListBooks returns every book ordered by title. No identity is required.
func (s *BookService) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// GetBook returns a single book.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, notFound(err, MsgBookNotFound, "get book")
	}
	return book, nil
}

// CreateBook adds a book owned by the requester.
func (s *BookService) CreateBook(ctx context.Context, identity domain.Identity, req CreateBookRequest) (book *domain.Book, err error) {
	defer func() { s.metrics.RecordMutation("book", "create", outcome(err)) }()

	if err := requireIdentity(identity, MsgBookLoginNeeded); err != nil {
		return nil, err
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	rating, err := domain.ParseRating(req.Rating)
	if err != nil {
		return nil, err
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book = &domain.Book{
		Entity:    domain.Entity{ID: bookID},
		Title:     req.Title,
		Author:    req.Author,
		Rating:    rating,
		OwnerID:   identity.UserID,
		OwnerName: identity.Username,
	}
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyExists):
			return nil, domainerrors.Conflict(MsgBookTitleTaken).WithCause(err)
		case errors.Is(err, store.ErrNotFound):
			// Owner vanished between session resolution and insert.
			return nil, domainerrors.Unauthenticated(MsgBookLoginNeeded).WithCause(err)
		}
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.index(ctx, book)
	s.logger.Info("book created", "book_id", book.ID, "title", book.Title, "owner_id", book.OwnerID)

	return book, nil
}

// UpdateRating changes a book's rating. Only the owner may do this.
func (s *BookService) UpdateRating(ctx context.Context, identity domain.Identity, bookID, rawRating string) (book *domain.Book, err error) {
	defer func() { s.metrics.RecordMutation("book", "update", outcome(err)) }()

	if err := requireIdentity(identity, MsgBookEditLoginNeeded); err != nil {
		return nil, err
	}
	rating, err := domain.ParseRating(rawRating)
	if err != nil {
		return nil, err
	}

	err = s.store.InTx(ctx, func(tx store.Store) error {
		b, err := loadBookForEdit(ctx, tx, identity, bookID)
		if err != nil {
			return err
		}
		b.Rating = rating
		b.Touch()
		if err := tx.UpdateBookRating(ctx, b.ID, b.Rating, b.UpdatedAt); err != nil {
			return notFound(err, MsgBookNotFound, "update rating")
		}
		book = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.index(ctx, book)
	s.logger.Info("book rating updated", "book_id", book.ID, "rating", book.Rating)

	return book, nil
}

// AuthorizeEdit returns the book when the requester may edit it, so the edit
// form is only shown to the owner.
func (s *BookService) AuthorizeEdit(ctx context.Context, identity domain.Identity, bookID string) (*domain.Book, error) {
	return loadBookForEdit(ctx, s.store, identity, bookID)
}

// DeleteBook removes a book with its reviews and their comments.
// Only the owner may do this.
func (s *BookService) DeleteBook(ctx context.Context, identity domain.Identity, bookID string) (result domain.CascadeResult, err error) {
	defer func() { s.metrics.RecordMutation("book", "delete", outcome(err)) }()

	err = s.store.InTx(ctx, func(tx store.Store) error {
		book, err := tx.GetBook(ctx, bookID)
		if err != nil {
			return notFound(err, MsgBookNotFound, "get book")
		}
		if err := authorize(identity, book, MsgBookDelLoginNeeded, MsgBookDeleteForbidden); err != nil {
			return err
		}
		result, err = tx.DeleteBookCascade(ctx, book.ID)
		if err != nil {
			return notFound(err, MsgBookNotFound, "delete book")
		}
		return nil
	})
	if err != nil {
		return domain.CascadeResult{}, err
	}

	if err := s.indexer.DeleteBook(ctx, bookID); err != nil {
		s.logger.Warn("failed to remove book from search index", "book_id", bookID, "error", err)
	}
	s.metrics.RecordCascade(result.Reviews, result.Comments)
	s.logger.Info("book deleted",
		"book_id", bookID,
		"reviews_deleted", result.Reviews,
		"comments_deleted", result.Comments,
	)

	return result, nil
}

// GetBookDetail returns a book with its reviews, each with its comments.
// No identity is required.
func (s *BookService) GetBookDetail(ctx context.Context, bookID string) (*domain.BookDetail, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, notFound(err, MsgBookNotFound, "get book")
	}
	reviews, err := s.store.ListReviewsByBook(ctx, book.ID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	comments, err := s.store.ListCommentsByBook(ctx, book.ID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return assembleDetail(book, reviews, comments), nil
}

// assembleDetail groups comments under their reviews, keeping the
// oldest-first order of both lists.
func assembleDetail(book *domain.Book, reviews []*domain.Review, comments []*domain.Comment) *domain.BookDetail {
	byReview := make(map[string][]*domain.Comment, len(reviews))
	for _, c := range comments {
		byReview[c.ReviewID] = append(byReview[c.ReviewID], c)
	}

	detail := &domain.BookDetail{
		Book:    book,
		Reviews: make([]*domain.ReviewThread, 0, len(reviews)),
	}
	for _, r := range reviews {
		thread := &domain.ReviewThread{Review: r, Comments: byReview[r.ID]}
		if thread.Comments == nil {
			thread.Comments = []*domain.Comment{}
		}
		detail.Reviews = append(detail.Reviews, thread)
	}
	return detail
}

func loadBookForEdit(ctx context.Context, s store.BookStore, identity domain.Identity, bookID string) (*domain.Book, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, notFound(err, MsgBookNotFound, "get book")
	}
	if err := authorize(identity, book, MsgBookEditLoginNeeded, MsgBookEditForbidden); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *BookService) index(ctx context.Context, book *domain.Book) {
	if err := s.indexer.IndexBook(ctx, book); err != nil {
		s.logger.Warn("failed to index book", "book_id", book.ID, "error", err)
	}
}

package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/bookclub-server/internal/auth"
	"github.com/listenupapp/bookclub-server/internal/domain"
	"github.com/listenupapp/bookclub-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-books",
		Method:      http.MethodGet,
		Path:        "/books",
		Summary:     "List books",
		Description: "Returns every book ordered by title",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID:   "create-book",
		Method:        http.MethodPost,
		Path:          "/books",
		Summary:       "Add book",
		Description:   "Adds a book owned by the caller",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
		Security:      bearerAuth,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-book",
		Method:      http.MethodGet,
		Path:        "/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book with its reviews and their comments, oldest first",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-book-rating",
		Method:      http.MethodPatch,
		Path:        "/books/{id}",
		Summary:     "Update rating",
		Description: "Changes the book's rating. Only the owner may do this.",
		Tags:        []string{"Books"},
		Security:    bearerAuth,
	}, s.handleUpdateRating)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-book",
		Method:      http.MethodDelete,
		Path:        "/books/{id}",
		Summary:     "Delete book",
		Description: "Deletes the book with its reviews and their comments. Only the owner may do this.",
		Tags:        []string{"Books"},
		Security:    bearerAuth,
	}, s.handleDeleteBook)
}

// === DTOs ===

// BookIDInput identifies a book by path.
type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// ListBooksOutput wraps the catalog for Huma.
type ListBooksOutput struct {
	Body struct {
		Books []*domain.Book `json:"books" doc:"Books ordered by title"`
	}
}

// CreateBookInput wraps the create request for Huma.
type CreateBookInput struct {
	Body struct {
		Title  string  `json:"title" maxLength:"250" doc:"Title, must be unique"`
		Author string  `json:"author" maxLength:"250" doc:"Author"`
		Rating float64 `json:"rating" doc:"Rating; any finite number"`
	}
}

// BookOutput wraps a book for Huma.
type BookOutput struct {
	Body *domain.Book
}

// BookDetailOutput wraps a book detail for Huma.
type BookDetailOutput struct {
	Body *domain.BookDetail
}

// UpdateRatingInput wraps the rating change for Huma.
type UpdateRatingInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body struct {
		Rating float64 `json:"rating" doc:"New rating"`
	}
}

// DeleteBookOutput reports what a book deletion removed.
type DeleteBookOutput struct {
	Body struct {
		Deleted domain.CascadeResult `json:"deleted" doc:"Reviews and comments removed with the book"`
	}
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, _ *struct{}) (*ListBooksOutput, error) {
	books, err := s.services.Books.ListBooks(ctx)
	if err != nil {
		return nil, s.toAPIError(err)
	}
	out := &ListBooksOutput{}
	out.Body.Books = books
	if out.Body.Books == nil {
		out.Body.Books = []*domain.Book{}
	}
	return out, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	book, err := s.services.Books.CreateBook(ctx, auth.IdentityFromContext(ctx), service.CreateBookRequest{
		Title:  input.Body.Title,
		Author: input.Body.Author,
		Rating: formatRating(input.Body.Rating),
	})
	if err != nil {
		return nil, s.toAPIError(err)
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookDetailOutput, error) {
	detail, err := s.services.Books.GetBookDetail(ctx, input.ID)
	if err != nil {
		return nil, s.toAPIError(err)
	}
	return &BookDetailOutput{Body: detail}, nil
}

func (s *Server) handleUpdateRating(ctx context.Context, input *UpdateRatingInput) (*BookOutput, error) {
	book, err := s.services.Books.UpdateRating(ctx, auth.IdentityFromContext(ctx), input.ID, formatRating(input.Body.Rating))
	if err != nil {
		return nil, s.toAPIError(err)
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*DeleteBookOutput, error) {
	result, err := s.services.Books.DeleteBook(ctx, auth.IdentityFromContext(ctx), input.ID)
	if err != nil {
		return nil, s.toAPIError(err)
	}
	out := &DeleteBookOutput{}
	out.Body.Deleted = result
	return out, nil
}

// formatRating renders a JSON number in the form the services parse.
func formatRating(rating float64) string {
	return strconv.FormatFloat(rating, 'f', -1, 64)
}

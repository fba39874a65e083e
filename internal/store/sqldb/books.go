package sqldb

import (
	"context"
	"database/sql"
	"time"

	"github.com/listenupapp/bookclub-server/internal/domain"
	"github.com/listenupapp/bookclub-server/internal/store"
)

const bookSelect = `
	SELECT b.id, b.title, b.author, b.rating, b.user_id, b.created_at, b.updated_at,
	       u.username AS owner_name
	FROM books b
	JOIN users u ON u.id = b.user_id`

type bookRow struct {
	ID        string  `db:"id"`
	Title     string  `db:"title"`
	Author    string  `db:"author"`
	Rating    float64 `db:"rating"`
	UserID    string  `db:"user_id"`
	CreatedAt string  `db:"created_at"`
	UpdatedAt string  `db:"updated_at"`
	OwnerName string  `db:"owner_name"`
}

func (r *bookRow) toDomain() (*domain.Book, error) {
	b := &domain.Book{
		Title:     r.Title,
		Author:    r.Author,
		Rating:    r.Rating,
		OwnerID:   r.UserID,
		OwnerName: r.OwnerName,
	}
	b.ID = r.ID

	var err error
	if b.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(r.UpdatedAt); err != nil {
		return nil, err
	}
	return b, nil
}

func booksFromRows(rows []bookRow) ([]*domain.Book, error) {
	books := make([]*domain.Book, 0, len(rows))
	for i := range rows {
		b, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, nil
}

// CreateBook inserts a book. Returns store.ErrAlreadyExists if the title is taken
// and store.ErrNotFound if the owner does not exist.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	_, err := s.exec(ctx, `
		INSERT INTO books (id, title, author, rating, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		book.Title,
		book.Author,
		book.Rating,
		book.OwnerID,
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
	)
	return err
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	var row bookRow
	if err := s.get(ctx, &row, bookSelect+` WHERE b.id = ?`, id); err != nil {
		return nil, err
	}
	return row.toDomain()
}

// ListBooks returns every book ordered by title (byte order), then ID.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	var rows []bookRow
	if err := s.selectAll(ctx, &rows, bookSelect+` ORDER BY `+s.dialect.titleOrder+`, b.id`); err != nil {
		return nil, err
	}
	return booksFromRows(rows)
}

// ListBooksByOwner returns the user's books ordered by title.
func (s *Store) ListBooksByOwner(ctx context.Context, userID string) ([]*domain.Book, error) {
	var rows []bookRow
	if err := s.selectAll(ctx, &rows,
		bookSelect+` WHERE b.user_id = ? ORDER BY `+s.dialect.titleOrder+`, b.id`, userID); err != nil {
		return nil, err
	}
	return booksFromRows(rows)
}

// UpdateBookRating sets a book's rating.
func (s *Store) UpdateBookRating(ctx context.Context, id string, rating float64, at time.Time) error {
	return s.execOne(ctx,
		`UPDATE books SET rating = ?, updated_at = ? WHERE id = ?`,
		rating, formatTime(at), id)
}

// DeleteBookCascade removes the comments on the book's reviews, the reviews,
// and the book, in one transaction.
func (s *Store) DeleteBookCascade(ctx context.Context, id string) (domain.CascadeResult, error) {
	var result domain.CascadeResult

	err := s.InTx(ctx, func(txs store.Store) error {
		tx := txs.(*Store)

		res, err := tx.exec(ctx,
			`DELETE FROM comments WHERE review_id IN (SELECT id FROM reviews WHERE book_id = ?)`, id)
		if err != nil {
			return err
		}
		if result.Comments, err = rowsAffected(res); err != nil {
			return err
		}

		res, err = tx.exec(ctx, `DELETE FROM reviews WHERE book_id = ?`, id)
		if err != nil {
			return err
		}
		if result.Reviews, err = rowsAffected(res); err != nil {
			return err
		}

		return tx.execOne(ctx, `DELETE FROM books WHERE id = ?`, id)
	})
	if err != nil {
		return domain.CascadeResult{}, err
	}
	return result, nil
}

func rowsAffected(res sql.Result) (int, error) {
	n, err := res.RowsAffected()
	return int(n), err
}

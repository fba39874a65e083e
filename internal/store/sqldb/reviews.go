package sqldb

import (
	"context"
	"time"

	"github.com/listenupapp/bookclub-server/internal/domain"
	"github.com/listenupapp/bookclub-server/internal/store"
)

const reviewSelect = `
	SELECT r.id, r.content, r.user_id, r.book_id, r.created_at, r.updated_at,
	       u.username AS author_name
	FROM reviews r
	JOIN users u ON u.id = r.user_id`

type reviewRow struct {
	ID         string `db:"id"`
	Content    string `db:"content"`
	UserID     string `db:"user_id"`
	BookID     string `db:"book_id"`
	CreatedAt  string `db:"created_at"`
	UpdatedAt  string `db:"updated_at"`
	AuthorName string `db:"author_name"`
}

func (r *reviewRow) toDomain() (*domain.Review, error) {
	rv := &domain.Review{
		BookID:     r.BookID,
		AuthorID:   r.UserID,
		Content:    r.Content,
		AuthorName: r.AuthorName,
	}
	rv.ID = r.ID

	var err error
	if rv.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return nil, err
	}
	if rv.UpdatedAt, err = parseTime(r.UpdatedAt); err != nil {
		return nil, err
	}
	return rv, nil
}

// CreateReview inserts a review. Returns store.ErrNotFound if the book or author is missing.
func (s *Store) CreateReview(ctx context.Context, review *domain.Review) error {
	_, err := s.exec(ctx, `
		INSERT INTO reviews (id, content, user_id, book_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		review.ID,
		review.Content,
		review.AuthorID,
		review.BookID,
		formatTime(review.CreatedAt),
		formatTime(review.UpdatedAt),
	)
	return err
}

// GetReview retrieves a review by ID.
func (s *Store) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	var row reviewRow
	if err := s.get(ctx, &row, reviewSelect+` WHERE r.id = ?`, id); err != nil {
		return nil, err
	}
	return row.toDomain()
}

// ListReviewsByBook returns the book's reviews, oldest first.
func (s *Store) ListReviewsByBook(ctx context.Context, bookID string) ([]*domain.Review, error) {
	var rows []reviewRow
	if err := s.selectAll(ctx, &rows,
		reviewSelect+` WHERE r.book_id = ? ORDER BY r.created_at, r.id`, bookID); err != nil {
		return nil, err
	}

	reviews := make([]*domain.Review, 0, len(rows))
	for i := range rows {
		rv, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, nil
}

// UpdateReviewContent replaces a review's text.
func (s *Store) UpdateReviewContent(ctx context.Context, id, content string, at time.Time) error {
	return s.execOne(ctx,
		`UPDATE reviews SET content = ?, updated_at = ? WHERE id = ?`,
		content, formatTime(at), id)
}

// DeleteReviewCascade removes the review's comments and then the review.
func (s *Store) DeleteReviewCascade(ctx context.Context, id string) (int, error) {
	var removed int

	err := s.InTx(ctx, func(txs store.Store) error {
		tx := txs.(*Store)

		res, err := tx.exec(ctx, `DELETE FROM comments WHERE review_id = ?`, id)
		if err != nil {
			return err
		}
		if removed, err = rowsAffected(res); err != nil {
			return err
		}

		return tx.execOne(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// CountReviewsByAuthor counts reviews written by the user.
func (s *Store) CountReviewsByAuthor(ctx context.Context, userID string) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM reviews WHERE user_id = ?`, userID)
}

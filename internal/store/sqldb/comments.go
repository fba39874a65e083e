package sqldb

import (
	"context"

	"github.com/listenupapp/bookclub-server/internal/domain"
)

const commentSelect = `
	SELECT c.id, c.content, c.user_id, c.review_id, c.created_at, c.updated_at,
	       u.username AS author_name
	FROM comments c
	JOIN users u ON u.id = c.user_id`

type commentRow struct {
	ID         string `db:"id"`
	Content    string `db:"content"`
	UserID     string `db:"user_id"`
	ReviewID   string `db:"review_id"`
	CreatedAt  string `db:"created_at"`
	UpdatedAt  string `db:"updated_at"`
	AuthorName string `db:"author_name"`
}

func (r *commentRow) toDomain() (*domain.Comment, error) {
	c := &domain.Comment{
		ReviewID:   r.ReviewID,
		AuthorID:   r.UserID,
		Content:    r.Content,
		AuthorName: r.AuthorName,
	}
	c.ID = r.ID

	var err error
	if c.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(r.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateComment inserts a comment. Returns store.ErrNotFound if the review or author is missing.
func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) error {
	_, err := s.exec(ctx, `
		INSERT INTO comments (id, content, user_id, review_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.Content,
		comment.AuthorID,
		comment.ReviewID,
		formatTime(comment.CreatedAt),
		formatTime(comment.UpdatedAt),
	)
	return err
}

// GetComment retrieves a comment by ID.
func (s *Store) GetComment(ctx context.Context, id string) (*domain.Comment, error) {
	var row commentRow
	if err := s.get(ctx, &row, commentSelect+` WHERE c.id = ?`, id); err != nil {
		return nil, err
	}
	return row.toDomain()
}

// ListCommentsByBook returns comments on all of the book's reviews, oldest first.
func (s *Store) ListCommentsByBook(ctx context.Context, bookID string) ([]*domain.Comment, error) {
	var rows []commentRow
	if err := s.selectAll(ctx, &rows, commentSelect+`
		JOIN reviews r ON r.id = c.review_id
		WHERE r.book_id = ?
		ORDER BY c.created_at, c.id`, bookID); err != nil {
		return nil, err
	}

	comments := make([]*domain.Comment, 0, len(rows))
	for i := range rows {
		c, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, nil
}

// DeleteComment removes a comment.
func (s *Store) DeleteComment(ctx context.Context, id string) error {
	return s.execOne(ctx, `DELETE FROM comments WHERE id = ?`, id)
}

// CountCommentsByAuthor counts comments written by the user.
func (s *Store) CountCommentsByAuthor(ctx context.Context, userID string) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM comments WHERE user_id = ?`, userID)
}

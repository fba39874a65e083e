package sqldb

import (
	"context"
	"time"

	"github.com/listenupapp/bookclub-server/internal/domain"
)

type sessionRow struct {
	ID         string `db:"id"`
	UserID     string `db:"user_id"`
	CreatedAt  string `db:"created_at"`
	ExpiresAt  string `db:"expires_at"`
	LastSeenAt string `db:"last_seen_at"`
}

// CreateSession inserts a new session.
func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.exec(ctx, `
		INSERT INTO sessions (id, user_id, created_at, expires_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		formatTime(session.CreatedAt),
		formatTime(session.ExpiresAt),
		formatTime(session.LastSeenAt),
	)
	return err
}

// GetSession retrieves a session by ID. Expired sessions are still returned;
// callers check domain.Session.IsExpired.
func (s *Store) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	var row sessionRow
	if err := s.get(ctx, &row,
		`SELECT id, user_id, created_at, expires_at, last_seen_at FROM sessions WHERE id = ?`, id); err != nil {
		return nil, err
	}

	sess := &domain.Session{ID: row.ID, UserID: row.UserID}
	var err error
	if sess.CreatedAt, err = parseTime(row.CreatedAt); err != nil {
		return nil, err
	}
	if sess.ExpiresAt, err = parseTime(row.ExpiresAt); err != nil {
		return nil, err
	}
	if sess.LastSeenAt, err = parseTime(row.LastSeenAt); err != nil {
		return nil, err
	}
	return sess, nil
}

// TouchSession records activity on a session.
func (s *Store) TouchSession(ctx context.Context, id string, at time.Time) error {
	return s.execOne(ctx, `UPDATE sessions SET last_seen_at = ? WHERE id = ?`, formatTime(at), id)
}

// DeleteSession removes a session. Returns store.ErrNotFound if it does not exist.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	return s.execOne(ctx, `DELETE FROM sessions WHERE id = ?`, id)
}

// DeleteExpiredSessions removes sessions whose expiry is at or before now.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	res, err := s.exec(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, formatTime(now))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

package sqldb

import (
	"context"
	"time"

	"github.com/listenupapp/bookclub-server/internal/domain"
)

const userColumns = `id, username, email, password_hash, created_at, updated_at`

type userRow struct {
	ID           string `db:"id"`
	Username     string `db:"username"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	CreatedAt    string `db:"created_at"`
	UpdatedAt    string `db:"updated_at"`
}

func (r *userRow) toDomain() (*domain.User, error) {
	u := &domain.User{
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
	}
	u.ID = r.ID

	var err error
	if u.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(r.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser inserts a user. Returns store.ErrAlreadyExists when the
// case-folded username or email is taken.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.exec(ctx, `
		INSERT INTO users (id, username, username_key, email, email_key, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.UsernameKey(),
		user.Email,
		user.EmailKey(),
		user.PasswordHash,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	return err
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email_key = ?`, domain.FoldKey(email))
}

// GetUserByUsername retrieves a user by username, ignoring case.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE username_key = ?`, domain.FoldKey(username))
}

func (s *Store) getUser(ctx context.Context, query string, arg string) (*domain.User, error) {
	var row userRow
	if err := s.get(ctx, &row, query, arg); err != nil {
		return nil, err
	}
	return row.toDomain()
}

// UpdatePasswordHash replaces a user's password hash.
func (s *Store) UpdatePasswordHash(ctx context.Context, userID, hash string, at time.Time) error {
	return s.execOne(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, formatTime(at), userID)
}

// ListUsers returns all users ordered by username.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var rows []userRow
	if err := s.selectAll(ctx, &rows, `SELECT `+userColumns+` FROM users ORDER BY username_key`); err != nil {
		return nil, err
	}

	users := make([]*domain.User, 0, len(rows))
	for i := range rows {
		u, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

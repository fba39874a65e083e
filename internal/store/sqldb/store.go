// Package sqldb implements store.Store on database/sql via sqlx.
// SQLite (modernc.org/sqlite) is the default backend; PostgreSQL (lib/pq) is optional.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/listenupapp/bookclub-server/internal/store"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Options selects the backend.
type Options struct {
	Driver string
	DSN    string
}

// Store is the SQL-backed store.Store.
type Store struct {
	db      *sqlx.DB
	q       sqlx.ExtContext // db, or tx inside InTx
	tx      *sqlx.Tx
	dialect dialect
	logger  *slog.Logger
}

var _ store.Store = (*Store)(nil)

// Open connects to the database and applies pending migrations.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*Store, error) {
	d, err := dialectFor(opts.Driver)
	if err != nil {
		return nil, err
	}

	dsn := opts.DSN
	if opts.Driver == DriverSQLite {
		if dsn, err = sqliteDSN(opts.DSN); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Open(opts.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Driver, err)
	}

	if opts.Driver == DriverSQLite {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
	} else {
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(5)
	}
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", opts.Driver, err)
	}

	if err := migrate(ctx, db.DB, opts.Driver, logger); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, q: db, dialect: d, logger: logger}, nil
}

// sqliteDSN turns a file path into a modernc DSN with the pragmas the store relies on.
// foreign_keys is off by default in SQLite.
func sqliteDSN(path string) (string, error) {
	if path == "" {
		return "", errors.New("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("create database directory: %w", err)
	}

	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode(), nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DB exposes the connection pool for migrations tooling.
func (s *Store) DB() *sql.DB {
	return s.db.DB
}

// InTx runs fn in a transaction. A Store already bound to a transaction
// runs fn directly so helpers can compose.
func (s *Store) InTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(&Store{db: s.db, q: tx, tx: tx, dialect: s.dialect, logger: s.logger}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, dest any, query string, args ...any) error {
	err := sqlx.GetContext(ctx, s.q, dest, s.q.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func (s *Store) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, s.q, dest, s.q.Rebind(query), args...)
}

// exec runs a write and maps constraint failures to store errors.
func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := s.q.ExecContext(ctx, s.q.Rebind(query), args...)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return nil, store.ErrAlreadyExists.WithCause(err)
		case isForeignKeyViolation(err):
			return nil, store.ErrNotFound.WithMessage("referenced record not found").WithCause(err)
		}
		return nil, err
	}
	return res, nil
}

// execOne runs a write that must touch exactly one row.
func (s *Store) execOne(ctx context.Context, query string, args ...any) error {
	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, s.q, &n, s.q.Rebind(query), args...); err != nil {
		return 0, err
	}
	return n, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

package sqldb

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Migrations returns the embedded goose migration files.
func Migrations() fs.FS {
	sub, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		panic(fmt.Sprintf("embedded migrations: %v", err))
	}
	return sub
}

// NewMigrator returns a goose provider for db using the embedded migrations.
func NewMigrator(db *sql.DB, driver string) (*goose.Provider, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(d.goose, db, Migrations())
}

// migrate applies all pending migrations.
func migrate(ctx context.Context, db *sql.DB, driver string, logger *slog.Logger) error {
	provider, err := NewMigrator(db, driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		logger.Info("migration applied",
			"version", r.Source.Version,
			"file", r.Source.Path,
			"duration", r.Duration,
		)
	}
	return nil
}

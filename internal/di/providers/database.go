package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/bookclub-server/internal/config"
	"github.com/listenupapp/bookclub-server/internal/logger"
	"github.com/listenupapp/bookclub-server/internal/metrics"
	"github.com/listenupapp/bookclub-server/internal/store/sqldb"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqldb.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the database and applies pending migrations.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	db, err := sqldb.Open(ctx, sqldb.Options{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
	}, log.Logger)
	if err != nil {
		return nil, err
	}

	// Postgres DSNs carry credentials; only log the file path for SQLite.
	if cfg.Database.Driver == config.DriverSQLite {
		log.Info("Database initialized", "driver", cfg.Database.Driver, "path", cfg.Database.DSN)
	} else {
		log.Info("Database initialized", "driver", cfg.Database.Driver)
	}

	return &StoreHandle{Store: db}, nil
}

// ProvideMetrics provides the Prometheus registry and collectors.
func ProvideMetrics(do.Injector) (*metrics.Metrics, error) {
	return metrics.New(), nil
}

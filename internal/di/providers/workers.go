package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/do/v2"

	"github.com/listenupapp/bookclub-server/internal/logger"
	"github.com/listenupapp/bookclub-server/internal/service"
)

// SessionCleanupJob runs periodic session cleanup.
type SessionCleanupJob struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	<-j.done
	return nil
}

// sessionPurger deletes sessions past their expiry.
type sessionPurger interface {
	DeleteExpiredSessions(ctx context.Context) (int, error)
}

// ProvideSessionCleanupJob provides the periodic session cleanup job.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	sessions := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	job := startSessionCleanup(sessions, sessionCleanupInterval, log.Logger)
	log.Info("Session cleanup job started", "interval", sessionCleanupInterval)

	return job, nil
}

func startSessionCleanup(purger sessionPurger, interval time.Duration, log *slog.Logger) *SessionCleanupJob {
	ctx, cancel := context.WithCancel(context.Background())
	job := &SessionCleanupJob{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(job.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// Initial cleanup on startup
		purgeExpiredSessions(ctx, purger, log)

		for {
			select {
			case <-ticker.C:
				purgeExpiredSessions(ctx, purger, log)
			case <-ctx.Done():
				return
			}
		}
	}()

	return job
}

func purgeExpiredSessions(ctx context.Context, purger sessionPurger, log *slog.Logger) {
	count, err := purger.DeleteExpiredSessions(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn("Session cleanup failed", "error", err)
		}
		return
	}
	if count > 0 {
		log.Info("Session cleanup completed", "deleted", count)
	}
}

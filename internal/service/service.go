// Package service implements the book club use cases on top of the store.
//
// Every operation takes the requester's domain.Identity explicitly. Services
// enforce authentication and ownership and translate store errors into the
// coded errors of the errors package.
package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/listenupapp/bookclub-server/internal/domain"
	domainerrors "github.com/listenupapp/bookclub-server/internal/errors"
	"github.com/listenupapp/bookclub-server/internal/store"
)

// requireIdentity fails with UNAUTHENTICATED when no user is signed in.
func requireIdentity(identity domain.Identity, msg string) error {
	if !identity.Authenticated() {
		return domainerrors.Unauthenticated(msg)
	}
	return nil
}

// authorize applies the ownership rule: anonymous callers are sent to login,
// signed-in callers who do not own the record are refused.
func authorize(identity domain.Identity, record domain.Owned, loginMsg, forbiddenMsg string) error {
	if err := requireIdentity(identity, loginMsg); err != nil {
		return err
	}
	if !identity.Owns(record) {
		return domainerrors.Forbidden(forbiddenMsg)
	}
	return nil
}

// notFound converts store.ErrNotFound into a NOT_FOUND error with msg and
// wraps anything else with op.
func notFound(err error, msg, op string) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound(msg).WithCause(err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// outcome labels a finished mutation for metrics.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(domainerrors.CodeOf(err))
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// Services bundles the use cases for the HTTP surfaces.
type Services struct {
	Auth     *AuthService
	Sessions *SessionService
	Books    *BookService
	Reviews  *ReviewService
	Comments *CommentService
	Profiles *ProfileService
	Search   *SearchService
}

package sqldb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/listenupapp/bookclub-server/internal/domain"
	"github.com/listenupapp/bookclub-server/internal/store"
)

func makeTestSession(t *testing.T, s *Store, id string, user *domain.User, expiresAt time.Time) *domain.Session {
	t.Helper()
	now := time.Now().UTC()
	sess := &domain.Session{ID: id, UserID: user.ID, CreatedAt: now, ExpiresAt: expiresAt, LastSeenAt: now}
	if err := s.CreateSession(context.Background(), sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	return sess
}

func TestCreateAndGetSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := makeTestUser(t, s, "alice")

	sess := makeTestSession(t, s, "session-1", alice, time.Now().Add(time.Hour))

	got, err := s.GetSession(ctx, "session-1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.UserID != alice.ID {
		t.Errorf("UserID: got %s, want %s", got.UserID, alice.ID)
	}
	if !got.ExpiresAt.Equal(sess.ExpiresAt.UTC()) {
		t.Errorf("ExpiresAt: got %v, want %v", got.ExpiresAt, sess.ExpiresAt)
	}
}

func TestCreateSession_UnknownUser(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	err := s.CreateSession(context.Background(), &domain.Session{
		ID: "session-x", UserID: "user-missing", CreatedAt: now, ExpiresAt: now.Add(time.Hour), LastSeenAt: now,
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for dangling user, got %v", err)
	}
}

func TestTouchSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := makeTestUser(t, s, "alice")
	makeTestSession(t, s, "session-1", alice, time.Now().Add(time.Hour))

	at := time.Now().Add(10 * time.Minute).UTC()
	if err := s.TouchSession(ctx, "session-1", at); err != nil {
		t.Fatalf("TouchSession: %v", err)
	}
	got, _ := s.GetSession(ctx, "session-1")
	if !got.LastSeenAt.Equal(at) {
		t.Errorf("LastSeenAt: got %v, want %v", got.LastSeenAt, at)
	}
}

func TestDeleteSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := makeTestUser(t, s, "alice")
	makeTestSession(t, s, "session-1", alice, time.Now().Add(time.Hour))

	if err := s.DeleteSession(ctx, "session-1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := s.GetSession(ctx, "session-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteSession(ctx, "session-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := makeTestUser(t, s, "alice")
	now := time.Now()

	makeTestSession(t, s, "session-old", alice, now.Add(-time.Hour))
	makeTestSession(t, s, "session-edge", alice, now)
	makeTestSession(t, s, "session-live", alice, now.Add(time.Hour))

	n, err := s.DeleteExpiredSessions(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d sessions, want 2", n)
	}
	if _, err := s.GetSession(ctx, "session-live"); err != nil {
		t.Errorf("live session removed: %v", err)
	}
}

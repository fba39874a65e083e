package sqldb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/listenupapp/bookclub-server/internal/domain"
	"github.com/listenupapp/bookclub-server/internal/store"
)

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := makeTestUser(t, s, "Alice")

	got, err := s.GetUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Username != "Alice" || got.Email != "Alice@example.com" {
		t.Errorf("unexpected user: %+v", got)
	}
	if got.PasswordHash != alice.PasswordHash {
		t.Errorf("password hash mismatch")
	}
	if !got.CreatedAt.Equal(alice.CreatedAt) {
		t.Errorf("CreatedAt: got %v, want %v", got.CreatedAt, alice.CreatedAt)
	}
}

func TestGetUserByEmail_CaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := makeTestUser(t, s, "alice")

	got, err := s.GetUserByEmail(ctx, "ALICE@Example.COM")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != alice.ID {
		t.Errorf("got %s, want %s", got.ID, alice.ID)
	}

	got, err = s.GetUserByUsername(ctx, "ALICE")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got.ID != alice.ID {
		t.Errorf("got %s, want %s", got.ID, alice.ID)
	}

	if _, err := s.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateUser_Duplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestUser(t, s, "alice")

	tests := []struct {
		name     string
		username string
		email    string
	}{
		{"same username different case", "ALICE", "other@example.com"},
		{"same email different case", "bob", "Alice@Example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &domain.User{Username: tt.username, Email: tt.email, PasswordHash: "x"}
			u.ID = "user-" + tt.username
			u.InitTimestamps()

			err := s.CreateUser(ctx, u)
			if !errors.Is(err, store.ErrAlreadyExists) {
				t.Fatalf("expected ErrAlreadyExists, got %v", err)
			}
			if _, err := s.GetUser(ctx, u.ID); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("rejected user was stored")
			}
		})
	}
}

func TestUpdatePasswordHash(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := makeTestUser(t, s, "alice")

	if err := s.UpdatePasswordHash(ctx, alice.ID, "$argon2id$new", time.Now()); err != nil {
		t.Fatalf("UpdatePasswordHash: %v", err)
	}
	got, _ := s.GetUser(ctx, alice.ID)
	if got.PasswordHash != "$argon2id$new" {
		t.Errorf("hash not updated: %s", got.PasswordHash)
	}

	if err := s.UpdatePasswordHash(ctx, "user-missing", "x", time.Now()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListUsers(t *testing.T) {
	s := newTestStore(t)
	makeTestUser(t, s, "carol")
	makeTestUser(t, s, "alice")

	users, err := s.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 || users[0].Username != "alice" || users[1].Username != "carol" {
		t.Errorf("unexpected users: %v", users)
	}
}

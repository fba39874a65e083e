package sqldb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/listenupapp/bookclub-server/internal/domain"
	"github.com/listenupapp/bookclub-server/internal/store"
)

func TestCreateReview_UnknownBook(t *testing.T) {
	s := newTestStore(t)
	alice := makeTestUser(t, s, "alice")

	r := &domain.Review{BookID: "book-missing", AuthorID: alice.ID, Content: "?"}
	r.ID = "review-orphan"
	r.InitTimestamps()

	if err := s.CreateReview(context.Background(), r); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListReviewsByBook_OldestFirst(t *testing.T) {
	s := newTestStore(t)
	alice := makeTestUser(t, s, "alice")
	bob := makeTestUser(t, s, "bob")
	dune := makeTestBook(t, s, alice, "Dune")

	first := makeTestReview(t, s, bob, dune, "first")
	second := makeTestReview(t, s, alice, dune, "second")
	// Duplicate reviews by one author are allowed.
	third := makeTestReview(t, s, bob, dune, "first")

	reviews, err := s.ListReviewsByBook(context.Background(), dune.ID)
	if err != nil {
		t.Fatalf("ListReviewsByBook: %v", err)
	}
	if len(reviews) != 3 {
		t.Fatalf("got %d reviews, want 3", len(reviews))
	}
	for i, want := range []string{first.ID, second.ID, third.ID} {
		if reviews[i].ID != want {
			t.Errorf("reviews[%d] = %s, want %s", i, reviews[i].ID, want)
		}
	}
	if reviews[0].AuthorName != "bob" {
		t.Errorf("AuthorName: got %q", reviews[0].AuthorName)
	}
}

func TestUpdateReviewContent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := makeTestUser(t, s, "alice")
	review := makeTestReview(t, s, alice, makeTestBook(t, s, alice, "Dune"), "draft")

	if err := s.UpdateReviewContent(ctx, review.ID, "final", time.Now()); err != nil {
		t.Fatalf("UpdateReviewContent: %v", err)
	}
	got, _ := s.GetReview(ctx, review.ID)
	if got.Content != "final" {
		t.Errorf("content: got %q", got.Content)
	}
	if err := s.UpdateReviewContent(ctx, "review-missing", "x", time.Now()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteReviewCascade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := makeTestUser(t, s, "alice")
	bob := makeTestUser(t, s, "bob")
	dune := makeTestBook(t, s, alice, "Dune")

	doomed := makeTestReview(t, s, bob, dune, "meh")
	kept := makeTestReview(t, s, alice, dune, "great")
	makeTestComment(t, s, alice, doomed, "why?")
	makeTestComment(t, s, bob, doomed, "because")
	survivor := makeTestComment(t, s, bob, kept, "agreed")

	removed, err := s.DeleteReviewCascade(ctx, doomed.ID)
	if err != nil {
		t.Fatalf("DeleteReviewCascade: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed %d comments, want 2", removed)
	}
	if _, err := s.GetReview(ctx, doomed.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("review still present: %v", err)
	}
	if _, err := s.GetComment(ctx, survivor.ID); err != nil {
		t.Errorf("comment on other review removed: %v", err)
	}

	if _, err := s.DeleteReviewCascade(ctx, doomed.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestCountByAuthor(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := makeTestUser(t, s, "alice")
	bob := makeTestUser(t, s, "bob")
	dune := makeTestBook(t, s, alice, "Dune")

	r := makeTestReview(t, s, bob, dune, "one")
	makeTestReview(t, s, bob, dune, "two")
	makeTestComment(t, s, alice, r, "reply")

	if n, err := s.CountReviewsByAuthor(ctx, bob.ID); err != nil || n != 2 {
		t.Errorf("CountReviewsByAuthor(bob) = %d, %v", n, err)
	}
	if n, err := s.CountCommentsByAuthor(ctx, alice.ID); err != nil || n != 1 {
		t.Errorf("CountCommentsByAuthor(alice) = %d, %v", n, err)
	}
	if n, err := s.CountCommentsByAuthor(ctx, bob.ID); err != nil || n != 0 {
		t.Errorf("CountCommentsByAuthor(bob) = %d, %v", n, err)
	}
}

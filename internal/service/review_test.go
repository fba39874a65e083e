package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/bookclub-server/internal/domain"
	domainerrors "github.com/listenupapp/bookclub-server/internal/errors"
)

func TestReviewService_AddReview(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.signUp(t, "alice")
	book := env.addBook(t, alice, "Dune")

	review, err := env.reviews.AddReview(ctx, alice, book.ID, ReviewRequest{Content: "  Loved it  "})
	require.NoError(t, err)
	assert.Equal(t, "Loved it", review.Content)
	assert.Equal(t, alice.UserID, review.AuthorID)
	assert.Equal(t, book.ID, review.BookID)

	// Same author may review the same book again.
	_, err = env.reviews.AddReview(ctx, alice, book.ID, ReviewRequest{Content: "Still love it"})
	require.NoError(t, err)
}

func TestReviewService_AddReview_Errors(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.signUp(t, "alice")
	book := env.addBook(t, alice, "Dune")

	_, err := env.reviews.AddReview(ctx, domain.Anonymous(), book.ID, ReviewRequest{Content: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)

	_, err = env.reviews.AddReview(ctx, alice, book.ID, ReviewRequest{Content: "   "})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = env.reviews.AddReview(ctx, alice, "book-missing", ReviewRequest{Content: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestReviewService_UpdateReview(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.signUp(t, "alice")
	bob := env.signUp(t, "bob")
	book := env.addBook(t, alice, "Dune")

	review, err := env.reviews.AddReview(ctx, bob, book.ID, ReviewRequest{Content: "draft"})
	require.NoError(t, err)

	_, err = env.reviews.UpdateReview(ctx, alice, review.ID, ReviewRequest{Content: "hijack"})
	require.ErrorIs(t, err, domainerrors.ErrForbidden)

	_, err = env.reviews.UpdateReview(ctx, domain.Anonymous(), review.ID, ReviewRequest{Content: "hijack"})
	require.ErrorIs(t, err, domainerrors.ErrUnauthenticated)

	_, err = env.reviews.UpdateReview(ctx, bob, "review-missing", ReviewRequest{Content: "final"})
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	updated, err := env.reviews.UpdateReview(ctx, bob, review.ID, ReviewRequest{Content: "final"})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Content)

	got, err := env.reviews.AuthorizeEdit(ctx, bob, review.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Content)
}

func TestReviewService_DeleteReview_Cascades(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.signUp(t, "alice")
	bob := env.signUp(t, "bob")
	book := env.addBook(t, alice, "Dune")

	review, err := env.reviews.AddReview(ctx, bob, book.ID, ReviewRequest{Content: "Spice!"})
	require.NoError(t, err)
	c1, err := env.comments.AddComment(ctx, alice, review.ID, CommentRequest{Content: "one"})
	require.NoError(t, err)
	_, err = env.comments.AddComment(ctx, bob, review.ID, CommentRequest{Content: "two"})
	require.NoError(t, err)

	_, err = env.reviews.DeleteReview(ctx, alice, review.ID)
	require.ErrorIs(t, err, domainerrors.ErrForbidden)

	deleted, err := env.reviews.DeleteReview(ctx, bob, review.ID)
	require.NoError(t, err)
	assert.Equal(t, book.ID, deleted.BookID)

	_, err = env.comments.DeleteComment(ctx, alice, c1.Comment.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	detail, err := env.books.GetBookDetail(ctx, book.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Reviews)
}

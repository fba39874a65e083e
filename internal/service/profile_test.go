package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/bookclub-server/internal/domain"
	domainerrors "github.com/listenupapp/bookclub-server/internal/errors"
	"github.com/listenupapp/bookclub-server/internal/search"
)

func TestProfileService_GetProfile(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.signUp(t, "alice")
	bob := env.signUp(t, "bob")

	dune := env.addBook(t, alice, "Dune")
	env.addBook(t, alice, "Anathem")
	env.addBook(t, bob, "Emma")

	review, err := env.reviews.AddReview(ctx, alice, dune.ID, ReviewRequest{Content: "mine"})
	require.NoError(t, err)
	_, err = env.comments.AddComment(ctx, alice, review.ID, CommentRequest{Content: "c1"})
	require.NoError(t, err)
	_, err = env.comments.AddComment(ctx, alice, review.ID, CommentRequest{Content: "c2"})
	require.NoError(t, err)

	profile, err := env.profiles.GetProfile(ctx, alice)
	require.NoError(t, err)

	assert.Equal(t, "alice", profile.User.Username)
	require.Len(t, profile.Books, 2)
	assert.Equal(t, "Anathem", profile.Books[0].Title)
	assert.Equal(t, 1, profile.ReviewCount)
	assert.Equal(t, 2, profile.CommentCount)

	_, err = env.profiles.GetProfile(ctx, domain.Anonymous())
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
}

func TestSearchService_Reindex(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.signUp(t, "alice")
	env.addBook(t, alice, "Dune")
	env.addBook(t, alice, "Dune Messiah")

	// Start from an empty index, as after a restart.
	require.NoError(t, env.index.Rebuild(ctx, nil))
	res, err := env.search.Search(ctx, search.SearchParams{Query: "dune"})
	require.NoError(t, err)
	require.Empty(t, res.Hits)

	require.NoError(t, env.search.Reindex(ctx))

	res, err = env.search.Search(ctx, search.SearchParams{Query: "dune"})
	require.NoError(t, err)
	assert.Len(t, res.Hits, 2)
}

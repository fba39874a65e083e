package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/listenupapp/bookclub-server/internal/domain"
	"github.com/listenupapp/bookclub-server/internal/store"
)

// ProfileService assembles the signed-in user's profile page.
type ProfileService struct {
	store  store.Store
	logger *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(store store.Store, logger *slog.Logger) *ProfileService {
	return &ProfileService{store: store, logger: loggerOrDefault(logger)}
}

// GetProfile returns the requester's own record, their books and activity counts.
func (s *ProfileService) GetProfile(ctx context.Context, identity domain.Identity) (*domain.Profile, error) {
	if err := requireIdentity(identity, MsgProfileLoginNeed); err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, identity.UserID)
	if err != nil {
		return nil, notFound(err, "User not found.", "get user")
	}

	books, err := s.store.ListBooksByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list owned books: %w", err)
	}
	reviews, err := s.store.CountReviewsByAuthor(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}
	comments, err := s.store.CountCommentsByAuthor(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}

	return &domain.Profile{
		User:         user,
		Books:        books,
		ReviewCount:  reviews,
		CommentCount: comments,
	}, nil
}

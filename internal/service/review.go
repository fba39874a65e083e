package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/listenupapp/bookclub-server/internal/domain"
	"github.com/listenupapp/bookclub-server/internal/id"
	"github.com/listenupapp/bookclub-server/internal/metrics"
	"github.com/listenupapp/bookclub-server/internal/store"
	"github.com/listenupapp/bookclub-server/internal/validation"
)

// Messages shown to users for review outcomes.
const (
	MsgReviewLoginNeeded     = "You must be logged in to review a book."
	MsgReviewEditLoginNeeded = "You must be logged in to edit a review."
	MsgReviewDelLoginNeeded  = "You must be logged in to delete a review."
	MsgReviewEditForbidden   = "You cannot edit someone else's review."
	MsgReviewDeleteForbidden = "You cannot delete someone else's review."
	MsgReviewNotFound        = "Review not found."
)

// ReviewService manages reviews on books.
type ReviewService struct {
	store     store.Store
	validator *validation.Validator
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	store store.Store,
	validator *validation.Validator,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		store:     store,
		validator: validator,
		metrics:   metrics,
		logger:    loggerOrDefault(logger),
	}
}

// ReviewRequest carries submitted review text.
type ReviewRequest struct {
	Content string `json:"content" validate:"required,notblank"`
}

// AddReview attaches a review by the requester to an existing book.
func (s *ReviewService) AddReview(ctx context.Context, identity domain.Identity, bookID string, req ReviewRequest) (review *domain.Review, err error) {
	defer func() { s.metrics.RecordMutation("review", "create", outcome(err)) }()

	if err := requireIdentity(identity, MsgReviewLoginNeeded); err != nil {
		return nil, err
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	reviewID, err := id.Generate(id.PrefixReview)
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}
	review = &domain.Review{
		Entity:     domain.Entity{ID: reviewID},
		BookID:     bookID,
		AuthorID:   identity.UserID,
		Content:    req.Content,
		AuthorName: identity.Username,
	}
	review.InitTimestamps()

	err = s.store.InTx(ctx, func(tx store.Store) error {
		if _, err := tx.GetBook(ctx, bookID); err != nil {
			return notFound(err, MsgBookNotFound, "get book")
		}
		if err := tx.CreateReview(ctx, review); err != nil {
			return notFound(err, MsgBookNotFound, "create review")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("review added", "review_id", review.ID, "book_id", bookID, "author_id", identity.UserID)
	return review, nil
}

// AuthorizeEdit returns the review when the requester may edit it.
func (s *ReviewService) AuthorizeEdit(ctx context.Context, identity domain.Identity, reviewID string) (*domain.Review, error) {
	return loadReviewForEdit(ctx, s.store, identity, reviewID)
}

// UpdateReview replaces a review's content. Only its author may do this.
func (s *ReviewService) UpdateReview(ctx context.Context, identity domain.Identity, reviewID string, req ReviewRequest) (review *domain.Review, err error) {
	defer func() { s.metrics.RecordMutation("review", "update", outcome(err)) }()

	if err := requireIdentity(identity, MsgReviewEditLoginNeeded); err != nil {
		return nil, err
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	err = s.store.InTx(ctx, func(tx store.Store) error {
		r, err := loadReviewForEdit(ctx, tx, identity, reviewID)
		if err != nil {
			return err
		}
		r.Content = req.Content
		r.Touch()
		if err := tx.UpdateReviewContent(ctx, r.ID, r.Content, r.UpdatedAt); err != nil {
			return notFound(err, MsgReviewNotFound, "update review")
		}
		review = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("review updated", "review_id", review.ID)
	return review, nil
}

// DeleteReview removes a review and its comments. Only its author may do this.
// The deleted review is returned so callers can redirect to its book.
func (s *ReviewService) DeleteReview(ctx context.Context, identity domain.Identity, reviewID string) (review *domain.Review, err error) {
	defer func() { s.metrics.RecordMutation("review", "delete", outcome(err)) }()

	var comments int
	err = s.store.InTx(ctx, func(tx store.Store) error {
		r, err := tx.GetReview(ctx, reviewID)
		if err != nil {
			return notFound(err, MsgReviewNotFound, "get review")
		}
		if err := authorize(identity, r, MsgReviewDelLoginNeeded, MsgReviewDeleteForbidden); err != nil {
			return err
		}
		comments, err = tx.DeleteReviewCascade(ctx, r.ID)
		if err != nil {
			return notFound(err, MsgReviewNotFound, "delete review")
		}
		review = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCascade(0, comments)
	s.logger.Info("review deleted", "review_id", review.ID, "book_id", review.BookID, "comments_deleted", comments)
	return review, nil
}

func loadReviewForEdit(ctx context.Context, s store.ReviewStore, identity domain.Identity, reviewID string) (*domain.Review, error) {
	review, err := s.GetReview(ctx, reviewID)
	if err != nil {
		return nil, notFound(err, MsgReviewNotFound, "get review")
	}
	if err := authorize(identity, review, MsgReviewEditLoginNeeded, MsgReviewEditForbidden); err != nil {
		return nil, err
	}
	return review, nil
}

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

// Messages shown to users for comment outcomes.
const (
	MsgCommentLoginNeeded     = "You must be logged in to comment."
	MsgCommentDelLoginNeeded  = "You must be logged in to delete a comment."
	MsgCommentDeleteForbidden = "You cannot delete someone else's comment."
	MsgCommentNotFound        = "Comment not found."
)

// CommentService manages comments on reviews.
type CommentService struct {
	store     store.Store
	validator *validation.Validator
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewCommentService creates a new comment service.
func NewCommentService(
	store store.Store,
	validator *validation.Validator,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{
		store:     store,
		validator: validator,
		metrics:   metrics,
		logger:    loggerOrDefault(logger),
	}
}

// CommentRequest carries submitted comment text.
type CommentRequest struct {
	Content string `json:"content" validate:"required,notblank"`
}

// CommentResult is a changed comment together with the book it belongs to,
// which is where the reader is sent afterwards.
type CommentResult struct {
	Comment *domain.Comment `json:"comment"`
	BookID  string          `json:"book_id"`
}

// AddComment attaches a comment by the requester to an existing review.
func (s *CommentService) AddComment(ctx context.Context, identity domain.Identity, reviewID string, req CommentRequest) (result *CommentResult, err error) {
	defer func() { s.metrics.RecordMutation("comment", "create", outcome(err)) }()

	if err := requireIdentity(identity, MsgCommentLoginNeeded); err != nil {
		return nil, err
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	commentID, err := id.Generate(id.PrefixComment)
	if err != nil {
		return nil, fmt.Errorf("generate comment ID: %w", err)
	}
	comment := &domain.Comment{
		Entity:     domain.Entity{ID: commentID},
		ReviewID:   reviewID,
		AuthorID:   identity.UserID,
		Content:    req.Content,
		AuthorName: identity.Username,
	}
	comment.InitTimestamps()

	err = s.store.InTx(ctx, func(tx store.Store) error {
		review, err := tx.GetReview(ctx, reviewID)
		if err != nil {
			return notFound(err, MsgReviewNotFound, "get review")
		}
		if err := tx.CreateComment(ctx, comment); err != nil {
			return notFound(err, MsgReviewNotFound, "create comment")
		}
		result = &CommentResult{Comment: comment, BookID: review.BookID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("comment added", "comment_id", comment.ID, "review_id", reviewID, "author_id", identity.UserID)
	return result, nil
}

// DeleteComment removes a comment. Only its author may do this.
// The book is resolved through the comment's review.
func (s *CommentService) DeleteComment(ctx context.Context, identity domain.Identity, commentID string) (result *CommentResult, err error) {
	defer func() { s.metrics.RecordMutation("comment", "delete", outcome(err)) }()

	err = s.store.InTx(ctx, func(tx store.Store) error {
		comment, err := tx.GetComment(ctx, commentID)
		if err != nil {
			return notFound(err, MsgCommentNotFound, "get comment")
		}
		if err := authorize(identity, comment, MsgCommentDelLoginNeeded, MsgCommentDeleteForbidden); err != nil {
			return err
		}
		review, err := tx.GetReview(ctx, comment.ReviewID)
		if err != nil {
			return notFound(err, MsgReviewNotFound, "get review")
		}
		if err := tx.DeleteComment(ctx, comment.ID); err != nil {
			return notFound(err, MsgCommentNotFound, "delete comment")
		}
		result = &CommentResult{Comment: comment, BookID: review.BookID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("comment deleted", "comment_id", commentID, "book_id", result.BookID)
	return result, nil
}

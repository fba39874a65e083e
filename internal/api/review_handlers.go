package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/bookclub-server/internal/auth"
	"github.com/listenupapp/bookclub-server/internal/domain"
	"github.com/listenupapp/bookclub-server/internal/service"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "create-review",
		Method:        http.MethodPost,
		Path:          "/books/{id}/reviews",
		Summary:       "Review book",
		Description:   "Adds a review by the caller to the book",
		Tags:          []string{"Reviews"},
		DefaultStatus: http.StatusCreated,
		Security:      bearerAuth,
	}, s.handleCreateReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-review",
		Method:      http.MethodPatch,
		Path:        "/reviews/{id}",
		Summary:     "Edit review",
		Description: "Replaces the review's content. Only its author may do this.",
		Tags:        []string{"Reviews"},
		Security:    bearerAuth,
	}, s.handleUpdateReview)

	huma.Register(s.api, huma.Operation{
		OperationID:   "delete-review",
		Method:        http.MethodDelete,
		Path:          "/reviews/{id}",
		Summary:       "Delete review",
		Description:   "Deletes the review with its comments. Only its author may do this.",
		Tags:          []string{"Reviews"},
		DefaultStatus: http.StatusNoContent,
		Security:      bearerAuth,
	}, s.handleDeleteReview)

	huma.Register(s.api, huma.Operation{
		OperationID:   "create-comment",
		Method:        http.MethodPost,
		Path:          "/reviews/{id}/comments",
		Summary:       "Comment on review",
		Description:   "Adds a comment by the caller to the review",
		Tags:          []string{"Comments"},
		DefaultStatus: http.StatusCreated,
		Security:      bearerAuth,
	}, s.handleCreateComment)

	huma.Register(s.api, huma.Operation{
		OperationID:   "delete-comment",
		Method:        http.MethodDelete,
		Path:          "/comments/{id}",
		Summary:       "Delete comment",
		Description:   "Deletes the comment. Only its author may do this.",
		Tags:          []string{"Comments"},
		DefaultStatus: http.StatusNoContent,
		Security:      bearerAuth,
	}, s.handleDeleteComment)
}

// === DTOs ===

// ContentBody is the text of a review or comment.
type ContentBody struct {
	Content string `json:"content" doc:"Text; must not be blank"`
}

// CreateReviewInput wraps a new review for Huma.
type CreateReviewInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body ContentBody
}

// UpdateReviewInput wraps a review edit for Huma.
type UpdateReviewInput struct {
	ID   string `path:"id" doc:"Review ID"`
	Body ContentBody
}

// ReviewIDInput identifies a review by path.
type ReviewIDInput struct {
	ID string `path:"id" doc:"Review ID"`
}

// ReviewOutput wraps a review for Huma.
type ReviewOutput struct {
	Body *domain.Review
}

// CreateCommentInput wraps a new comment for Huma.
type CreateCommentInput struct {
	ID   string `path:"id" doc:"Review ID"`
	Body ContentBody
}

// CommentIDInput identifies a comment by path.
type CommentIDInput struct {
	ID string `path:"id" doc:"Comment ID"`
}

// CommentOutput wraps a comment and its book for Huma.
type CommentOutput struct {
	Body *service.CommentResult
}

// === Handlers ===

func (s *Server) handleCreateReview(ctx context.Context, input *CreateReviewInput) (*ReviewOutput, error) {
	review, err := s.services.Reviews.AddReview(ctx, auth.IdentityFromContext(ctx), input.ID,
		service.ReviewRequest{Content: input.Body.Content})
	if err != nil {
		return nil, s.toAPIError(err)
	}
	return &ReviewOutput{Body: review}, nil
}

func (s *Server) handleUpdateReview(ctx context.Context, input *UpdateReviewInput) (*ReviewOutput, error) {
	review, err := s.services.Reviews.UpdateReview(ctx, auth.IdentityFromContext(ctx), input.ID,
		service.ReviewRequest{Content: input.Body.Content})
	if err != nil {
		return nil, s.toAPIError(err)
	}
	return &ReviewOutput{Body: review}, nil
}

func (s *Server) handleDeleteReview(ctx context.Context, input *ReviewIDInput) (*struct{}, error) {
	if _, err := s.services.Reviews.DeleteReview(ctx, auth.IdentityFromContext(ctx), input.ID); err != nil {
		return nil, s.toAPIError(err)
	}
	return nil, nil
}

func (s *Server) handleCreateComment(ctx context.Context, input *CreateCommentInput) (*CommentOutput, error) {
	result, err := s.services.Comments.AddComment(ctx, auth.IdentityFromContext(ctx), input.ID,
		service.CommentRequest{Content: input.Body.Content})
	if err != nil {
		return nil, s.toAPIError(err)
	}
	return &CommentOutput{Body: result}, nil
}

func (s *Server) handleDeleteComment(ctx context.Context, input *CommentIDInput) (*struct{}, error) {
	if _, err := s.services.Comments.DeleteComment(ctx, auth.IdentityFromContext(ctx), input.ID); err != nil {
		return nil, s.toAPIError(err)
	}
	return nil, nil
}

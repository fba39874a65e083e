package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/listenupapp/bookclub-server/internal/auth"
	"github.com/listenupapp/bookclub-server/internal/service"
)

func bookPath(bookID string) string {
	return "/book/" + bookID
}

// POST /book/{bookID}/review
func (s *Server) handleAddReview(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")
	_, err := s.services.Reviews.AddReview(r.Context(), auth.IdentityFromContext(r.Context()), bookID, service.ReviewRequest{
		Content: r.PostFormValue("review_content"),
	})
	if err != nil {
		s.handleError(w, r, err, bookPath(bookID))
		return
	}
	s.redirect(w, r, bookPath(bookID), FlashSuccess, "Review added!")
}

// GET /review/{reviewID}/edit
func (s *Server) handleEditReviewForm(w http.ResponseWriter, r *http.Request) {
	review, err := s.services.Reviews.AuthorizeEdit(r.Context(), auth.IdentityFromContext(r.Context()), chi.URLParam(r, "reviewID"))
	if err != nil {
		s.handleError(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "review_edit.html", "Edit Review", review)
}

// POST /review/{reviewID}/edit
func (s *Server) handleEditReview(w http.ResponseWriter, r *http.Request) {
	reviewID := chi.URLParam(r, "reviewID")
	review, err := s.services.Reviews.UpdateReview(r.Context(), auth.IdentityFromContext(r.Context()), reviewID, service.ReviewRequest{
		Content: r.PostFormValue("review_content"),
	})
	if err != nil {
		s.handleError(w, r, err, "/review/"+reviewID+"/edit")
		return
	}
	s.redirect(w, r, bookPath(review.BookID), FlashSuccess, "Review updated!")
}

// GET /review/{reviewID}/delete
func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	review, err := s.services.Reviews.DeleteReview(r.Context(), auth.IdentityFromContext(r.Context()), chi.URLParam(r, "reviewID"))
	if err != nil {
		s.handleError(w, r, err, "")
		return
	}
	s.redirect(w, r, bookPath(review.BookID), FlashInfo, "Review deleted!")
}

// POST /review/{reviewID}/comment
func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	res, err := s.services.Comments.AddComment(r.Context(), auth.IdentityFromContext(r.Context()), chi.URLParam(r, "reviewID"), service.CommentRequest{
		Content: r.PostFormValue("comment_content"),
	})
	if err != nil {
		s.handleError(w, r, err, sameSiteReferer(r))
		return
	}
	s.redirect(w, r, bookPath(res.BookID), FlashSuccess, "Comment added!")
}

// GET /comment/{commentID}/delete
func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	res, err := s.services.Comments.DeleteComment(r.Context(), auth.IdentityFromContext(r.Context()), chi.URLParam(r, "commentID"))
	if err != nil {
		s.handleError(w, r, err, "")
		return
	}
	s.redirect(w, r, bookPath(res.BookID), FlashInfo, "Comment deleted!")
}

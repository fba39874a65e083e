package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/listenupapp/bookclub-server/internal/auth"
	"github.com/listenupapp/bookclub-server/internal/service"
)

// GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	books, err := s.services.Books.ListBooks(r.Context())
	if err != nil {
		s.handleError(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "index.html", "My Library", books)
}

// GET /add
func (s *Server) handleAddForm(w http.ResponseWriter, r *http.Request) {
	if !auth.IdentityFromContext(r.Context()).Authenticated() {
		s.redirect(w, r, "/login", FlashDanger, service.MsgBookLoginNeeded)
		return
	}
	s.render(w, r, http.StatusOK, "add.html", "Add Book", nil)
}

// POST /add
func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	_, err := s.services.Books.CreateBook(r.Context(), auth.IdentityFromContext(r.Context()), service.CreateBookRequest{
		Title:  r.PostFormValue("title"),
		Author: r.PostFormValue("author"),
		Rating: r.PostFormValue("rating"),
	})
	if err != nil {
		s.handleError(w, r, err, "/add")
		return
	}
	s.redirect(w, r, "/", FlashSuccess, "Book added successfully!")
}

// GET /edit/{bookID}
func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	book, err := s.services.Books.AuthorizeEdit(r.Context(), auth.IdentityFromContext(r.Context()), chi.URLParam(r, "bookID"))
	if err != nil {
		s.handleError(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "edit.html", "Edit Rating", book)
}

// POST /edit/{bookID}
func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")
	_, err := s.services.Books.UpdateRating(r.Context(), auth.IdentityFromContext(r.Context()), bookID, r.PostFormValue("rating"))
	if err != nil {
		s.handleError(w, r, err, "/edit/"+bookID)
		return
	}
	s.redirect(w, r, "/", FlashSuccess, "Book rating updated!")
}

// GET /delete/{bookID}
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	_, err := s.services.Books.DeleteBook(r.Context(), auth.IdentityFromContext(r.Context()), chi.URLParam(r, "bookID"))
	if err != nil {
		s.handleError(w, r, err, "")
		return
	}
	s.redirect(w, r, "/", FlashInfo, "Book deleted!")
}

// GET /book/{bookID}
func (s *Server) handleBookDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.services.Books.GetBookDetail(r.Context(), chi.URLParam(r, "bookID"))
	if err != nil {
		s.handleError(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "book_detail.html", detail.Book.Title, detail)
}

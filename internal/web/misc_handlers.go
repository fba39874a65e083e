package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/listenupapp/bookclub-server/internal/http/response"
	"github.com/listenupapp/bookclub-server/internal/search"
)

// searchPage is the data for the search results page.
type searchPage struct {
	Query  string
	Result *search.SearchResult
}

// GET /search?q=
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	result, err := s.services.Search.Search(r.Context(), search.SearchParams{Query: q, Offset: offset})
	if err != nil {
		s.handleError(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "search.html", "Search", searchPage{Query: q, Result: result})
}

// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", "error", err)
		response.JSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "unavailable",
			"database": "unreachable",
		}, s.logger)
		return
	}
	response.Success(w, map[string]string{
		"status":   "ok",
		"database": "ok",
	}, s.logger)
}

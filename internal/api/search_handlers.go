package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/bookclub-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search-books",
		Method:      http.MethodGet,
		Path:        "/search",
		Summary:     "Search books",
		Description: "Full-text search over titles and authors. An empty query returns no hits.",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// SearchInput holds the query parameters.
type SearchInput struct {
	Query  string `query:"q" doc:"Search terms"`
	Owner  string `query:"owner" doc:"Restrict to one owner's books (user ID)"`
	Limit  int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Page size"`
	Offset int    `query:"offset" default:"0" minimum:"0" doc:"Hits to skip"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body *search.SearchResult
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	result, err := s.services.Search.Search(ctx, search.SearchParams{
		Query:   input.Query,
		OwnerID: input.Owner,
		Limit:   input.Limit,
		Offset:  input.Offset,
	})
	if err != nil {
		return nil, s.toAPIError(err)
	}
	return &SearchOutput{Body: result}, nil
}

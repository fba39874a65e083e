package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/listenupapp/bookclub-server/internal/search"
	"github.com/listenupapp/bookclub-server/internal/store"
)

// SearchService searches the catalog through the in-memory index.
type SearchService struct {
	store  store.BookStore
	index  *search.SearchIndex
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(store store.BookStore, index *search.SearchIndex, logger *slog.Logger) *SearchService {
	return &SearchService{store: store, index: index, logger: loggerOrDefault(logger)}
}

// Search runs a catalog query. An empty query returns no hits.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return result, nil
}

// Reindex rebuilds the index from the store. Called at startup because the
// index lives only in memory.
func (s *SearchService) Reindex(ctx context.Context) error {
	start := time.Now()

	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return fmt.Errorf("list books: %w", err)
	}
	if err := s.index.Rebuild(ctx, books); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	s.logger.Info("search index rebuilt", "books", len(books), "duration", time.Since(start))
	return nil
}

package search

import "github.com/listenupapp/bookclub-server/internal/domain"

// BookDocument is the indexed form of a book.
type BookDocument struct {
	ID      string
	Title   string
	Author  string
	OwnerID string
	Rating  float64
}

// BookToDocument converts a domain book for indexing.
func BookToDocument(b *domain.Book) *BookDocument {
	return &BookDocument{
		ID:      b.ID,
		Title:   b.Title,
		Author:  b.Author,
		OwnerID: b.OwnerID,
		Rating:  b.Rating,
	}
}

// ToMap returns field names matching the index mapping.
func (d *BookDocument) ToMap() map[string]any {
	return map[string]any{
		"title":    d.Title,
		"author":   d.Author,
		"owner_id": d.OwnerID,
		"rating":   d.Rating,
	}
}

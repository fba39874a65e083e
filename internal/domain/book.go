package domain

import (
	"math"
	"strconv"
	"strings"

	"github.com/listenupapp/bookclub-server/internal/errors"
)

// Book is a catalog entry. Title is unique across the catalog.
type Book struct {
	Entity
	Title   string  `json:"title"`
	Author  string  `json:"author"`
	Rating  float64 `json:"rating"`
	OwnerID string  `json:"owner_id"`

	// OwnerName is the owning user's username, filled by read queries.
	OwnerName string `json:"owner_name,omitempty"`
}

// OwnerUserID implements Owned.
func (b *Book) OwnerUserID() string { return b.OwnerID }

// ParseRating parses a submitted rating. Any finite number is accepted;
// no range is enforced.
func ParseRating(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.Validation("Rating is required.")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Validationf("Rating must be a number, got %q.", raw)
	}
	return v, nil
}

// BookDetail is a book with its reviews, each carrying its comments.
// Reviews and comments are ordered oldest first.
type BookDetail struct {
	Book    *Book           `json:"book"`
	Reviews []*ReviewThread `json:"reviews"`
}

// ReviewThread pairs a review with its comments.
type ReviewThread struct {
	Review   *Review    `json:"review"`
	Comments []*Comment `json:"comments"`
}

// CascadeResult counts the dependent rows removed by a cascading delete.
type CascadeResult struct {
	Reviews  int `json:"reviews"`
	Comments int `json:"comments"`
}

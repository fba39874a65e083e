package domain

// Review is free text written by a user about a book.
type Review struct {
	Entity
	BookID   string `json:"book_id"`
	AuthorID string `json:"author_id"`
	Content  string `json:"content"`

	// AuthorName is filled by read queries.
	AuthorName string `json:"author_name,omitempty"`
}

// OwnerUserID implements Owned.
func (r *Review) OwnerUserID() string { return r.AuthorID }

// Comment is free text written by a user in reply to a review.
type Comment struct {
	Entity
	ReviewID string `json:"review_id"`
	AuthorID string `json:"author_id"`
	Content  string `json:"content"`

	// AuthorName is filled by read queries.
	AuthorName string `json:"author_name,omitempty"`
}

// OwnerUserID implements Owned.
func (c *Comment) OwnerUserID() string { return c.AuthorID }

package domain

// Profile is the signed-in user's own record with their activity.
type Profile struct {
	User         *User   `json:"user"`
	Books        []*Book `json:"books"`
	ReviewCount  int     `json:"review_count"`
	CommentCount int     `json:"comment_count"`
}

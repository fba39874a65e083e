package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// MaxFieldLength bounds usernames, emails, titles and author names.
const MaxFieldLength = 250

// User represents a registered account.
type User struct {
	Entity
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// UsernameKey returns the case-folded username used for uniqueness.
func (u *User) UsernameKey() string {
	return FoldKey(u.Username)
}

// EmailKey returns the case-folded email used for uniqueness and login lookup.
func (u *User) EmailKey() string {
	return FoldKey(u.Email)
}

// FoldKey normalizes s for case-insensitive comparison.
// Unicode case folding makes "Straße" and "STRASSE" collide, which ToLower does not.
func FoldKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

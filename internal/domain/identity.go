package domain

// Identity is the resolved requester for one request. The zero value is anonymous.
// Handlers build it from the session token and pass it to every service call.
type Identity struct {
	UserID    string
	Username  string
	SessionID string
}

// Anonymous returns the identity of a request without a valid session.
func Anonymous() Identity { return Identity{} }

// Authenticated reports whether the identity carries a user.
func (i Identity) Authenticated() bool { return i.UserID != "" }

// Owned is implemented by records that belong to exactly one user.
type Owned interface {
	OwnerUserID() string
}

// Owns reports whether the identity may mutate o. Ownership is the only
// authorization predicate; there are no roles.
func (i Identity) Owns(o Owned) bool {
	return i.Authenticated() && o.OwnerUserID() == i.UserID
}

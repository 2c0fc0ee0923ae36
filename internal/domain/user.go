package domain

import "time"

// User represents a registered author of the blog.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the authenticated subject of a request, as embedded in a
// session token. It mirrors the User it was issued for at issuance time;
// a later username change does not invalidate previously issued tokens.
type Identity struct {
	ID       int64
	Username string
}

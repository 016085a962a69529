// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered user account as stored in the database.
//
// WHY PasswordHash `json:"-"`?
// The hash must never appear in an HTTP response, even by accident. The `-`
// tag makes encoding/json skip the field entirely, so serialising a User
// directly can't leak it. Outward-facing code should still go through
// PublicProfile (via Public()) — the projection is the contract, the tag is
// a second line of defence.
//
// Username and email each carry a UNIQUE constraint in the store; the ID is
// assigned by the database on insert and never changes. There is no update
// path in the current API, so UpdatedAt equals CreatedAt for every row —
// the column is reserved for when one is added.
type User struct {
	ID           int64     `json:"id"        db:"id"`
	Username     string    `json:"username"  db:"username"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// PublicProfile is the sanitized view of a User that crosses the trust
// boundary: id, username, email and creation time, nothing else.
// It is derived only from a persisted User — never built from request input.
type PublicProfile struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public returns the redacted projection of the user.
func (u *User) Public() *PublicProfile {
	return &PublicProfile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

package models

import "time"

// User identifies an authenticated account. Authentication itself is handled
// upstream; the service only needs the identifier.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

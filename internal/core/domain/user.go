package domain

import "time"

// User mirrors the persisted representation in the users table.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLogin    *time.Time
}

// Sanitized returns a copy of the user with credential material removed.
func (u User) Sanitized() User {
	copy := u
	copy.PasswordHash = ""
	return copy
}

// PasswordHistoryEntry tracks a historical password hash for reuse prevention.
// Entries are append-only; eviction always removes the oldest entries first.
type PasswordHistoryEntry struct {
	ID           string
	UserID       string
	PasswordHash string
	CreatedAt    time.Time
}

package domain

import "time"

// UserRegisteredEvent represents the payload for content.user.registered messages.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Username     string
	Email        string
	RegisteredAt time.Time
	Metadata     map[string]any
}

// PasswordChangedEvent represents the payload for content.user.password_changed messages.
type PasswordChangedEvent struct {
	EventID   string
	UserID    string
	ChangedAt time.Time
	Metadata  map[string]any
}

// PostEvent represents the payload for content.post.* lifecycle messages.
type PostEvent struct {
	EventID    string
	PostID     string
	UserID     string
	IsPublic   bool
	OccurredAt time.Time
	Metadata   map[string]any
}

package domain

import "time"

// MaxPostContentLength bounds the length of post content in characters.
const MaxPostContentLength = 2000

// Post mirrors the persisted representation in the posts table.
// UserID is fixed at creation and never changes afterwards.
type Post struct {
	ID        string
	UserID    string
	Content   string
	IsPublic  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VisibleTo reports whether the post can be read by the given user.
// Public posts are visible to anyone, including anonymous callers
// (empty requesterID). Private posts are visible to the owner only.
func (p Post) VisibleTo(requesterID string) bool {
	if p.IsPublic {
		return true
	}
	if requesterID == "" {
		return false
	}
	return p.UserID == requesterID
}

// MutableBy reports whether the given user may update or delete the post.
func (p Post) MutableBy(requesterID string) bool {
	if requesterID == "" {
		return false
	}
	return p.UserID == requesterID
}

// ValidPostContent reports whether content satisfies the length bounds.
func ValidPostContent(content string) bool {
	if content == "" {
		return false
	}
	return len([]rune(content)) <= MaxPostContentLength
}

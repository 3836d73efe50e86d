package port

import (
	"context"

	"github.com/arklim/social-platform-content/internal/core/domain"
)

// PasswordHistoryRepository exposes persistence behavior for retained
// password hashes. Entries are immutable once written; the repository
// never enforces the retention cap itself; callers fetch and trim.
type PasswordHistoryRepository interface {
	Append(ctx context.Context, entry domain.PasswordHistoryEntry) error
	RecentByUser(ctx context.Context, userID string, limit int) ([]domain.PasswordHistoryEntry, error)
	AllByUser(ctx context.Context, userID string) ([]domain.PasswordHistoryEntry, error)
	DeleteMany(ctx context.Context, entries []domain.PasswordHistoryEntry) error
}

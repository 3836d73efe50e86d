package port

import (
	"context"

	"github.com/arklim/social-platform-content/internal/core/domain"
)

// PageRequest captures limit/offset pagination for listing queries.
type PageRequest struct {
	Limit  int
	Offset int
}

// PostRepository exposes persistence behavior for posts.
// All listing queries return posts ordered newest-first.
type PostRepository interface {
	Create(ctx context.Context, post domain.Post) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	ListPublic(ctx context.Context, page PageRequest) ([]domain.Post, error)
	ListByOwner(ctx context.Context, ownerID string, page PageRequest) ([]domain.Post, error)
	ListVisibleTo(ctx context.Context, ownerID string, page PageRequest) ([]domain.Post, error)
	Update(ctx context.Context, post domain.Post) error
	Delete(ctx context.Context, id string) error
	CountByOwner(ctx context.Context, ownerID string) (int, error)
}

package port

import (
	"context"

	"github.com/arklim/social-platform-content/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
	PublishPostCreated(ctx context.Context, event domain.PostEvent) error
	PublishPostUpdated(ctx context.Context, event domain.PostEvent) error
	PublishPostDeleted(ctx context.Context, event domain.PostEvent) error
}

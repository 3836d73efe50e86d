package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-content/internal/core/domain"
	"github.com/arklim/social-platform-content/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

func postEventFields(event domain.PostEvent) map[string]any {
	return map[string]any{
		"post_id":     event.PostID,
		"user_id":     event.UserID,
		"is_public":   event.IsPublic,
		"occurred_at": event.OccurredAt,
		"metadata":    event.Metadata,
	}
}

// PublishUserRegistered logs content.user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	payload := map[string]any{
		"user_id":       event.UserID,
		"username":      event.Username,
		"email":         event.Email,
		"registered_at": event.RegisteredAt,
		"metadata":      event.Metadata,
	}
	p.logEvent("user.registered", event.UserID, event.RegisteredAt, payload)
	return nil
}

// PublishPasswordChanged logs content.user.password_changed events.
func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"changed_at": event.ChangedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent("user.password_changed", event.UserID, event.ChangedAt, payload)
	return nil
}

// PublishPostCreated logs content.post.created events.
func (p *StubPublisher) PublishPostCreated(_ context.Context, event domain.PostEvent) error {
	p.logEvent("post.created", event.UserID, event.OccurredAt, postEventFields(event))
	return nil
}

// PublishPostUpdated logs content.post.updated events.
func (p *StubPublisher) PublishPostUpdated(_ context.Context, event domain.PostEvent) error {
	p.logEvent("post.updated", event.UserID, event.OccurredAt, postEventFields(event))
	return nil
}

// PublishPostDeleted logs content.post.deleted events.
func (p *StubPublisher) PublishPostDeleted(_ context.Context, event domain.PostEvent) error {
	p.logEvent("post.deleted", event.UserID, event.OccurredAt, postEventFields(event))
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)

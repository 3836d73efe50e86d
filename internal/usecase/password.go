package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-content/internal/core/domain"
	"github.com/arklim/social-platform-content/internal/core/port"
	"github.com/arklim/social-platform-content/internal/repository"
)

const defaultPasswordHistoryEntries = 3

var (
	// ErrUserNotFound indicates the target account does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrIncorrectCurrentPassword indicates the supplied current password does not match.
	ErrIncorrectCurrentPassword = errors.New("current password is incorrect")
	// ErrPasswordReused indicates the new password matches a recently used one.
	ErrPasswordReused = errors.New("password was used recently")
)

// PasswordService rotates account passwords and maintains the bounded
// reuse history.
type PasswordService struct {
	uow          port.UnitOfWork
	hasher       port.PasswordHasher
	policy       port.PasswordPolicy
	events       port.EventPublisher
	logger       *zap.Logger
	now          func() time.Time
	historyLimit int
}

// NewPasswordService constructs a PasswordService instance.
func NewPasswordService(
	uow port.UnitOfWork,
	hasher port.PasswordHasher,
	policy port.PasswordPolicy,
	events port.EventPublisher,
	log *zap.Logger,
) *PasswordService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PasswordService{
		uow:          uow,
		hasher:       hasher,
		policy:       policy,
		events:       events,
		logger:       log,
		now:          time.Now,
		historyLimit: defaultPasswordHistoryEntries,
	}
}

// WithClock overrides the time source. Used by tests.
func (s *PasswordService) WithClock(now func() time.Time) *PasswordService {
	s.now = now
	return s
}

// ChangePassword rotates the account password after validating the new
// secret, the account, the current credential, and the reuse window,
// in that order. The password update, history append, and trim commit
// as one transaction; the user row stays locked throughout, so
// concurrent changes for the same account serialize.
func (s *PasswordService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if userID == "" {
		return ErrUserNotFound
	}

	if err := s.policy.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	changedAt := s.now().UTC()

	err := s.uow.Execute(ctx, func(repos port.TxRepositories) error {
		user, err := repos.Users.GetForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}

		ok, err := s.hasher.Verify(currentPassword, user.PasswordHash)
		if err != nil {
			return fmt.Errorf("verify current password: %w", err)
		}
		if !ok {
			return ErrIncorrectCurrentPassword
		}

		recent, err := repos.History.RecentByUser(ctx, user.ID, s.historyLimit)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		for _, entry := range recent {
			reused, verr := s.hasher.Verify(newPassword, entry.PasswordHash)
			if verr != nil {
				return fmt.Errorf("compare password history: %w", verr)
			}
			if reused {
				return ErrPasswordReused
			}
		}

		newHash, err := s.hasher.Hash(newPassword)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		if err := repos.Users.UpdatePassword(ctx, user.ID, newHash, changedAt); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}

		entry := domain.PasswordHistoryEntry{
			ID:           uuid.NewString(),
			UserID:       user.ID,
			PasswordHash: newHash,
			CreatedAt:    changedAt,
		}
		if err := repos.History.Append(ctx, entry); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}

		all, err := repos.History.AllByUser(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		if len(all) > s.historyLimit {
			if err := repos.History.DeleteMany(ctx, all[s.historyLimit:]); err != nil {
				return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	if s.events != nil {
		event := domain.PasswordChangedEvent{
			EventID:   uuid.NewString(),
			UserID:    userID,
			ChangedAt: changedAt,
		}
		if err := s.events.PublishPasswordChanged(ctx, event); err != nil {
			s.logger.Warn("publish password changed event",
				zap.String("user_id", userID),
				zap.Error(err))
		}
	}

	return nil
}

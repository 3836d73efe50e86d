package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-content/internal/core/domain"
	"github.com/arklim/social-platform-content/internal/core/port"
	"github.com/arklim/social-platform-content/internal/infra/logger"
	"github.com/arklim/social-platform-content/internal/repository"
)

var (
	// ErrDuplicateUsername indicates the requested username is already taken.
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrDuplicateEmail indicates the requested email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrWeakPassword indicates the password does not satisfy complexity requirements.
	ErrWeakPassword = errors.New("password does not meet complexity requirements")
	// ErrInvalidCredentials indicates the provided identifier or password are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the presented access token is not acceptable.
	ErrInvalidToken = errors.New("invalid token")
	// ErrStorageUnavailable indicates the persistence layer failed to serve the request.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// AuthResult carries the outcome of a successful login.
type AuthResult struct {
	User        domain.User
	AccessToken string
	ExpiresAt   time.Time
}

// AuthService coordinates registration and authentication flows.
type AuthService struct {
	users   port.UserRepository
	history port.PasswordHistoryRepository
	hasher  port.PasswordHasher
	policy  port.PasswordPolicy
	tokens  port.TokenService
	events  port.EventPublisher
	logger  *zap.Logger
	now     func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(
	users port.UserRepository,
	history port.PasswordHistoryRepository,
	hasher port.PasswordHasher,
	policy port.PasswordPolicy,
	tokens port.TokenService,
	events port.EventPublisher,
	log *zap.Logger,
) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		users:   users,
		history: history,
		hasher:  hasher,
		policy:  policy,
		tokens:  tokens,
		events:  events,
		logger:  log,
		now:     time.Now,
	}
}

// WithClock overrides the time source. Used by tests.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Register creates a new account. Uniqueness is checked before the
// password policy, username before email, so callers observe a stable
// failure order.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return domain.User{}, fmt.Errorf("username is required")
	}
	if email == "" {
		return domain.User{}, fmt.Errorf("email is required")
	}

	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if taken {
		return domain.User{}, ErrDuplicateUsername
	}

	registered, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if registered {
		return domain.User{}, ErrDuplicateEmail
	}

	if err := s.policy.Validate(password); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return domain.User{}, ErrDuplicateUsername
		case errors.Is(err, repository.ErrDuplicateEmail):
			return domain.User{}, ErrDuplicateEmail
		}
		return domain.User{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	// Seed history with the initial hash so the reuse window always
	// covers the active password.
	entry := domain.PasswordHistoryEntry{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}
	if err := s.history.Append(ctx, entry); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if s.events != nil {
		event := domain.UserRegisteredEvent{
			EventID:      uuid.NewString(),
			UserID:       user.ID,
			Username:     user.Username,
			Email:        user.Email,
			RegisteredAt: now,
		}
		if err := s.events.PublishUserRegistered(ctx, event); err != nil {
			s.logger.Warn("publish user registered event",
				zap.String("user_id", user.ID),
				zap.Error(err))
		}
	}

	return user.Sanitized(), nil
}

// Login validates credentials by username or email and issues an
// access token. Unknown identifiers and wrong passwords produce the
// same failure.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (AuthResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return AuthResult{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.Username)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}

	loginAt := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, loginAt); err != nil {
		s.logger.Warn("stamp last login",
			zap.String("user_id", user.ID),
			zap.Error(err))
	} else {
		user.LastLogin = &loginAt
	}

	s.logger.Info("user authenticated",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(user.Email)))

	return AuthResult{
		User:        user.Sanitized(),
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}

// Identify resolves a bearer token to the account it was issued for.
// Any verification failure, including a subject that no longer exists,
// maps to ErrInvalidToken.
func (s *AuthService) Identify(ctx context.Context, token string) (domain.User, error) {
	subject, err := s.tokens.Verify(token)
	if err != nil {
		return domain.User{}, ErrInvalidToken
	}

	user, err := s.users.GetByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrInvalidToken
		}
		return domain.User{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	return user.Sanitized(), nil
}

package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/arklim/social-platform-content/internal/core/domain"
	"github.com/arklim/social-platform-content/internal/infra/security"
)

const strongPassword = "Valid1!2"

func newAuthService(t *testing.T, users *memUserRepository, history *memHistoryRepository, publisher *recordingPublisher) *AuthService {
	t.Helper()
	return NewAuthService(
		users,
		history,
		&fakeHasher{},
		security.DefaultPasswordValidator(),
		&stubTokenService{},
		publisher,
		zaptest.NewLogger(t),
	)
}

func existingUser() domain.User {
	return domain.User{
		ID:           "user-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "h:" + strongPassword,
		CreatedAt:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRegisterSuccess(t *testing.T) {
	users := newMemUserRepository()
	history := &memHistoryRepository{}
	publisher := &recordingPublisher{}
	svc := newAuthService(t, users, history, publisher)

	user, err := svc.Register(context.Background(), "bob", "bob@example.com", strongPassword)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if user.ID == "" {
		t.Fatal("expected generated user id")
	}
	if user.PasswordHash != "" {
		t.Fatal("returned user must not carry the password hash")
	}

	stored, ok := users.users[user.ID]
	if !ok {
		t.Fatal("user was not persisted")
	}
	if stored.PasswordHash != "h:"+strongPassword {
		t.Fatalf("unexpected stored hash: %s", stored.PasswordHash)
	}

	entries, _ := history.AllByUser(context.Background(), user.ID)
	if len(entries) != 1 {
		t.Fatalf("expected 1 seeded history entry, got %d", len(entries))
	}
	if entries[0].PasswordHash != stored.PasswordHash {
		t.Fatal("seeded history entry must carry the active hash")
	}

	if len(publisher.registered) != 1 {
		t.Fatalf("expected 1 registered event, got %d", len(publisher.registered))
	}
}

func TestRegisterDuplicateChecksOrdered(t *testing.T) {
	users := newMemUserRepository(existingUser())
	svc := newAuthService(t, users, &memHistoryRepository{}, &recordingPublisher{})

	// Username collision wins even when the email is also taken and the
	// password is weak.
	_, err := svc.Register(context.Background(), "alice", "alice@example.com", "weak")
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}

	_, err = svc.Register(context.Background(), "fresh", "alice@example.com", "weak")
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	_, err = svc.Register(context.Background(), "fresh", "fresh@example.com", "weak")
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestRegisterWeakPasswordVariants(t *testing.T) {
	svc := newAuthService(t, newMemUserRepository(), &memHistoryRepository{}, &recordingPublisher{})

	for _, password := range []string{
		"Short1!",     // too short
		"UPPERCASE1!", // no lowercase
		"lowercase1!", // no uppercase
		"NoDigits!!",  // no digit
		"NoSpecial11", // no special character
	} {
		if _, err := svc.Register(context.Background(), "bob", "bob@example.com", password); !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("expected ErrWeakPassword for %q, got %v", password, err)
		}
	}
}

func TestRegisterStorageFailure(t *testing.T) {
	users := newMemUserRepository()
	users.existsErr = errBoom
	svc := newAuthService(t, users, &memHistoryRepository{}, &recordingPublisher{})

	_, err := svc.Register(context.Background(), "bob", "bob@example.com", strongPassword)
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestLoginByUsernameAndEmail(t *testing.T) {
	users := newMemUserRepository(existingUser())
	svc := newAuthService(t, users, &memHistoryRepository{}, &recordingPublisher{})

	for _, identifier := range []string{"alice", "alice@example.com"} {
		result, err := svc.Login(context.Background(), identifier, strongPassword)
		if err != nil {
			t.Fatalf("Login(%q) returned error: %v", identifier, err)
		}
		if result.AccessToken != "token:alice" {
			t.Fatalf("unexpected token: %s", result.AccessToken)
		}
		if result.User.PasswordHash != "" {
			t.Fatal("login result must not carry the password hash")
		}
		if result.User.LastLogin == nil {
			t.Fatal("expected last login to be stamped")
		}
	}

	if users.users["user-1"].LastLogin == nil {
		t.Fatal("expected persisted last login stamp")
	}
}

func TestLoginUniformFailure(t *testing.T) {
	users := newMemUserRepository(existingUser())
	svc := newAuthService(t, users, &memHistoryRepository{}, &recordingPublisher{})

	// Unknown identifier and wrong password are indistinguishable.
	_, unknownErr := svc.Login(context.Background(), "nobody", strongPassword)
	_, wrongErr := svc.Login(context.Background(), "alice", "Wrong1!pass")

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", unknownErr)
	}
	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("failure messages must match: %q vs %q", unknownErr, wrongErr)
	}
}

func TestLoginEmptyInput(t *testing.T) {
	svc := newAuthService(t, newMemUserRepository(), &memHistoryRepository{}, &recordingPublisher{})

	if _, err := svc.Login(context.Background(), "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestIdentify(t *testing.T) {
	users := newMemUserRepository(existingUser())
	svc := newAuthService(t, users, &memHistoryRepository{}, &recordingPublisher{})

	user, err := svc.Identify(context.Background(), "token:alice")
	if err != nil {
		t.Fatalf("Identify returned error: %v", err)
	}
	if user.ID != "user-1" {
		t.Fatalf("unexpected user: %s", user.ID)
	}
	if user.PasswordHash != "" {
		t.Fatal("identified user must not carry the password hash")
	}

	if _, err := svc.Identify(context.Background(), "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for malformed token, got %v", err)
	}

	// Subject no longer resolvable maps to the same failure.
	if _, err := svc.Identify(context.Background(), "token:ghost"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for unknown subject, got %v", err)
	}
}

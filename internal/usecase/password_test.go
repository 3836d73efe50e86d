package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/arklim/social-platform-content/internal/core/domain"
	"github.com/arklim/social-platform-content/internal/infra/security"
)

type passwordFixture struct {
	svc     *PasswordService
	users   *memUserRepository
	history *memHistoryRepository
	uow     *fakeUnitOfWork
	events  *recordingPublisher
	clock   time.Time
}

func newPasswordFixture(t *testing.T) *passwordFixture {
	t.Helper()

	user := existingUser()
	users := newMemUserRepository(user)
	history := &memHistoryRepository{}
	history.entries = append(history.entries, domain.PasswordHistoryEntry{
		ID:           "hist-0",
		UserID:       user.ID,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	})

	uow := &fakeUnitOfWork{users: users, history: history}
	events := &recordingPublisher{}

	fixture := &passwordFixture{
		users:   users,
		history: history,
		uow:     uow,
		events:  events,
		clock:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}

	fixture.svc = NewPasswordService(
		uow,
		&fakeHasher{},
		security.DefaultPasswordValidator(),
		events,
		zaptest.NewLogger(t),
	).WithClock(func() time.Time {
		fixture.clock = fixture.clock.Add(time.Minute)
		return fixture.clock
	})

	return fixture
}

func TestChangePasswordSuccess(t *testing.T) {
	f := newPasswordFixture(t)

	err := f.svc.ChangePassword(context.Background(), "user-1", strongPassword, "NewPass1!")
	if err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}

	if f.users.users["user-1"].PasswordHash != "h:NewPass1!" {
		t.Fatalf("password hash was not rotated: %s", f.users.users["user-1"].PasswordHash)
	}

	entries, _ := f.history.AllByUser(context.Background(), "user-1")
	if len(entries) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(entries))
	}
	if entries[0].PasswordHash != "h:NewPass1!" {
		t.Fatal("newest history entry must carry the new hash")
	}

	if len(f.users.getForUpdateIDs) == 0 {
		t.Fatal("expected the user row to be read under lock")
	}

	if len(f.events.passwordChanged) != 1 {
		t.Fatalf("expected 1 password changed event, got %d", len(f.events.passwordChanged))
	}
}

func TestChangePasswordFailureOrder(t *testing.T) {
	f := newPasswordFixture(t)

	// Weak new password is rejected before anything else is touched.
	err := f.svc.ChangePassword(context.Background(), "ghost", "whatever", "weak")
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if f.uow.calls != 0 {
		t.Fatal("weak password must fail before the transaction starts")
	}

	// Unknown account beats incorrect current password.
	err = f.svc.ChangePassword(context.Background(), "ghost", "Wrong1!pw", "NewPass1!")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	// Incorrect current password beats reuse.
	err = f.svc.ChangePassword(context.Background(), "user-1", "Wrong1!pw", strongPassword)
	if !errors.Is(err, ErrIncorrectCurrentPassword) {
		t.Fatalf("expected ErrIncorrectCurrentPassword, got %v", err)
	}

	// Reusing the current password fails last.
	err = f.svc.ChangePassword(context.Background(), "user-1", strongPassword, strongPassword)
	if !errors.Is(err, ErrPasswordReused) {
		t.Fatalf("expected ErrPasswordReused, got %v", err)
	}
}

func TestChangePasswordReuseWindow(t *testing.T) {
	f := newPasswordFixture(t)

	// Rotate twice so the window holds the original plus two successors.
	if err := f.svc.ChangePassword(context.Background(), "user-1", strongPassword, "Second2@x"); err != nil {
		t.Fatalf("first rotation failed: %v", err)
	}
	if err := f.svc.ChangePassword(context.Background(), "user-1", "Second2@x", "Third3#yz"); err != nil {
		t.Fatalf("second rotation failed: %v", err)
	}

	// All three retained passwords are rejected.
	for _, reused := range []string{strongPassword, "Second2@x", "Third3#yz"} {
		err := f.svc.ChangePassword(context.Background(), "user-1", "Third3#yz", reused)
		if !errors.Is(err, ErrPasswordReused) {
			t.Fatalf("expected ErrPasswordReused for %q, got %v", reused, err)
		}
	}
}

func TestChangePasswordHistoryCapAndEviction(t *testing.T) {
	f := newPasswordFixture(t)

	// Four rotations: the history must never exceed three entries at
	// rest and must evict oldest-first.
	passwords := []string{"Second2@x", "Third3#yz", "Fourth4$ab", "Fifth5%cd"}
	current := strongPassword
	for _, next := range passwords {
		if err := f.svc.ChangePassword(context.Background(), "user-1", current, next); err != nil {
			t.Fatalf("rotation to %q failed: %v", next, err)
		}
		current = next

		entries, _ := f.history.AllByUser(context.Background(), "user-1")
		if len(entries) > defaultPasswordHistoryEntries {
			t.Fatalf("history exceeded cap: %d entries", len(entries))
		}
	}

	entries, _ := f.history.AllByUser(context.Background(), "user-1")
	if len(entries) != defaultPasswordHistoryEntries {
		t.Fatalf("expected %d entries, got %d", defaultPasswordHistoryEntries, len(entries))
	}
	for i, expected := range []string{"h:Fifth5%cd", "h:Fourth4$ab", "h:Third3#yz"} {
		if entries[i].PasswordHash != expected {
			t.Fatalf("entry %d: expected %s, got %s", i, expected, entries[i].PasswordHash)
		}
	}

	// The evicted original password becomes acceptable again.
	if err := f.svc.ChangePassword(context.Background(), "user-1", "Fifth5%cd", strongPassword); err != nil {
		t.Fatalf("expected evicted password to be reusable, got %v", err)
	}
}

func TestChangePasswordStorageFailureAborts(t *testing.T) {
	f := newPasswordFixture(t)
	f.history.appendErr = fmt.Errorf("append failed")

	err := f.svc.ChangePassword(context.Background(), "user-1", strongPassword, "NewPass1!")
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}

	if len(f.events.passwordChanged) != 0 {
		t.Fatal("no event may be published when the transaction fails")
	}
}

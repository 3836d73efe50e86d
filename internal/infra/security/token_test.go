package security

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestTokenService(t *testing.T, ttl time.Duration) *TokenService {
	t.Helper()

	provider, err := NewGeneratedKeyProvider("test-key")
	if err != nil {
		t.Fatalf("NewGeneratedKeyProvider returned error: %v", err)
	}

	svc, err := NewTokenService(provider, "test-key", "content-platform", ttl)
	if err != nil {
		t.Fatalf("NewTokenService returned error: %v", err)
	}

	return svc
}

func TestTokenServiceIssueAndVerify(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	token, expiresAt, err := svc.Issue("alice")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if token == "" {
		t.Fatal("Issue returned empty token")
	}
	if remaining := time.Until(expiresAt); remaining < 55*time.Minute {
		t.Fatalf("unexpected expiry: %v", expiresAt)
	}

	subject, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if subject != "alice" {
		t.Fatalf("expected subject alice, got %s", subject)
	}
}

func TestTokenServiceVerifyMalformed(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	for _, token := range []string{
		"",
		"garbage",
		"a.b.c",
	} {
		if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", token, err)
		}
	}
}

func TestTokenServiceVerifyTamperedToken(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	token, _, err := svc.Issue("alice")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", token)
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	if _, err := svc.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestTokenServiceVerifyForeignKey(t *testing.T) {
	issuerSvc := newTestTokenService(t, time.Hour)
	verifierSvc := newTestTokenService(t, time.Hour)

	token, _, err := issuerSvc.Issue("alice")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := verifierSvc.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for token signed by another key, got %v", err)
	}
}

func TestTokenServiceVerifyExpired(t *testing.T) {
	svc := newTestTokenService(t, time.Minute)

	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := issuedAt
	svc.WithClock(func() time.Time { return clock })

	token, expiresAt, err := svc.Issue("alice")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if !expiresAt.Equal(issuedAt.Add(time.Minute)) {
		t.Fatalf("unexpected expiry: %v", expiresAt)
	}

	if _, err := svc.Verify(token); err != nil {
		t.Fatalf("Verify returned error before expiry: %v", err)
	}

	clock = issuedAt.Add(2 * time.Minute)
	if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}
}

func TestTokenServiceVerifyWrongIssuer(t *testing.T) {
	provider, err := NewGeneratedKeyProvider("test-key")
	if err != nil {
		t.Fatalf("NewGeneratedKeyProvider returned error: %v", err)
	}

	issuerSvc, err := NewTokenService(provider, "test-key", "other-platform", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService returned error: %v", err)
	}
	verifierSvc, err := NewTokenService(provider, "test-key", "content-platform", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService returned error: %v", err)
	}

	token, _, err := issuerSvc.Issue("alice")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := verifierSvc.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong issuer, got %v", err)
	}
}

func TestTokenServiceVerifyUnsignedAlgorithm(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "alice",
		Issuer:    "content-platform",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	unsigned.Header["kid"] = svc.KID()

	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for alg=none token, got %v", err)
	}
}

func TestTokenServiceIssueEmptySubject(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	if _, _, err := svc.Issue("  "); err == nil {
		t.Fatal("expected error for blank subject")
	}
}

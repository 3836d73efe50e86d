package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"

	"github.com/arklim/social-platform-content/internal/core/port"
)

// ErrInvalidToken is returned by Verify for any token that cannot be
// accepted: malformed input, unknown key, bad signature, wrong issuer,
// or an expired or not-yet-valid claim set. The cause is deliberately
// not distinguished to callers.
var ErrInvalidToken = errors.New("invalid token")

const defaultAccessTokenTTL = 12 * time.Hour

// TokenService issues and verifies RS256-signed access tokens. The
// signing key is resolved once from the key provider at construction,
// so a misconfigured key surfaces at startup rather than on first use.
type TokenService struct {
	keyProvider KeyProvider
	kid         string
	issuer      string
	ttl         time.Duration
	now         func() time.Time
}

// NewTokenService constructs a TokenService bound to the provider's
// signing key under the given kid.
func NewTokenService(keyProvider KeyProvider, kid, issuer string, ttl time.Duration) (*TokenService, error) {
	if keyProvider == nil {
		return nil, errors.New("token: key provider is required")
	}
	kid = strings.TrimSpace(kid)
	if kid == "" {
		return nil, errors.New("token: kid is required")
	}
	issuer = strings.TrimSpace(issuer)
	if issuer == "" {
		return nil, errors.New("token: issuer is required")
	}
	if ttl <= 0 {
		ttl = defaultAccessTokenTTL
	}

	if _, err := keyProvider.GetSigningKey(); err != nil {
		return nil, fmt.Errorf("token: resolve signing key: %w", err)
	}

	return &TokenService{
		keyProvider: keyProvider,
		kid:         kid,
		issuer:      issuer,
		ttl:         ttl,
		now:         time.Now,
	}, nil
}

// WithClock overrides the time source. Used by tests to exercise expiry.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// KID returns the key identifier stamped into issued token headers.
func (s *TokenService) KID() string {
	return s.kid
}

// Issue signs a token carrying subject and returns it with its expiry.
func (s *TokenService) Issue(subject string) (string, time.Time, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", time.Time{}, errors.New("token: subject is required")
	}

	signingKey, err := s.keyProvider.GetSigningKey()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token: get signing key: %w", err)
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = s.kid

	signed, err := token.SignedString(signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token: sign: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify parses and validates the supplied token and returns its subject.
// Every rejection maps to ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (string, error) {
	if strings.TrimSpace(tokenString) == "" {
		return "", ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, s.verificationKey,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.now().UTC() }),
	)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return "", ErrInvalidToken
	}

	return subject, nil
}

func (s *TokenService) verificationKey(token *jwt.Token) (any, error) {
	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		return nil, ErrInvalidToken
	}

	key, err := s.keyProvider.GetVerificationKey(kid)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return key, nil
}

var _ port.TokenService = (*TokenService)(nil)

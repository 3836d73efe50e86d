package port

import "time"

// Argon2Params captures tunable parameters for the Argon2id hashing algorithm.
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// PasswordHasher hashes and verifies secrets using the configured algorithm.
// Verify reports false, not an error, for hashes it cannot decode.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password string, encoded string) (bool, error)
}

// PasswordPolicy enforces password strength requirements.
type PasswordPolicy interface {
	Validate(password string) error
}

// TokenService issues and verifies stateless bearer credentials.
// Verify returns the embedded subject, or a single uniform failure for
// any malformed, forged, or expired token.
type TokenService interface {
	Issue(subject string) (string, time.Time, error)
	Verify(token string) (string, error)
}

// Package auth — password hashing.
//
// bcrypt is deliberately slow and salts automatically: two users with
// the same password get different digests, and the salt plus cost are
// embedded in the output string, so the digest column is all the
// database needs to store.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor: 10 rounds, tunable via config.
// Raise it when production hardware makes 10 feel instant; lower values
// exist only for tests.
const defaultCost = 10

// PasswordService hashes and verifies passwords. It is a struct rather
// than free functions so the cost can be injected — tests use the
// bcrypt minimum to avoid paying the full work factor per case.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the given bcrypt
// cost; cost <= 0 selects the default.
func NewPasswordService(cost int) *PasswordService {
	if cost <= 0 {
		cost = defaultCost
	}
	return &PasswordService{cost: cost}
}

// NewPasswordServiceForTest creates a PasswordService with bcrypt's
// minimum cost. Not for production use.
func NewPasswordServiceForTest() *PasswordService {
	return &PasswordService{cost: bcrypt.MinCost}
}

// Hash hashes a plaintext password. The returned string is
// self-contained (version, cost, salt, digest) and stores directly.
//
// bcrypt silently truncates inputs beyond 72 bytes, so those are
// rejected explicitly instead.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks a plaintext password against a stored digest. Returns
// nil on match. The comparison is constant-time inside bcrypt.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: invalid password")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}

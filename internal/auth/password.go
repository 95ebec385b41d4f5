package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned by Verify when the password is wrong.
var ErrPasswordMismatch = errors.New("auth: password does not match")

// ErrPasswordTooLong is returned by Hash for passwords bcrypt would truncate.
var ErrPasswordTooLong = errors.New("auth: password must be 72 bytes or fewer")

// defaultCost is the bcrypt work factor used in production.
//
// Each increment doubles the hashing time. 12 lands around 250ms on current
// server hardware, which a login can afford and a brute-force run cannot.
const defaultCost = 12

// PasswordHasher hashes and checks passwords with bcrypt.
//
// The stored value is the full bcrypt string, e.g.
//
//	$2a$12$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy
//
// which carries its own random salt and cost, so no other column is needed.
// Two users with the same password get different hashes.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher using the default cost.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cost: defaultCost}
}

// NewPasswordHasherWithCost returns a hasher with a custom cost. Tests in
// other packages pass bcrypt.MinCost to keep each hash under a millisecond.
func NewPasswordHasherWithCost(cost int) *PasswordHasher {
	return &PasswordHasher{cost: cost}
}

// Hash returns the salted bcrypt hash of plaintext.
func (p *PasswordHasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", ErrPasswordTooLong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches hash. A wrong password yields
// ErrPasswordMismatch; a malformed hash yields a different error.
//
// The comparison is constant-time.
func (p *PasswordHasher) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}

// Package auth handles who a request belongs to and what it may do.
//
// SESSION FLOW:
//  1. The user logs in (password or GitHub) and the server issues a signed
//     session token (JWT, HS256) naming the user id in the "sub" claim.
//  2. The token is stored in an HttpOnly cookie named "session".
//  3. On every request the Session middleware validates the cookie, loads the
//     user from storage and puts it in the request context.
//  4. Logout clears the cookie.
//
// Loading the user on every request means a deleted account stops working
// immediately even though its token is still within its lifetime.
//
// ACCESS RULES:
// Guards (guard.go) are small checks composed per route in a declared order.
// The first one that refuses ends the request.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

const issuer = "bloghub"

// DefaultSessionTTL is the session lifetime when none is configured.
const DefaultSessionTTL = 24 * time.Hour

// ErrTokenExpired is returned by Validate for a well-formed token past its expiry.
var ErrTokenExpired = errors.New("auth: token expired")

// TokenService signs and verifies session tokens with an HMAC secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService. secret must be at least 16
// characters; ttl <= 0 selects DefaultSessionTTL.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL is how long issued tokens stay valid. The session cookie uses the same value.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Generate issues a token for userID with the configured lifetime.
func (s *TokenService) Generate(userID int64) (string, error) {
	return s.GenerateWithDuration(userID, s.ttl)
}

// GenerateWithDuration issues a token that expires after d. A negative d
// produces an already expired token, which tests use.
func (s *TokenService) GenerateWithDuration(userID int64, d time.Duration) (string, error) {
	now := time.Now()

	c := jwt.RegisteredClaims{
		ID:        xid.New().String(),
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(d)),
		Issuer:    issuer,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature, algorithm, issuer and expiry, and returns the
// user id carried in "sub".
//
// WithValidMethods pins HS256 so a token claiming "none" or an asymmetric
// algorithm is rejected before the key is used.
func (s *TokenService) Validate(tokenStr string) (int64, error) {
	var c jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&c,
		func(token *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, fmt.Errorf("auth: invalid token: %w", err)
	}
	if !token.Valid {
		return 0, errors.New("auth: invalid token")
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("auth: token subject %q is not a user id", c.Subject)
	}
	return userID, nil
}

// Package auth provides JWT issuance/validation, bcrypt password
// hashing, and the HTTP middleware that guards protected routes.
//
// AUTHENTICATION FLOW:
//  1. POST /api/auth/register → bcrypt-hash the password, store the user
//  2. POST /api/auth/login → verify the hash, issue a signed JWT
//  3. The JWT travels back as an HttpOnly cookie AND in the JSON body
//     (cookie for the browser client, body for bearer-header clients)
//  4. On protected calls, middleware extracts the token (cookie first,
//     Authorization header as fallback), validates it, and puts the
//     userID in the request context
//
// The token is entirely self-contained: userID in the "sub" claim plus
// an expiry, signed with an HMAC secret. No server-side session store
// exists, which also means logout can only clear the cookie — a copy of
// the token presented as a bearer header stays valid until it expires.
// That is a documented property of the design, not an oversight.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the token lifetime used when no explicit TTL is
// configured: 7 days, matching how long the client keeps the cookie.
const DefaultTokenTTL = 7 * 24 * time.Hour

const issuer = "inkpad"

// TokenService signs and verifies JWTs with a shared HMAC secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService. The secret must be at least
// 16 characters; ttl <= 0 falls back to DefaultTokenTTL.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// claims embeds jwt.RegisteredClaims; the user id lives in the standard
// "sub" (Subject) claim.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a token for the given userID using the
// configured lifetime.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, s.ttl)
}

// GenerateWithDuration creates a token with an explicit lifetime.
// Exported mainly so tests can mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns the userID it
// encodes.
//
// The parser pins the algorithm to HS256 (rejecting algorithm-confusion
// tokens), requires an expiry, and checks the issuer, so a token minted
// by anything other than this service's secret fails here.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}

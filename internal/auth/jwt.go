// Package auth provides password hashing and JWT session tokens for the
// account service.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. POST /users/register → account is created with a bcrypt password hash
// 2. POST /users/login → credentials verified, server issues a signed JWT
// 3. Client sends the JWT on later calls: Authorization: Bearer <token>
// 4. Middleware validates the JWT and puts the identity in the request context
//
// WHY JWT?
// JWT is stateless — the server doesn't store session data. Everything needed
// (user ID, username, expiry) is inside the signed token, and the HMAC
// signature makes it tamper-evident. Verification needs no DB lookup, just
// the secret.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

// tokenTTL is the fixed session lifetime. After 7 days the client must log
// in again; there is no refresh or revocation mechanism.
const tokenTTL = 7 * 24 * time.Hour

const issuer = "account-service"

// Identity is what a verified token resolves to: the subject user ID and
// the username captured at issuance time.
type Identity struct {
	UserID   int64
	Username string
}

// TokenService signs and verifies session tokens.
//
// It holds the HMAC secret used for both operations. The secret is
// process-wide state loaded once at startup and never rotated.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. The standard "sub" claim carries the user ID
// (as a decimal string — JWT subjects are strings); the username rides
// along as a custom claim so the verifier can return a full Identity
// without a DB read.
type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Issue creates and signs a session token for the given user.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, same key signs and
// verifies. Each token gets a unique ID (jti) so individual tokens are
// distinguishable in logs.
func (s *TokenService) Issue(userID int64, username string) (string, error) {
	return s.IssueWithDuration(userID, username, tokenTTL)
}

// IssueWithDuration creates a token with a custom expiry duration.
// Used by tests to mint already-expired tokens.
func (s *TokenService) IssueWithDuration(userID int64, username string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
			ID:        xid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses and verifies a token string and returns the Identity it
// encodes.
//
// Every failure mode — malformed token, bad signature, expired, wrong
// algorithm, missing subject — comes back as the same opaque error. Callers
// must treat them identically (authentication failure), so there is nothing
// to gain from distinguishing them, and a uniform error avoids leaking why
// a token was rejected.
//
// ALGORITHM CONFUSION:
// jwt.WithValidMethods pins the algorithm to HS256 so a token claiming
// alg=none (or an RSA variant) is rejected before signature checking.
func (s *TokenService) Verify(tokenStr string) (Identity, error) {
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
		return Identity{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Identity{}, errors.New("auth: invalid token claims")
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Identity{}, errors.New("auth: token has no valid subject")
	}

	return Identity{UserID: userID, Username: c.Username}, nil
}

// Package security implements bearer token handling, credential
// verification and identity resolution for the marketplace.
package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bookxchange/marketplace/internal/core/domain"
	"github.com/bookxchange/marketplace/internal/core/ports"
)

// MinSecretLength is the shortest accepted HMAC secret (256 bits).
const MinSecretLength = 32

// ErrWeakSecret is returned by NewTokenCodec for secrets shorter than MinSecretLength.
var ErrWeakSecret = errors.New("jwt secret must be at least 32 bytes")

// Clock returns the current time. Tests replace it to control expiry.
type Clock func() time.Time

type tokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec issues and parses HS256-signed bearer tokens.
// It is safe for concurrent use; its fields are never mutated after construction.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    Clock
}

// NewTokenCodec returns a codec for secret. A nil clock means time.Now.
func NewTokenCodec(secret string, ttl time.Duration, now Clock) (*TokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt ttl must be positive, got %s", ttl)
	}
	if now == nil {
		now = time.Now
	}
	return &TokenCodec{secret: []byte(secret), ttl: ttl, now: now}, nil
}

// TTL is the lifetime of every issued token.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token naming accountID as its subject.
func (c *TokenCodec) Issue(accountID int64, email string, role domain.Role) (string, error) {
	if accountID <= 0 || email == "" || !role.Valid() {
		return "", fmt.Errorf("issue token: %w", domain.ErrInvalidInput)
	}

	now := c.now()
	claims := tokenClaims{
		Email: email,
		Role:  string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(accountID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature first and the expiry second. Any structural
// problem is reported as domain.ErrTokenInvalid; a well-signed token past its
// expiry is domain.ErrTokenExpired.
func (c *TokenCodec) Parse(raw string) (*ports.TokenClaims, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	subject, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || subject <= 0 {
		return nil, domain.ErrTokenInvalid
	}
	role := domain.Role(claims.Role)
	if claims.Email == "" || !role.Valid() {
		return nil, domain.ErrTokenInvalid
	}

	out := &ports.TokenClaims{
		Subject:   subject,
		Email:     claims.Email,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

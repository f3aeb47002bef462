package ports

import (
	"time"

	"github.com/bookxchange/marketplace/internal/core/domain"
)

// PasswordHasher hashes and verifies passwords with a salted adaptive hash.
// Compare must run in constant time with respect to the password.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenClaims is the decoded content of a valid bearer token.
type TokenClaims struct {
	Subject   int64
	Email     string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer signs bearer tokens for an account.
type TokenIssuer interface {
	Issue(accountID int64, email string, role domain.Role) (string, error)
	TTL() time.Duration
}

// TokenParser validates a bearer token and returns its claims, failing with
// domain.ErrTokenInvalid or domain.ErrTokenExpired.
type TokenParser interface {
	Parse(token string) (*TokenClaims, error)
}

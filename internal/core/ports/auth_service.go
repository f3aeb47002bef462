package ports

import (
	"context"
	"time"

	"github.com/bookxchange/marketplace/internal/core/domain"
)

// RegisterInput carries the registration form.
type RegisterInput struct {
	Email       string
	Username    string
	Password    string
	CountryCode string
}

// AuthResult is returned by both login and registration.
type AuthResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
	Account     *domain.Account
}

// AuthService defines the login and registration use cases.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/bookxchange/marketplace/internal/core/domain"
	"github.com/bookxchange/marketplace/internal/core/ports"
)

const tokenType = "Bearer"

// CredentialVerifier checks an email/password pair.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (domain.Principal, error)
}

// IdentityResolver loads the live account behind a principal.
type IdentityResolver interface {
	ByID(ctx context.Context, id int64) (*domain.Account, error)
}

// AuthService implements registration and login.
type AuthService struct {
	accounts ports.AccountRepository
	hasher   ports.PasswordHasher
	verifier CredentialVerifier
	identity IdentityResolver
	tokens   ports.TokenIssuer
	log      zerolog.Logger
}

func NewAuthService(
	accounts ports.AccountRepository,
	hasher ports.PasswordHasher,
	verifier CredentialVerifier,
	identity IdentityResolver,
	tokens ports.TokenIssuer,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		accounts: accounts,
		hasher:   hasher,
		verifier: verifier,
		identity: identity,
		tokens:   tokens,
		log:      log,
	}
}

// Register creates a USER account and signs it in.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	email := domain.NormalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	country := domain.NormalizeCountryCode(in.CountryCode)

	var c checks
	c.notBlank("email", email)
	c.maxLen("email", email, 100)
	c.require(strings.Contains(email, "@"), "email must be a valid email")
	n := utf8.RuneCountInString(username)
	c.require(n >= 5 && n <= 50, "username must be between 5 and 50 characters")
	c.require(isCountryCode(country), "countryCode must be a 2-letter country code")
	if err := c.err(); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	// 1. Uniqueness pre-checks give precise conflict errors; the store's
	// unique indexes still decide races.
	exists, err := s.accounts.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		return nil, domain.ErrEmailTaken
	}
	exists, err = s.accounts.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		return nil, domain.ErrUsernameTaken
	}

	// 2. Persist.
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.accounts.Create(ctx, &domain.Account{
		Email:             email,
		Username:          username,
		PasswordHash:      hash,
		CountryCode:       country,
		ProfilePictureURL: domain.DefaultProfilePicture,
		Role:              domain.RoleUser,
		Enabled:           true,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("account_id", created.ID).Str("username", created.Username).Msg("account registered")

	// 3. Sign in.
	return s.issue(created)
}

// Login verifies the credentials and issues a token for the live account.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	principal, err := s.verifier.Verify(ctx, email, password)
	if err != nil {
		return nil, err
	}

	acc, err := s.identity.ByID(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	if !acc.Enabled {
		return nil, domain.ErrAccountDisabled
	}

	s.log.Debug().Int64("account_id", acc.ID).Msg("login succeeded")
	return s.issue(acc)
}

func (s *AuthService) issue(acc *domain.Account) (*ports.AuthResult, error) {
	token, err := s.tokens.Issue(acc.ID, acc.Email, acc.Role)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{
		AccessToken: token,
		TokenType:   tokenType,
		ExpiresIn:   s.tokens.TTL(),
		Account:     acc,
	}, nil
}

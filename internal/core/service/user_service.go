package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/bookxchange/marketplace/internal/core/domain"
	"github.com/bookxchange/marketplace/internal/core/policy"
	"github.com/bookxchange/marketplace/internal/core/ports"
)

// UserService implements profile management and account administration.
type UserService struct {
	accounts ports.AccountRepository
	cache    ports.CatalogCache
	log      zerolog.Logger
}

// NewUserService wires the profile use cases. cache may be nil; when set it
// is invalidated on renames because catalog pages embed owner usernames.
func NewUserService(accounts ports.AccountRepository, cache ports.CatalogCache, log zerolog.Logger) *UserService {
	return &UserService{accounts: accounts, cache: cache, log: log}
}

func (s *UserService) Me(ctx context.Context, p *domain.Principal) (*domain.Account, error) {
	if err := policy.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	return s.Get(ctx, p, p.ID)
}

// UpdateMe changes the caller's username, country and picture.
func (s *UserService) UpdateMe(ctx context.Context, p *domain.Principal, in ports.ProfileInput) (*domain.Account, error) {
	acc, err := s.Me(ctx, p)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(in.Username)
	country := domain.NormalizeCountryCode(in.CountryCode)
	picture := strings.TrimSpace(in.ProfilePictureURL)

	var c checks
	n := utf8.RuneCountInString(username)
	c.require(n >= 5 && n <= 50, "username must be between 5 and 50 characters")
	c.require(isCountryCode(country), "countryCode must be a 2-letter country code")
	c.maxLen("profilePictureUrl", picture, 1000)
	if err := c.err(); err != nil {
		return nil, err
	}

	existing, err := s.accounts.FindByUsername(ctx, username)
	switch {
	case err == nil && existing.ID != acc.ID:
		return nil, domain.ErrUsernameTaken
	case err != nil && !errors.Is(err, domain.ErrAccountNotFound):
		return nil, fmt.Errorf("check username: %w", err)
	}

	renamed := acc.Username != username
	acc.Username = username
	acc.CountryCode = country
	acc.ProfilePictureURL = picture
	acc.UpdatedAt = time.Now().UTC()

	updated, err := s.accounts.Update(ctx, acc)
	if err != nil {
		return nil, err
	}
	if renamed && s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn().Err(err).Int64("account_id", acc.ID).Msg("catalog cache invalidation failed")
		}
	}
	return updated, nil
}

func (s *UserService) List(ctx context.Context, p *domain.Principal) ([]*domain.Account, error) {
	if err := policy.RequireAdmin(p); err != nil {
		return nil, err
	}
	return s.accounts.List(ctx)
}

// Get returns an account to itself or to an administrator.
func (s *UserService) Get(ctx context.Context, p *domain.Principal, id int64) (*domain.Account, error) {
	if err := policy.RequireOwnerOrAdmin(p, policy.OwnedBy(id)); err != nil {
		return nil, err
	}
	return s.accounts.FindByID(ctx, id)
}

func (s *UserService) SetEnabled(ctx context.Context, p *domain.Principal, id int64, enabled bool) (*domain.Account, error) {
	return s.administer(ctx, p, id, func(acc *domain.Account) error {
		acc.Enabled = enabled
		return nil
	})
}

func (s *UserService) ToggleEnabled(ctx context.Context, p *domain.Principal, id int64) (*domain.Account, error) {
	return s.administer(ctx, p, id, func(acc *domain.Account) error {
		acc.Enabled = !acc.Enabled
		return nil
	})
}

func (s *UserService) SetRole(ctx context.Context, p *domain.Principal, id int64, role domain.Role) (*domain.Account, error) {
	return s.administer(ctx, p, id, func(acc *domain.Account) error {
		if !role.Valid() {
			return domain.NewValidationError("role must be one of: USER, ADMIN")
		}
		acc.Role = role
		return nil
	})
}

// administer applies an admin-only change. Tokens already issued to the
// target are re-checked against the stored account on their next use, so
// disabling takes effect immediately.
func (s *UserService) administer(ctx context.Context, p *domain.Principal, id int64, change func(*domain.Account) error) (*domain.Account, error) {
	if err := policy.RequireAdmin(p); err != nil {
		return nil, err
	}
	acc, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := change(acc); err != nil {
		return nil, err
	}
	acc.UpdatedAt = time.Now().UTC()

	updated, err := s.accounts.Update(ctx, acc)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("admin_id", p.ID).
		Int64("account_id", updated.ID).
		Bool("enabled", updated.Enabled).
		Str("role", string(updated.Role)).
		Msg("account updated by admin")
	return updated, nil
}

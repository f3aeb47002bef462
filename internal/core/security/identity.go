package security

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookxchange/marketplace/internal/core/domain"
	"github.com/bookxchange/marketplace/internal/core/ports"
)

// IdentityResolver loads live account records for authentication. It does
// not retry: any lookup failure is reported as domain.ErrAccountNotFound,
// with the store error attached for logging.
type IdentityResolver struct {
	accounts ports.AccountRepository
}

func NewIdentityResolver(accounts ports.AccountRepository) *IdentityResolver {
	return &IdentityResolver{accounts: accounts}
}

func (r *IdentityResolver) ByID(ctx context.Context, id int64) (*domain.Account, error) {
	if id <= 0 {
		return nil, domain.ErrAccountNotFound
	}
	acc, err := r.accounts.FindByID(ctx, id)
	return resolved(acc, err)
}

// ByEmail normalizes email before the lookup.
func (r *IdentityResolver) ByEmail(ctx context.Context, email string) (*domain.Account, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, domain.ErrAccountNotFound
	}
	acc, err := r.accounts.FindByEmail(ctx, email)
	return resolved(acc, err)
}

// Principal projects a resolved account.
func (r *IdentityResolver) Principal(acc *domain.Account) domain.Principal {
	return domain.NewPrincipal(acc)
}

func resolved(acc *domain.Account, err error) (*domain.Account, error) {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return nil, domain.ErrAccountNotFound
	case err != nil:
		return nil, fmt.Errorf("%w: %w", domain.ErrAccountNotFound, err)
	case acc == nil:
		return nil, domain.ErrAccountNotFound
	}
	return acc, nil
}

package security

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookxchange/marketplace/internal/core/domain"
	"github.com/bookxchange/marketplace/internal/core/ports"
)

// CredentialVerifier checks an email/password pair against the stored hash.
type CredentialVerifier struct {
	accounts ports.AccountRepository
	hasher   ports.PasswordHasher
	// dummyHash is compared against when the email is unknown so both
	// failure paths cost one hash comparison.
	dummyHash string
}

func NewCredentialVerifier(accounts ports.AccountRepository, hasher ports.PasswordHasher) (*CredentialVerifier, error) {
	dummy, err := hasher.Hash("unknown-account-placeholder")
	if err != nil {
		return nil, err
	}
	return &CredentialVerifier{accounts: accounts, hasher: hasher, dummyHash: dummy}, nil
}

// Verify returns the principal for a matching pair.
//
// An unknown email and a wrong password both yield
// domain.ErrInvalidCredentials. domain.ErrAccountDisabled is only reported
// once the password has matched.
func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (domain.Principal, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return domain.Principal{}, domain.ErrInvalidCredentials
	}

	acc, err := v.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			_ = v.hasher.Compare(v.dummyHash, password)
			return domain.Principal{}, domain.ErrInvalidCredentials
		}
		return domain.Principal{}, fmt.Errorf("lookup account: %w", err)
	}

	if err := v.hasher.Compare(acc.PasswordHash, password); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return domain.Principal{}, domain.ErrInvalidCredentials
		}
		return domain.Principal{}, err
	}

	if !acc.Enabled {
		return domain.Principal{}, domain.ErrAccountDisabled
	}

	return domain.NewPrincipal(acc), nil
}

package ports

import (
	"context"

	"github.com/bookxchange/marketplace/internal/core/domain"
)

// AccountRepository defines persistence operations for accounts.
// Implementations enforce email and username uniqueness and report
// violations as domain.ErrEmailTaken / domain.ErrUsernameTaken.
type AccountRepository interface {
	// Create assigns the account ID and persists it.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id int64) (*domain.Account, error)
	// FindByEmail expects an already normalized (lowercase) email.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	// FindByUsername matches case-insensitively.
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	List(ctx context.Context) ([]*domain.Account, error)
	// Update overwrites the mutable profile and admin fields.
	Update(ctx context.Context, account *domain.Account) (*domain.Account, error)
	// Usernames resolves display names for a batch of account IDs. Unknown
	// IDs are absent from the result.
	Usernames(ctx context.Context, ids []int64) (map[int64]string, error)
}

package ports

import (
	"context"

	"github.com/bookxchange/marketplace/internal/core/domain"
)

// ProfileInput carries a self-service profile update. An empty
// ProfilePictureURL clears the picture.
type ProfileInput struct {
	Username          string
	CountryCode       string
	ProfilePictureURL string
}

// UserService defines profile and account administration use cases.
type UserService interface {
	Me(ctx context.Context, p *domain.Principal) (*domain.Account, error)
	UpdateMe(ctx context.Context, p *domain.Principal, input ProfileInput) (*domain.Account, error)

	List(ctx context.Context, p *domain.Principal) ([]*domain.Account, error)
	Get(ctx context.Context, p *domain.Principal, id int64) (*domain.Account, error)
	SetEnabled(ctx context.Context, p *domain.Principal, id int64, enabled bool) (*domain.Account, error)
	ToggleEnabled(ctx context.Context, p *domain.Principal, id int64) (*domain.Account, error)
	SetRole(ctx context.Context, p *domain.Principal, id int64, role domain.Role) (*domain.Account, error)
}

package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookxchange/marketplace/internal/core/domain"
)

func user(id int64) *domain.Principal {
	return &domain.Principal{ID: id, Email: "u@example.com", Role: domain.RoleUser, Enabled: true}
}

func admin(id int64) *domain.Principal {
	return &domain.Principal{ID: id, Email: "a@example.com", Role: domain.RoleAdmin, Enabled: true}
}

func TestRequireAuthenticated(t *testing.T) {
	assert.ErrorIs(t, RequireAuthenticated(nil), domain.ErrUnauthenticated)
	assert.ErrorIs(t, RequireAuthenticated(&domain.Principal{}), domain.ErrUnauthenticated)
	assert.NoError(t, RequireAuthenticated(user(1)))
}

func TestRequireAdmin(t *testing.T) {
	assert.ErrorIs(t, RequireAdmin(nil), domain.ErrUnauthenticated)
	assert.ErrorIs(t, RequireAdmin(user(1)), domain.ErrForbidden)
	assert.NoError(t, RequireAdmin(admin(2)))
}

func TestOwnerOrAdmin(t *testing.T) {
	cases := []struct {
		name  string
		p     *domain.Principal
		owner *int64
		want  bool
	}{
		{"owner", user(5), OwnedBy(5), true},
		{"other user", user(7), OwnedBy(5), false},
		{"admin on foreign resource", admin(9), OwnedBy(5), true},
		{"anonymous", nil, OwnedBy(5), false},
		{"orphan for user", user(5), nil, false},
		{"orphan for admin", admin(9), nil, true},
		{"zero id principal", &domain.Principal{Role: domain.RoleUser}, OwnedBy(0), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsOwnerOrAdmin(tc.p, tc.owner))

			err := RequireOwnerOrAdmin(tc.p, tc.owner)
			if tc.want {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tc.p == nil || tc.p.ID <= 0 {
				assert.ErrorIs(t, err, domain.ErrUnauthenticated)
			} else {
				assert.ErrorIs(t, err, domain.ErrForbidden)
			}
		})
	}
}

func TestRequireVisible(t *testing.T) {
	hidden := Resource{OwnerID: OwnedBy(5), Public: false}
	public := Resource{OwnerID: OwnedBy(5), Public: true}

	assert.NoError(t, RequireVisible(nil, public))
	assert.NoError(t, RequireVisible(user(7), public))

	assert.ErrorIs(t, RequireVisible(nil, hidden), domain.ErrNotFound)
	assert.ErrorIs(t, RequireVisible(user(7), hidden), domain.ErrNotFound)
	assert.NoError(t, RequireVisible(user(5), hidden))
	assert.NoError(t, RequireVisible(admin(9), hidden))

	orphanHidden := Resource{Public: false}
	assert.ErrorIs(t, RequireVisible(user(5), orphanHidden), domain.ErrNotFound)
	assert.NoError(t, RequireVisible(admin(9), orphanHidden))
}

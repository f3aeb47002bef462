// Package policy holds the authorization decisions shared by every resource
// service. The functions are pure: they look only at the principal and the
// ownership snapshot supplied by the caller.
//
// A nil principal is an anonymous caller. A nil owner marks an orphaned
// resource, which only administrators may touch.
package policy

import "github.com/bookxchange/marketplace/internal/core/domain"

// Resource is the minimal ownership descriptor of a book, comment or account.
type Resource struct {
	OwnerID *int64
	// Public is true when the resource is in a publicly listed state.
	Public bool
}

// RequireAuthenticated fails with domain.ErrUnauthenticated unless p names an account.
func RequireAuthenticated(p *domain.Principal) error {
	if p == nil || p.ID <= 0 {
		return domain.ErrUnauthenticated
	}
	return nil
}

// RequireAdmin fails with domain.ErrUnauthenticated for anonymous callers and
// with domain.ErrForbidden for everyone who is not an administrator.
func RequireAdmin(p *domain.Principal) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if p.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}

// IsOwnerOrAdmin reports whether p owns the resource or is an administrator.
func IsOwnerOrAdmin(p *domain.Principal, ownerID *int64) bool {
	if RequireAuthenticated(p) != nil {
		return false
	}
	if p.Role == domain.RoleAdmin {
		return true
	}
	return ownerID != nil && *ownerID == p.ID
}

// RequireOwnerOrAdmin is the error-returning form of IsOwnerOrAdmin.
func RequireOwnerOrAdmin(p *domain.Principal, ownerID *int64) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if !IsOwnerOrAdmin(p, ownerID) {
		return domain.ErrForbidden
	}
	return nil
}

// RequireVisible hides non-public resources from anonymous and non-owner
// callers by reporting domain.ErrNotFound rather than a permission error.
func RequireVisible(p *domain.Principal, r Resource) error {
	if r.Public || IsOwnerOrAdmin(p, r.OwnerID) {
		return nil
	}
	return domain.ErrNotFound
}

// OwnedBy builds the owner pointer for a known account ID.
func OwnedBy(id int64) *int64 {
	return &id
}

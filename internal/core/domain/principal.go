package domain

// Principal is the request-scoped identity derived from a live Account.
// It is built once per request and handed around by value.
type Principal struct {
	ID      int64
	Email   string
	Role    Role
	Enabled bool
}

// NewPrincipal projects an account onto the fields authorization needs.
func NewPrincipal(a *Account) Principal {
	return Principal{
		ID:      a.ID,
		Email:   a.Email,
		Role:    a.Role,
		Enabled: a.Enabled,
	}
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

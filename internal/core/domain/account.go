package domain

import (
	"strings"
	"time"
)

// Role is the coarse permission level of an account.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// DefaultProfilePicture is assigned to freshly registered accounts.
const DefaultProfilePicture = "/images/profile-placeholder.png"

// Account is the persisted user record. The email is always stored lowercase.
type Account struct {
	ID                int64     `json:"id"`
	Email             string    `json:"email"`
	Username          string    `json:"username"`
	PasswordHash      string    `json:"-"`
	CountryCode       string    `json:"countryCode"`
	ProfilePictureURL string    `json:"profilePictureUrl,omitempty"`
	Role              Role      `json:"role"`
	Enabled           bool      `json:"enabled"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeCountryCode trims and uppercases an ISO country code.
func NormalizeCountryCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

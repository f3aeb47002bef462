package domain

import "unicode"

const (
	PasswordMinLength = 8
	PasswordMaxLength = 100
)

// ValidatePassword enforces the registration password policy: 8 to 100
// characters with at least one upper-case letter, one lower-case letter and
// one digit.
func ValidatePassword(password string) error {
	n := len([]rune(password))
	if n < PasswordMinLength || n > PasswordMaxLength {
		return NewValidationError("password must be between 8 and 100 characters")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return NewValidationError("password must contain at least one uppercase letter, one lowercase letter and one digit")
	}
	return nil
}

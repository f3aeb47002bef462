package domain

import (
	"errors"
	"strings"
)

// Authentication and authorization failures. Transport adapters map these
// to status codes; the core never renders them itself.
var (
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenExpired       = errors.New("token expired")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("access forbidden")
)

// Resource errors.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrBookNotFound    = errors.New("book listing not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrBookUnavailable = errors.New("comments can only be added to available book listings")

	ErrConflict      = errors.New("conflict")
	ErrEmailTaken    = errors.New("email is already registered")
	ErrUsernameTaken = errors.New("username is already taken")

	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidImageType = errors.New("only JPEG, PNG and WEBP images are allowed")
	ErrEmptyImage       = errors.New("image file is empty")
)

// IsConflict reports whether err is one of the uniqueness violations.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrUsernameTaken)
}

// ValidationError carries per-field messages. It unwraps to ErrInvalidInput.
type ValidationError struct {
	Details []string
}

func NewValidationError(details ...string) *ValidationError {
	return &ValidationError{Details: details}
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(e.Details, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

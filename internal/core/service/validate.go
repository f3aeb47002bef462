package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bookxchange/marketplace/internal/core/domain"
)

// checks collects field violations and turns them into a single
// *domain.ValidationError.
type checks []string

func (c *checks) require(ok bool, format string, args ...any) {
	if !ok {
		*c = append(*c, fmt.Sprintf(format, args...))
	}
}

func (c *checks) maxLen(field, value string, limit int) {
	c.require(utf8.RuneCountInString(value) <= limit, "%s must be at most %d characters", field, limit)
}

func (c *checks) notBlank(field, value string) {
	c.require(strings.TrimSpace(value) != "", "%s is required", field)
}

func (c checks) err() error {
	if len(c) == 0 {
		return nil
	}
	return domain.NewValidationError(c...)
}

func isCountryCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

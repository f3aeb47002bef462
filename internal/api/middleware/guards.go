package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/bookxchange/marketplace/internal/core/policy"
)

// RequireAuthenticated rejects anonymous callers with domain.ErrUnauthenticated.
func RequireAuthenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := policy.RequireAuthenticated(PrincipalFrom(c)); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// RequireAdmin rejects callers without the ADMIN role.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := policy.RequireAdmin(PrincipalFrom(c)); err != nil {
				return err
			}
			return next(c)
		}
	}
}

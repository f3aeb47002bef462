package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bookxchange/marketplace/internal/api/middleware"
	"github.com/bookxchange/marketplace/internal/core/domain"
)

// currentPrincipal returns the caller resolved by the Authenticate
// middleware, or nil for anonymous requests.
func currentPrincipal(c echo.Context) *domain.Principal {
	return middleware.PrincipalFrom(c)
}

// normalizer is implemented by requests that clean their fields before
// validation.
type normalizer interface {
	normalize()
}

// bindAndValidate decodes the request into req and runs struct validation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError("malformed request body")
	}
	if n, ok := req.(normalizer); ok {
		n.normalize()
	}
	return c.Validate(req)
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(name + ": must be a positive integer")
	}
	return id, nil
}

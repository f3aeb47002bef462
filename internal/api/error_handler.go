package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bookxchange/marketplace/internal/api/metrics"
	"github.com/bookxchange/marketplace/internal/core/domain"
)

const (
	msgAuthRequired       = "Authentication is required to access this resource"
	msgInvalidCredentials = "Invalid email or password"
	msgAccessDenied       = "Access denied"
	msgAccountDisabled    = "User account is disabled"
	msgValidationFailed   = "Validation failed"
	msgUnexpected         = "Unexpected server error"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Timestamp string   `json:"timestamp"`
	Status    int      `json:"status"`
	Error     string   `json:"error"`
	Message   string   `json:"message"`
	Path      string   `json:"path"`
	Details   []string `json:"details,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders {"timestamp","status","error","message","path"[,"details"]}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg, details := resolveError(err, log, c)
		body := errorResponse{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Status:    code,
			Error:     http.StatusText(code),
			Message:   msg,
			Path:      c.Request().URL.Path,
			Details:   details,
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, []string) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, msgValidationFailed, ve.Details
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgInvalidCredentials, nil
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrTokenExpired):
		metrics.AccessDeniedTotal.WithLabelValues("unauthenticated").Inc()
		return http.StatusUnauthorized, msgAuthRequired, nil
	case errors.Is(err, domain.ErrAccountDisabled):
		return http.StatusForbidden, msgAccountDisabled, nil
	case errors.Is(err, domain.ErrForbidden):
		metrics.AccessDeniedTotal.WithLabelValues("forbidden").Inc()
		return http.StatusForbidden, msgAccessDenied, nil
	case errors.Is(err, domain.ErrBookUnavailable):
		return http.StatusForbidden, err.Error(), nil
	case errors.Is(err, domain.ErrBookNotFound),
		errors.Is(err, domain.ErrCommentNotFound),
		errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, notFoundMessage(err), nil
	case domain.IsConflict(err):
		return http.StatusConflict, conflictMessage(err), nil
	case errors.Is(err, domain.ErrInvalidImageType),
		errors.Is(err, domain.ErrEmptyImage):
		return http.StatusBadRequest, imageMessage(err), nil
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, msgValidationFailed, []string{err.Error()}
	}

	// Echo's own errors (bind failures, 404 from router, body limit, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			logUnexpected(log, c, err)
			return he.Code, msgUnexpected, nil
		}
		return he.Code, fmt.Sprintf("%v", he.Message), nil
	}

	logUnexpected(log, c, err)
	return http.StatusInternalServerError, msgUnexpected, nil
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrBookNotFound):
		return "Book listing not found"
	case errors.Is(err, domain.ErrCommentNotFound):
		return "Comment not found"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "User not found"
	}
	return "Resource not found"
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmailTaken):
		return "Email is already registered"
	case errors.Is(err, domain.ErrUsernameTaken):
		return "Username is already taken"
	}
	return "Resource already exists"
}

func imageMessage(err error) string {
	if errors.Is(err, domain.ErrEmptyImage) {
		return "Image file is empty"
	}
	return "Only JPEG, PNG and WEBP images are allowed"
}

func logUnexpected(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
}

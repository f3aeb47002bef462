package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bookxchange/marketplace/internal/core/domain"
)

type errorBody struct {
	Timestamp string   `json:"timestamp"`
	Status    int      `json:"status"`
	Error     string   `json:"error"`
	Message   string   `json:"message"`
	Path      string   `json:"path"`
	Details   []string `json:"details"`
}

func render(t *testing.T, err error) (*httptest.ResponseRecorder, errorBody) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/books/7", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body errorBody
	if jerr := json.Unmarshal(rec.Body.Bytes(), &body); jerr != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), jerr)
	}
	return rec, body
}

func TestErrorHandler_Mapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized, msgAuthRequired},
		{"token invalid", domain.ErrTokenInvalid, http.StatusUnauthorized, msgAuthRequired},
		{"token expired", domain.ErrTokenExpired, http.StatusUnauthorized, msgAuthRequired},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, msgInvalidCredentials},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, msgAccessDenied},
		{"wrapped forbidden", fmt.Errorf("update book 7: %w", domain.ErrForbidden), http.StatusForbidden, msgAccessDenied},
		{"disabled", domain.ErrAccountDisabled, http.StatusForbidden, msgAccountDisabled},
		{"unavailable book", domain.ErrBookUnavailable, http.StatusForbidden, domain.ErrBookUnavailable.Error()},
		{"book not found", domain.ErrBookNotFound, http.StatusNotFound, "Book listing not found"},
		{"comment not found", domain.ErrCommentNotFound, http.StatusNotFound, "Comment not found"},
		{"account not found", domain.ErrAccountNotFound, http.StatusNotFound, "User not found"},
		{"email taken", domain.ErrEmailTaken, http.StatusConflict, "Email is already registered"},
		{"username taken", domain.ErrUsernameTaken, http.StatusConflict, "Username is already taken"},
		{"bad image", domain.ErrInvalidImageType, http.StatusBadRequest, "Only JPEG, PNG and WEBP images are allowed"},
		{"echo error", echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Request Entity Too Large"), http.StatusRequestEntityTooLarge, "Request Entity Too Large"},
		{"route not found", echo.ErrNotFound, http.StatusNotFound, "Not Found"},
		{"unexpected", errors.New("mongo: connection refused"), http.StatusInternalServerError, msgUnexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := render(t, tt.err)
			if rec.Code != tt.status || body.Status != tt.status {
				t.Fatalf("expected status %d, got %d / %d", tt.status, rec.Code, body.Status)
			}
			if body.Message != tt.message {
				t.Fatalf("expected message %q, got %q", tt.message, body.Message)
			}
			if body.Error != http.StatusText(tt.status) {
				t.Fatalf("expected reason %q, got %q", http.StatusText(tt.status), body.Error)
			}
			if body.Path != "/api/books/7" {
				t.Fatalf("unexpected path %q", body.Path)
			}
			if _, err := time.Parse(time.RFC3339, body.Timestamp); err != nil {
				t.Fatalf("timestamp not RFC3339: %q", body.Timestamp)
			}
		})
	}
}

func TestErrorHandler_ValidationDetails(t *testing.T) {
	rec, body := render(t, domain.NewValidationError("username: must be 5-50 characters", "countryCode: must be 2 letters"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body.Message != msgValidationFailed {
		t.Fatalf("unexpected message %q", body.Message)
	}
	if len(body.Details) != 2 || body.Details[0] != "username: must be 5-50 characters" {
		t.Fatalf("unexpected details %v", body.Details)
	}
}

func TestErrorHandler_DoesNotLeakInternals(t *testing.T) {
	rec, _ := render(t, errors.New("dial tcp 10.0.0.3:27017: secret detail"))
	if got := rec.Body.String(); strings.Contains(got, "10.0.0.3") {
		t.Fatalf("internal detail leaked: %s", got)
	}
}

func TestErrorHandler_SkipsCommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.String(http.StatusOK, "done")

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrForbidden, c)

	if rec.Code != http.StatusOK || rec.Body.String() != "done" {
		t.Fatalf("committed response was overwritten: %d %q", rec.Code, rec.Body.String())
	}
}

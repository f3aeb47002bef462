package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bookxchange/marketplace/internal/api/metrics"
	"github.com/bookxchange/marketplace/internal/core/domain"
	"github.com/bookxchange/marketplace/internal/core/ports"
)

const (
	principalKey = "principal"
	bearerPrefix = "Bearer "
)

type ctxKey struct{}

// AccountResolver loads the live account named by a token subject.
type AccountResolver interface {
	ByID(ctx context.Context, id int64) (*domain.Account, error)
}

// Authenticate resolves the bearer token, if any, into a Principal. It never
// rejects a request: every failure leaves the caller anonymous and route
// guards or services decide whether that is acceptable.
func Authenticate(parser ports.TokenParser, accounts AccountResolver, log zerolog.Logger, now func() time.Time) echo.MiddlewareFunc {
	if now == nil {
		now = time.Now
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Get(principalKey) != nil {
				return next(c)
			}

			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.RequestAuthTotal.WithLabelValues(metrics.AuthAnonymous).Inc()
				return next(c)
			}

			p, outcome, err := resolve(c.Request().Context(), parser, accounts, raw, now())
			metrics.RequestAuthTotal.WithLabelValues(outcome).Inc()
			if err != nil {
				log.Debug().Err(err).
					Str("outcome", outcome).
					Str("path", c.Request().URL.Path).
					Msg("bearer token rejected")
				return next(c)
			}

			c.Set(principalKey, p)
			c.SetRequest(c.Request().WithContext(WithPrincipal(c.Request().Context(), p)))
			return next(c)
		}
	}
}

func resolve(ctx context.Context, parser ports.TokenParser, accounts AccountResolver, raw string, now time.Time) (domain.Principal, string, error) {
	claims, err := parser.Parse(raw)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			return domain.Principal{}, metrics.AuthExpiredToken, err
		}
		return domain.Principal{}, metrics.AuthInvalidToken, err
	}

	acc, err := accounts.ByID(ctx, claims.Subject)
	if err != nil {
		return domain.Principal{}, metrics.AuthUnknownSubject, err
	}
	if acc.Email != claims.Email {
		return domain.Principal{}, metrics.AuthStaleToken, errors.New("token email no longer matches account")
	}
	if !acc.Enabled {
		return domain.Principal{}, metrics.AuthDisabled, domain.ErrAccountDisabled
	}
	if !now.Before(claims.ExpiresAt) {
		return domain.Principal{}, metrics.AuthExpiredToken, domain.ErrTokenExpired
	}
	return domain.NewPrincipal(acc), metrics.AuthAuthenticated, nil
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// PrincipalFrom returns a copy of the authenticated caller, or nil when the
// request is anonymous.
func PrincipalFrom(c echo.Context) *domain.Principal {
	p, ok := c.Get(principalKey).(domain.Principal)
	if !ok {
		return nil
	}
	return &p
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// PrincipalFromContext is PrincipalFrom for code that only sees the request context.
func PrincipalFromContext(ctx context.Context) *domain.Principal {
	p, ok := ctx.Value(ctxKey{}).(domain.Principal)
	if !ok {
		return nil
	}
	return &p
}

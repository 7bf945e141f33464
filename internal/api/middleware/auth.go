package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/acquisitions/acquisitions-api/internal/api/handler"
	"github.com/acquisitions/acquisitions-api/internal/api/session"
	"github.com/acquisitions/acquisitions-api/internal/core/domain"
	"github.com/acquisitions/acquisitions-api/internal/infrastructure/token"
)

// TokenVerifier checks a session token and returns its claims.
type TokenVerifier interface {
	Verify(raw string) (*token.Claims, error)
}

// Identify resolves the caller from the session cookie, falling back to an
// Authorization bearer header, and injects the claims into context. It never
// rejects: requests without a valid token continue as guests.
func Identify(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := session.Token(c)
			if raw == "" {
				raw = bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			}
			if raw == "" {
				return next(c)
			}

			claims, err := verifier.Verify(raw)
			if err != nil {
				return next(c)
			}

			id := claims.Identity()
			c.Set(handler.CtxUserID, id.ID)
			c.Set(handler.CtxEmail, id.Email)
			c.Set(handler.CtxRole, string(id.Role))

			return next(c)
		}
	}
}

// RequireAuth rejects requests that Identify did not authenticate.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id, ok := c.Get(handler.CtxUserID).(int64); !ok || id <= 0 {
				return domain.ErrUnauthenticated
			}
			return next(c)
		}
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

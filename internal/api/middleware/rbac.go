package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/acquisitions/acquisitions-api/internal/api/handler"
	"github.com/acquisitions/acquisitions-api/internal/core/domain"
)

// RBAC enforces role-based access control on the role set by Identify.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(handler.CtxRole).(string)
			if _, ok := allowed[domain.ParseRole(role)]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/acquisitions/acquisitions-api/internal/core/domain"
	"github.com/acquisitions/acquisitions-api/internal/core/ports"
)

// Context keys written by the Identify middleware.
const (
	CtxRole   = "role"
	CtxUserID = "user_id"
	CtxEmail  = "email"
)

// ctxActor returns the authenticated caller, or nil when the request carried
// no valid session token.
func ctxActor(c echo.Context) *ports.Actor {
	id, ok := c.Get(CtxUserID).(int64)
	if !ok || id <= 0 {
		return nil
	}
	role, _ := c.Get(CtxRole).(string)
	return &ports.Actor{ID: id, Role: domain.ParseRole(role)}
}

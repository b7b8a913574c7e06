package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/def-himani/mediflow/internal/platform/apperr"
)

// RequireRole returns middleware that only lets identities with the given
// role through. It must be mounted after Guard.
func RequireRole(role Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFromContext(c.Request().Context())
			if !ok {
				return apperr.Authentication(MsgHeaderInvalid)
			}
			if id.Role != role {
				return apperr.Authorization(MsgForbidden)
			}
			return next(c)
		}
	}
}

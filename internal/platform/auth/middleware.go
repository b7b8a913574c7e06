package auth

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/def-himani/mediflow/internal/platform/apperr"
)

const (
	MsgHeaderInvalid = "Authorization header missing or invalid"
	MsgTokenInvalid  = "Invalid or expired token"
	MsgForbidden     = "Forbidden"
)

// Verifier validates a raw session token.
type Verifier interface {
	Verify(token string) (Identity, error)
}

// Guard returns middleware that authenticates the request from its bearer
// token and stores the verified identity on the request context. It never
// touches the data store.
func Guard(verifier Verifier, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return apperr.Authentication(MsgHeaderInvalid)
			}

			id, err := verifier.Verify(tokenStr)
			if err != nil {
				evt := logger.Debug()
				if !errors.Is(err, ErrTokenExpired) {
					evt = logger.Warn()
				}
				rid, _ := c.Get("request_id").(string)
				evt.Err(err).
					Str("request_id", rid).
					Str("path", c.Request().URL.Path).
					Str("remote_ip", c.RealIP()).
					Msg("token rejected")
				return apperr.Authentication(MsgTokenInvalid)
			}

			ctx := WithIdentity(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme must be exactly "Bearer" followed by a single
// space and a non-empty token.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" {
		return "", false
	}
	if token == "" || strings.ContainsAny(token, " \t\r\n") {
		return "", false
	}
	return token, true
}

// MustIdentity returns the identity set by Guard. Handlers mounted behind
// Guard can rely on it; a missing identity is reported as unauthenticated.
func MustIdentity(c echo.Context) (Identity, error) {
	id, ok := IdentityFromContext(c.Request().Context())
	if !ok {
		return Identity{}, apperr.Authentication(MsgHeaderInvalid)
	}
	return id, nil
}

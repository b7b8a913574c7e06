package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/def-himani/mediflow/internal/platform/apperr"
)

const msgTimeout = "Request processing exceeded the allowed time limit"

// RequestTimeout puts a deadline on the request context. Database calls made
// with that context are cancelled once it passes; if the handler then fails
// because of the deadline and nothing has been written yet, the client gets
// a 504.
//
// The handler runs on the calling goroutine, so nothing touches the echo
// context after the middleware returns.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if timeout <= 0 {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)
			if err == nil || c.Response().Committed {
				return err
			}
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return c.JSON(http.StatusGatewayTimeout, apperr.Body{Success: false, Message: msgTimeout})
			}
			return err
		}
	}
}

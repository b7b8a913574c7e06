package middleware

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestTimeout_CompletesWithinDeadline(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/api/patient/profile")

	var deadlineSet bool
	h := RequestTimeout(5 * time.Second)(func(c echo.Context) error {
		_, deadlineSet = c.Request().Context().Deadline()
		return c.String(http.StatusOK, "ok")
	})

	require.NoError(t, h(c))
	assert.True(t, deadlineSet)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestTimeout_ReturnsGatewayTimeout(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/api/patient/appointments")

	h := RequestTimeout(20 * time.Millisecond)(func(c echo.Context) error {
		select {
		case <-time.After(5 * time.Second):
			return c.String(http.StatusOK, "ok")
		case <-c.Request().Context().Done():
			return fmt.Errorf("list appointments: %w", c.Request().Context().Err())
		}
	})

	require.NoError(t, h(c))
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Request processing exceeded the allowed time limit"}`, rec.Body.String())
}

func TestRequestTimeout_PassesOtherErrors(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/api/patient/profile")
	want := echo.NewHTTPError(http.StatusTeapot)

	err := RequestTimeout(time.Second)(func(echo.Context) error { return want })(c)
	assert.Equal(t, want, err)
}

func TestRequestTimeout_Disabled(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/")

	var deadlineSet bool
	h := RequestTimeout(0)(func(c echo.Context) error {
		_, deadlineSet = c.Request().Context().Deadline()
		return nil
	})

	require.NoError(t, h(c))
	assert.False(t, deadlineSet)
}

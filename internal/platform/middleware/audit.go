package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/def-himani/mediflow/internal/platform/auth"
)

// AuditEntry describes one access to the /api/ surface.
type AuditEntry struct {
	RequestID string
	SubjectID int64
	Role      auth.Role
	Resource  string
	Action    string
	Method    string
	Path      string
	RemoteIP  string
	Status    int
}

// Audit logs a phi_access event for every /api/ request once the handler has
// run, tagged with the identity the guard verified (if any).
func Audit(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !strings.HasPrefix(c.Request().URL.Path, "/api/") {
				return next(c)
			}

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			entry := buildAuditEntry(c)
			evt := logger.Info()
			if entry.Status == http.StatusUnauthorized || entry.Status == http.StatusForbidden {
				evt = logger.Warn()
			}
			evt.
				Str("type", "phi_access").
				Str("request_id", entry.RequestID).
				Int64("subject_id", entry.SubjectID).
				Str("role", string(entry.Role)).
				Str("resource", entry.Resource).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.RemoteIP).
				Int("status", entry.Status).
				Msg("phi_access")

			return nil
		}
	}
}

func buildAuditEntry(c echo.Context) AuditEntry {
	// Read the request after the handler ran: the guard replaces it with one
	// whose context carries the identity.
	req := c.Request()
	entry := AuditEntry{
		Method:   req.Method,
		Path:     req.URL.Path,
		RemoteIP: c.RealIP(),
		Status:   c.Response().Status,
		Action:   httpMethodToAction(req.Method),
		Resource: resourceOf(req.URL.Path),
	}
	entry.RequestID, _ = c.Get("request_id").(string)
	if id, ok := auth.IdentityFromContext(req.Context()); ok {
		entry.SubjectID = id.SubjectID
		entry.Role = id.Role
	}
	return entry
}

func httpMethodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// resourceOf returns the resource segment of an /api/<role>/<resource>/...
// path, e.g. "activitylog" for /api/patient/activitylog/7/edit.
func resourceOf(path string) string {
	segments := strings.Split(strings.TrimPrefix(path, "/api/"), "/")
	if len(segments) >= 2 && segments[1] != "" {
		return segments[1]
	}
	return "unknown"
}

package account

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/def-himani/mediflow/internal/platform/apperr"
	"github.com/def-himani/mediflow/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts signup and login on the public group and the
// profile endpoints on the role groups. mw wraps each route after the
// group middleware.
func (h *Handler) RegisterRoutes(public, patient, physician *echo.Group, mw ...echo.MiddlewareFunc) {
	public.POST("/patient/signup", h.signup(auth.RolePatient), mw...)
	public.POST("/patient/login", h.login(auth.RolePatient), mw...)
	public.POST("/physician/signup", h.signup(auth.RolePhysician), mw...)
	public.POST("/physician/login", h.login(auth.RolePhysician), mw...)

	patient.GET("/profile", h.GetPatientProfile, mw...)
	patient.PUT("/profile/update", h.UpdatePatientProfile, mw...)

	physician.GET("/profile", h.GetPhysicianProfile, mw...)
	physician.PUT("/profile/update", h.UpdatePhysicianProfile, mw...)
}

func (h *Handler) signup(role auth.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req SignupRequest
		if err := c.Bind(&req); err != nil {
			return apperr.Validation("Invalid request body")
		}
		token, err := h.svc.Signup(c.Request().Context(), role, &req)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Account created successfully",
			"token":   token,
		})
	}
}

func (h *Handler) login(role auth.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req LoginRequest
		if err := c.Bind(&req); err != nil {
			return apperr.Validation("Invalid request body")
		}
		res, err := h.svc.Login(c.Request().Context(), role, &req)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"success":    true,
			"token":      res.Token,
			string(role): res.Profile,
		})
	}
}

func (h *Handler) GetPatientProfile(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetPatientProfile(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "profile": p})
}

func (h *Handler) UpdatePatientProfile(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	var patch PatientPatch
	if err := c.Bind(&patch); err != nil {
		return apperr.Validation("Invalid request body")
	}
	p, err := h.svc.UpdatePatientProfile(c.Request().Context(), id, &patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Profile updated successfully",
		"profile": p,
	})
}

func (h *Handler) GetPhysicianProfile(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetPhysicianProfile(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "profile": p})
}

func (h *Handler) UpdatePhysicianProfile(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	var patch PhysicianPatch
	if err := c.Bind(&patch); err != nil {
		return apperr.Validation("Invalid request body")
	}
	p, err := h.svc.UpdatePhysicianProfile(c.Request().Context(), id, &patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Profile updated successfully",
		"profile": p,
	})
}

package reference

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/def-himani/mediflow/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the lookup listings. They need no token.
func (h *Handler) RegisterRoutes(public *echo.Group, mw ...echo.MiddlewareFunc) {
	public.GET("/patient/insurances", h.ListInsurances, mw...)
	public.GET("/patient/pharmacies", h.ListPharmacies, mw...)
	public.GET("/patient/specializations", h.ListSpecializations, mw...)
	public.GET("/patient/physicians", h.ListPhysicians, mw...)
	public.GET("/physician/medications", h.ListMedications, mw...)
}

func (h *Handler) ListInsurances(c echo.Context) error {
	out, err := h.svc.Insurances(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "insurances": out})
}

func (h *Handler) ListPharmacies(c echo.Context) error {
	out, err := h.svc.Pharmacies(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "pharmacies": out})
}

func (h *Handler) ListSpecializations(c echo.Context) error {
	out, err := h.svc.Specializations(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "specializations": out})
}

func (h *Handler) ListMedications(c echo.Context) error {
	out, err := h.svc.Medications(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "medications": out})
}

func (h *Handler) ListPhysicians(c echo.Context) error {
	var specID *int64
	if v := c.QueryParam("specialization_id"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return apperr.Validation("Invalid specialization_id")
		}
		specID = &n
	}
	out, err := h.svc.Physicians(c.Request().Context(), specID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "physicians": out})
}

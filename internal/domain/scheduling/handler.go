package scheduling

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/def-himani/mediflow/internal/platform/apperr"
	"github.com/def-himani/mediflow/internal/platform/auth"
	"github.com/def-himani/mediflow/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(patient, physician *echo.Group, mw ...echo.MiddlewareFunc) {
	patient.GET("/dashboard", h.PatientDashboard, mw...)
	patient.POST("/dashboard", h.PatientDashboard, mw...)
	patient.GET("/appointments", h.ListPatientAppointments, mw...)
	patient.POST("/appointment/book", h.Book, mw...)
	patient.PUT("/appointment/:id/cancel", h.Cancel, mw...)

	physician.GET("/appointments", h.ListPhysicianAppointments, mw...)
	physician.PUT("/appointment/:id/status", h.UpdateStatus, mw...)
}

func (h *Handler) PatientDashboard(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Dashboard(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":      true,
		"message":      "Dashboard data obtained successfully",
		"appointments": out,
	})
}

func (h *Handler) ListPatientAppointments(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	out, page, err := h.svc.ListForPatient(c.Request().Context(), id, pagination.FromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "appointments": out, "page": page})
}

func (h *Handler) Book(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	var req BookRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	a, err := h.svc.Book(c.Request().Context(), id, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success":     true,
		"message":     "Appointment booked successfully",
		"appointment": a,
	})
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	apptID, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return apperr.NotFound(MsgNotFound)
	}
	a, err := h.svc.Cancel(c.Request().Context(), id, apptID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Appointment cancelled successfully",
		"appointment": a,
	})
}

func (h *Handler) ListPhysicianAppointments(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	out, page, err := h.svc.ListForPhysician(c.Request().Context(), id, pagination.FromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "appointments": out, "page": page})
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	apptID, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return apperr.NotFound(MsgNotFound)
	}
	var req StatusRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	a, err := h.svc.UpdateStatus(c.Request().Context(), id, apptID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Appointment status updated",
		"appointment": a,
	})
}

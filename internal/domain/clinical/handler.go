package clinical

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
	patient.GET("/healthRecord", h.PatientRecords, mw...)
	patient.POST("/healthRecord", h.PatientRecords, mw...)
	patient.GET("/healthRecord/record/:id", h.PatientRecord, mw...)

	physician.GET("/patients", h.Patients, mw...)
	physician.GET("/patient/:patientId/visits", h.Visits, mw...)
	physician.GET("/dashboard-summary", h.DashboardSummary, mw...)
	physician.POST("/healthRecord/create", h.CreateRecord, mw...)
	physician.GET("/healthRecord/record/:id", h.PhysicianRecord, mw...)
}

func (h *Handler) PatientRecords(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	out, page, err := h.svc.PatientRecords(c.Request().Context(), id, pagination.FromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "healthrecords": out, "page": page})
}

func (h *Handler) PatientRecord(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	recordID, err := recordParam(c)
	if err != nil {
		return err
	}
	rec, err := h.svc.PatientRecord(c.Request().Context(), id, recordID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "healthrecord": rec})
}

func (h *Handler) PhysicianRecord(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	recordID, err := recordParam(c)
	if err != nil {
		return err
	}
	rec, err := h.svc.PhysicianRecord(c.Request().Context(), id, recordID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "healthrecord": rec})
}

func (h *Handler) CreateRecord(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	var req CreateRecordRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	rec, err := h.svc.CreateRecord(c.Request().Context(), id, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success":      true,
		"message":      "Health record created successfully",
		"healthrecord": rec,
	})
}

func (h *Handler) Patients(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Patients(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "patients": out})
}

func (h *Handler) Visits(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	patientID, err := strconv.ParseInt(c.Param("patientId"), 10, 32)
	if err != nil || patientID <= 0 {
		return apperr.Validation("Invalid patient id")
	}
	out, page, err := h.svc.Visits(c.Request().Context(), id, patientID, pagination.FromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "visits": out, "page": page})
}

func (h *Handler) DashboardSummary(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	sum, err := h.svc.DashboardSummary(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":          true,
		"next_appointment": sum.NextAppointment,
		"prescriptions":    sum.Prescriptions,
		"activity_log":     sum.ActivityLog,
	})
}

func recordParam(c echo.Context) (int64, error) {
	v, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || v <= 0 {
		return 0, apperr.NotFound(MsgNotFound)
	}
	return v, nil
}

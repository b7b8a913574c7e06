package activity

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/def-himani/mediflow/internal/platform/apperr"
	"github.com/def-himani/mediflow/internal/platform/auth"
	"github.com/def-himani/mediflow/pkg/pagination"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(patient, physician *echo.Group, mw ...echo.MiddlewareFunc) {
	patient.GET("/activitylogs", h.List, mw...)
	patient.GET("/activitylogs/export", h.Export, mw...)
	patient.GET("/activitylog/:id", h.Get, mw...)
	patient.POST("/activitylog/new", h.Create, mw...)
	patient.PUT("/activitylog/:id/edit", h.Update, mw...)

	physician.GET("/patient/:patientId/activitylogs", h.PatientLogs, mw...)
	physician.GET("/patient/:patientId/activity/:logId", h.PatientLog, mw...)
	physician.POST("/patient/:patientId/activitylog/new", h.CreateForPatient, mw...)
	physician.PUT("/patient/:patientId/activitylog/:logId/edit", h.UpdateForPatient, mw...)
}

func (h *Handler) List(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	out, page, err := h.svc.List(c.Request().Context(), id, pagination.FromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "activity_logs": out, "page": page})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	logID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	l, err := h.svc.Get(c.Request().Context(), id, logID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "activity_log": l})
}

func (h *Handler) Create(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	var req Request
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	l, err := h.svc.Create(c.Request().Context(), id, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success":      true,
		"message":      "Activity log created successfully",
		"activity_log": l,
	})
}

func (h *Handler) Update(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	logID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req Request
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	l, err := h.svc.Update(c.Request().Context(), id, logID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":      true,
		"message":      "Activity log updated successfully",
		"activity_log": l,
	})
}

func (h *Handler) Export(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	data, err := h.svc.Export(c.Request().Context(), id)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=activity-logs.xlsx")
	return c.Blob(http.StatusOK, xlsxContentType, data)
}

func (h *Handler) PatientLogs(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	out, page, err := h.svc.PatientLogs(c.Request().Context(), id, patientID, pagination.FromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "logs": out, "page": page})
}

func (h *Handler) PatientLog(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	logID, err := pathID(c, "logId")
	if err != nil {
		return err
	}
	l, err := h.svc.PatientLog(c.Request().Context(), id, patientID, logID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "log": l})
}

func (h *Handler) CreateForPatient(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	var req Request
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	l, err := h.svc.CreateForPatient(c.Request().Context(), id, patientID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success":      true,
		"message":      "Activity log created successfully",
		"activity_log": l,
	})
}

func (h *Handler) UpdateForPatient(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	logID, err := pathID(c, "logId")
	if err != nil {
		return err
	}
	var req Request
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	l, err := h.svc.UpdateForPatient(c.Request().Context(), id, patientID, logID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":      true,
		"message":      "Activity log updated successfully",
		"activity_log": l,
	})
}

func patientParam(c echo.Context) (int64, error) {
	v, err := strconv.ParseInt(c.Param("patientId"), 10, 32)
	if err != nil || v <= 0 {
		return 0, apperr.Validation("Invalid patient id")
	}
	return v, nil
}

// pathID parses a log id path parameter. Anything unparsable is reported as
// a missing log.
func pathID(c echo.Context, name string) (int64, error) {
	v, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil || v <= 0 {
		return 0, apperr.NotFound(MsgNotFound)
	}
	return v, nil
}

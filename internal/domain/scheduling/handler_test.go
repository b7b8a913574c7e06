package scheduling

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/def-himani/mediflow/internal/platform/apperr"
	"github.com/def-himani/mediflow/internal/platform/auth"
)

var testSecret = []byte("scheduling-test-secret-0123456789abcdef")

func newTestServer(t *testing.T) (*echo.Echo, *mockRepo) {
	t.Helper()
	svc, repo, _ := newTestService()
	tokens := auth.NewTokenService(testSecret)

	e := echo.New()
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(zerolog.Nop())
	api := e.Group("/api")
	patient := api.Group("/patient", auth.Guard(tokens, zerolog.Nop()), auth.RequireRole(auth.RolePatient))
	physician := api.Group("/physician", auth.Guard(tokens, zerolog.Nop()), auth.RequireRole(auth.RolePhysician))
	NewHandler(svc).RegisterRoutes(patient, physician)
	return e, repo
}

func tokenFor(t *testing.T, id auth.Identity) string {
	t.Helper()
	tok, _, err := auth.NewTokenService(testSecret).Issue(id.SubjectID, id.Role)
	require.NoError(t, err)
	return tok
}

func do(e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_BookAndCancel(t *testing.T) {
	e, repo := newTestServer(t)
	tok := tokenFor(t, ada)

	rec := do(e, http.MethodPost, "/api/patient/appointment/book",
		`{"physician_id":"10","date":"2025-05-02 10:00:00","reason":"checkup"}`, tok)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"Pending"`)
	require.Len(t, repo.appts, 1)

	rec = do(e, http.MethodPost, "/api/patient/appointment/book",
		`{"physician_id":10,"date":"2025-05-02 10:00:00"}`, tokenFor(t, alan))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Physician already has an appointment at this time"}`, rec.Body.String())

	rec = do(e, http.MethodPut, "/api/patient/appointment/1/cancel", "", tokenFor(t, alan))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPut, "/api/patient/appointment/1/cancel", "", tok)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, StatusCancelled, repo.appts[1].Status)
}

func TestHandler_BookRequiresToken(t *testing.T) {
	e, repo := newTestServer(t)

	rec := do(e, http.MethodPost, "/api/patient/appointment/book", `{"physician_id":10,"date":"2025-05-02 10:00:00"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, repo.appts)
	assert.Empty(t, repo.lockCalls)
}

func TestHandler_UpdateStatus(t *testing.T) {
	e, repo := newTestServer(t)
	rec := do(e, http.MethodPost, "/api/patient/appointment/book",
		`{"physician_id":10,"date":"2025-05-02 10:00:00"}`, tokenFor(t, ada))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(e, http.MethodPut, "/api/physician/appointment/1/status", `{"status":"Completed"}`, tokenFor(t, burke))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, http.MethodPut, "/api/physician/appointment/1/status", `{"status":"Completed"}`, tokenFor(t, grey))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, StatusCompleted, repo.appts[1].Status)

	rec = do(e, http.MethodPut, "/api/physician/appointment/abc/status", `{"status":"Completed"}`, tokenFor(t, grey))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Lists(t *testing.T) {
	e, _ := newTestServer(t)
	tok := tokenFor(t, ada)
	rec := do(e, http.MethodPost, "/api/patient/appointment/book",
		`{"physician_id":10,"date":"2025-05-02 10:00:00"}`, tok)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(e, http.MethodPost, "/api/patient/dashboard", "", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"physician_name":"Meredith Grey"`)

	rec = do(e, http.MethodGet, "/api/patient/appointments?limit=10", "", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"page":{"total":1,"limit":10,"offset":0,"has_more":false}`)

	rec = do(e, http.MethodGet, "/api/physician/appointments", "", tokenFor(t, grey))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"patient_name":"Ada Lovelace"`)
}

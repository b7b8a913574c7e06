package clinical

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/def-himani/mediflow/internal/platform/apperr"
	"github.com/def-himani/mediflow/pkg/civil"
)

func decodeCreate(t *testing.T, body string) *CreateRecordRequest {
	t.Helper()
	var r CreateRecordRequest
	require.NoError(t, json.Unmarshal([]byte(body), &r))
	return &r
}

func TestCreateRecordRequest_Validate(t *testing.T) {
	rec, err := decodeCreate(t, `{
		"patient_id":"1","visit_date":"2025-04-20","diagnosis":"  Flu ","symptoms":"",
		"follow_up_required":"Yes"
	}`).validate()
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.PatientID)
	assert.Equal(t, "2025-04-20", rec.VisitDate.String())
	assert.Equal(t, "Flu", *rec.Diagnosis)
	assert.Nil(t, rec.Symptoms)
	assert.Nil(t, rec.LabResults)
	assert.True(t, rec.FollowUpRequired)
}

func TestCreateRecordRequest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"empty", `{}`, "Missing fields: patient_id, visit_date"},
		{"no date", `{"patient_id":1}`, "Missing fields: visit_date"},
		{"bad date", `{"patient_id":1,"visit_date":"20/04/2025"}`, "Invalid visit_date, expected YYYY-MM-DD"},
		{"medicine without medication", `{"patient_id":1,"visit_date":"2025-04-20","prescriptions":[{"dosage":"5mg"}]}`,
			"prescriptions[0]: medication_id or medication_name is required"},
		{"patient id overflow", `{"patient_id":"3000000000","visit_date":"2025-04-20"}`, "Invalid patient_id"},
		{"medication id overflow", `{"patient_id":1,"visit_date":"2025-04-20","prescriptions":[{"medication_id":1},{"medication_id":2147483648}]}`,
			"prescriptions[1]: invalid medication_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeCreate(t, tt.body).validate()
			assertAppErr(t, err, apperr.KindValidation, tt.msg)
		})
	}
}

func TestMedicineRequest_Label(t *testing.T) {
	assert.Equal(t, "Aspirin", MedicineRequest{MedicationName: " Aspirin "}.label())
	assert.Equal(t, "#42", MedicineRequest{MedicationID: 42}.label())
}

func TestAgeOn(t *testing.T) {
	dob, err := civil.Parse("1990-06-15")
	require.NoError(t, err)

	assert.Equal(t, 34, ageOn(dob, time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 35, ageOn(dob, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 34, ageOn(dob, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)))
}

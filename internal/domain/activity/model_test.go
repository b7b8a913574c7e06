package activity

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/def-himani/mediflow/internal/platform/apperr"
	"github.com/def-himani/mediflow/pkg/flex"
)

func decodeRequest(t *testing.T, body string) *Request {
	t.Helper()
	var r Request
	require.NoError(t, json.Unmarshal([]byte(body), &r))
	return &r
}

func TestRequest_Patch(t *testing.T) {
	p, err := decodeRequest(t, `{"date":"2025-03-04","weight":"72.5","bp_systolic":120,"bp_diastolic":"80","calories":300,"duration":45}`).patch()
	require.NoError(t, err)
	assert.Equal(t, "2025-03-04", p.date.String())
	assert.Equal(t, 72.5, *p.weight)
	assert.Equal(t, "120/80", *p.bp)
	assert.Equal(t, 300, *p.calories)
	assert.Equal(t, 45, *p.duration)
}

func TestRequest_Aliases(t *testing.T) {
	p, err := decodeRequest(t, `{"log_date":"2025-03-04","bp":" 130 / 85 ","duration_of_physical_activity":"30","weight":null}`).patch()
	require.NoError(t, err)
	assert.Equal(t, "2025-03-04", p.date.String())
	assert.Equal(t, "130/85", *p.bp)
	assert.Equal(t, 30, *p.duration)
	assert.Nil(t, p.weight)

	p, err = decodeRequest(t, `{"bp":"100/70","bp_systolic":140,"bp_diastolic":90}`).patch()
	require.NoError(t, err)
	assert.Equal(t, "140/90", *p.bp)
}

func TestRequest_Rejections(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"bad date", `{"date":"03/04/2025"}`, "Invalid date, expected YYYY-MM-DD"},
		{"zero weight", `{"weight":0}`, "weight must be between 0 and 1000"},
		{"half bp", `{"bp_systolic":120}`, "bp_systolic and bp_diastolic must be provided together"},
		{"bp string garbage", `{"bp":"high"}`, "Invalid bp, expected systolic/diastolic"},
		{"systolic range", `{"bp":"310/80"}`, "bp_systolic must be between 50 and 300"},
		{"diastolic range", `{"bp_systolic":120,"bp_diastolic":20}`, "bp_diastolic must be between 30 and 200"},
		{"inverted", `{"bp":"80/120"}`, "bp_systolic must be greater than bp_diastolic"},
		{"negative calories", `{"calories":-5}`, "calories cannot be negative"},
		{"negative duration", `{"duration":"-1"}`, "duration cannot be negative"},
		{"calories overflow", `{"calories":3000000000}`, "calories cannot exceed 100000"},
		{"duration past a day", `{"duration_of_physical_activity":1441}`, "duration cannot exceed 1440 minutes"},
		{"duration overflow", `{"duration":"9999999999"}`, "duration cannot exceed 1440 minutes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeRequest(t, tt.body).patch()
			var ae *apperr.Error
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, apperr.KindValidation, ae.Kind)
			assert.Equal(t, tt.msg, ae.Message)
		})
	}
}

func TestFormatBP(t *testing.T) {
	assert.Equal(t, "118/76", FormatBP(118, 76))
}

func TestRequest_NonFiniteWeight(t *testing.T) {
	for _, w := range []string{`"NaN"`, `"Inf"`, `"-Inf"`} {
		var r Request
		assert.Error(t, json.Unmarshal([]byte(`{"weight":`+w+`}`), &r), w)
	}

	nan := flex.Float64(math.NaN())
	_, err := (&Request{Weight: &nan}).patch()
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "weight must be between 0 and 1000", ae.Message)
}

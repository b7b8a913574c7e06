package flex

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt64(t *testing.T) {
	tests := []struct {
		in   string
		want Int64
	}{
		{`7`, 7},
		{`"42"`, 42},
		{`" 9 "`, 9},
		{`""`, 0},
		{`null`, 0},
	}
	for _, tt := range tests {
		var got struct {
			ID Int64 `json:"id"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"id":`+tt.in+`}`), &got), tt.in)
		assert.Equal(t, tt.want, got.ID, tt.in)
	}

	var bad Int64
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`1.5`), &bad))
}

func TestFloat64(t *testing.T) {
	var f Float64
	require.NoError(t, json.Unmarshal([]byte(`"72.5"`), &f))
	assert.Equal(t, Float64(72.5), f)
	require.NoError(t, json.Unmarshal([]byte(`80`), &f))
	assert.Equal(t, Float64(80), f)
	assert.Error(t, json.Unmarshal([]byte(`"heavy"`), &f))
}

func TestFloat64_RejectsNonFinite(t *testing.T) {
	for _, in := range []string{`"NaN"`, `"nan"`, `"Inf"`, `"-Inf"`, `"+Inf"`, `"infinity"`} {
		var f Float64
		assert.Error(t, json.Unmarshal([]byte(in), &f), in)
	}
}

func TestBool(t *testing.T) {
	for in, want := range map[string]Bool{
		`true`:   true,
		`false`:  false,
		`"Yes"`:  true,
		`"no"`:   false,
		`"TRUE"`: true,
		`1`:      true,
		`"0"`:    false,
	} {
		var b Bool
		require.NoError(t, json.Unmarshal([]byte(in), &b), in)
		assert.Equal(t, want, b, in)
	}

	var b Bool
	assert.Error(t, json.Unmarshal([]byte(`"maybe"`), &b))
}

// Package flex holds JSON scalars that accept the loose encodings web forms
// send: numbers as strings and yes/no flags.
package flex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Int64 decodes from a JSON number or a numeric string. Null and "" leave
// it zero.
type Int64 int64

func (i *Int64) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*i = 0
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*i = 0
			return nil
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %s", b)
	}
	*i = Int64(n)
	return nil
}

// Float64 decodes from a JSON number or a numeric string. NaN and the
// infinities are rejected.
type Float64 float64

func (f *Float64) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return fmt.Errorf("invalid number %s", b)
	}
	*f = Float64(n)
	return nil
}

// Bool decodes from true/false, 1/0 or the strings "yes", "no", "true",
// "false", "1", "0" in any case.
type Bool bool

func (v *Bool) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		*v = true
	case "false", "no", "n", "0":
		*v = false
	default:
		return fmt.Errorf("invalid boolean %s", b)
	}
	return nil
}

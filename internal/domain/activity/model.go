package activity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/def-himani/mediflow/internal/platform/apperr"
	"github.com/def-himani/mediflow/pkg/civil"
	"github.com/def-himani/mediflow/pkg/flex"
)

// Blood pressure bounds in mmHg.
const (
	minSystolic  = 50
	maxSystolic  = 300
	minDiastolic = 30
	maxDiastolic = 200
)

const (
	maxWeight   = 1000
	maxCalories = 100000
	maxDuration = 24 * 60 // minutes
)

// Log is one activity_log row. BP is stored as "systolic/diastolic".
type Log struct {
	ID          int64      `json:"log_id"`
	PatientID   int64      `json:"patient_id"`
	PatientName string     `json:"patient_name,omitempty"`
	LogDate     civil.Date `json:"log_date"`
	Weight      *float64   `json:"weight"`
	BP          *string    `json:"bp"`
	Calories    *int       `json:"calories"`
	Duration    *int       `json:"duration_of_physical_activity"`
}

// Request is the body of the create and edit endpoints. "date" and
// "log_date" are synonyms, as are "duration" and
// "duration_of_physical_activity". Blood pressure may be sent as the two
// components or as a "S/D" string; components win when both are present.
type Request struct {
	Date        *string       `json:"date"`
	LogDate     *string       `json:"log_date"`
	Weight      *flex.Float64 `json:"weight"`
	BP          *string       `json:"bp"`
	BPSystolic  *flex.Int64   `json:"bp_systolic"`
	BPDiastolic *flex.Int64   `json:"bp_diastolic"`
	Calories    *flex.Int64   `json:"calories"`
	Duration    *flex.Int64   `json:"duration"`
	DurationAlt *flex.Int64   `json:"duration_of_physical_activity"`
}

// patch is a validated Request. Nil fields are left unchanged.
type patch struct {
	date     *civil.Date
	weight   *float64
	bp       *string
	calories *int
	duration *int
}

func (p patch) empty() bool {
	return p.date == nil && p.weight == nil && p.bp == nil && p.calories == nil && p.duration == nil
}

func (p patch) apply(l *Log) {
	if p.date != nil {
		l.LogDate = *p.date
	}
	if p.weight != nil {
		l.Weight = p.weight
	}
	if p.bp != nil {
		l.BP = p.bp
	}
	if p.calories != nil {
		l.Calories = p.calories
	}
	if p.duration != nil {
		l.Duration = p.duration
	}
}

func (r *Request) patch() (patch, error) {
	var p patch

	if raw := firstString(r.Date, r.LogDate); raw != nil {
		d, err := civil.Parse(*raw)
		if err != nil {
			return p, apperr.Validation("Invalid date, expected YYYY-MM-DD")
		}
		p.date = &d
	}

	if r.Weight != nil {
		w := float64(*r.Weight)
		if !(w > 0 && w <= maxWeight) {
			return p, apperr.Validation("weight must be between 0 and %d", maxWeight)
		}
		p.weight = &w
	}

	bp, err := r.bloodPressure()
	if err != nil {
		return p, err
	}
	p.bp = bp

	if r.Calories != nil {
		if *r.Calories < 0 {
			return p, apperr.Validation("calories cannot be negative")
		}
		if *r.Calories > maxCalories {
			return p, apperr.Validation("calories cannot exceed %d", maxCalories)
		}
		c := int(*r.Calories)
		p.calories = &c
	}

	dur := r.Duration
	if dur == nil {
		dur = r.DurationAlt
	}
	if dur != nil {
		if *dur < 0 {
			return p, apperr.Validation("duration cannot be negative")
		}
		if *dur > maxDuration {
			return p, apperr.Validation("duration cannot exceed %d minutes", maxDuration)
		}
		d := int(*dur)
		p.duration = &d
	}
	return p, nil
}

func (r *Request) bloodPressure() (*string, error) {
	var sys, dia int64
	switch {
	case r.BPSystolic != nil || r.BPDiastolic != nil:
		if r.BPSystolic == nil || r.BPDiastolic == nil {
			return nil, apperr.Validation("bp_systolic and bp_diastolic must be provided together")
		}
		sys, dia = int64(*r.BPSystolic), int64(*r.BPDiastolic)
	case r.BP != nil && strings.TrimSpace(*r.BP) != "":
		var ok bool
		sys, dia, ok = parseBP(*r.BP)
		if !ok {
			return nil, apperr.Validation("Invalid bp, expected systolic/diastolic")
		}
	default:
		return nil, nil
	}

	if sys < minSystolic || sys > maxSystolic {
		return nil, apperr.Validation("bp_systolic must be between %d and %d", minSystolic, maxSystolic)
	}
	if dia < minDiastolic || dia > maxDiastolic {
		return nil, apperr.Validation("bp_diastolic must be between %d and %d", minDiastolic, maxDiastolic)
	}
	if sys <= dia {
		return nil, apperr.Validation("bp_systolic must be greater than bp_diastolic")
	}
	s := FormatBP(sys, dia)
	return &s, nil
}

// FormatBP renders a reading the way it is stored.
func FormatBP(systolic, diastolic int64) string {
	return fmt.Sprintf("%d/%d", systolic, diastolic)
}

func parseBP(s string) (int64, int64, bool) {
	sysStr, diaStr, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return 0, 0, false
	}
	sys, err1 := strconv.ParseInt(strings.TrimSpace(sysStr), 10, 64)
	dia, err2 := strconv.ParseInt(strings.TrimSpace(diaStr), 10, 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return sys, dia, true
}

func firstString(vals ...*string) *string {
	for _, v := range vals {
		if v != nil && strings.TrimSpace(*v) != "" {
			return v
		}
	}
	return nil
}

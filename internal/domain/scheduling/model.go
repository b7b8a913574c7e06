package scheduling

import (
	"math"
	"strings"
	"time"

	"github.com/def-himani/mediflow/internal/platform/apperr"
	"github.com/def-himani/mediflow/pkg/civil"
	"github.com/def-himani/mediflow/pkg/flex"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

var transitions = map[Status][]Status{
	StatusPending: {StatusCompleted, StatusCancelled},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an appointment in s may move to next.
// Completed and Cancelled are terminal.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseStatus matches a status name case-insensitively.
func ParseStatus(s string) (Status, bool) {
	s = strings.TrimSpace(s)
	for _, st := range []Status{StatusPending, StatusCompleted, StatusCancelled} {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

type Appointment struct {
	ID          int64     `json:"appointment_id"`
	PatientID   int64     `json:"patient_id"`
	PhysicianID int64     `json:"physician_id"`
	Date        time.Time `json:"date"`
	Status      Status    `json:"status"`
	Reason      *string   `json:"reason"`
	Notes       *string   `json:"notes"`
	CreatedAt   time.Time `json:"-"`
}

// View is an appointment joined with the counterpart's display name.
type View struct {
	Appointment
	PhysicianName string `json:"physician_name,omitempty"`
	PatientName   string `json:"patient_name,omitempty"`
}

// BookRequest is the body of POST /api/patient/appointment/book.
type BookRequest struct {
	PhysicianID flex.Int64 `json:"physician_id"`
	Date        string     `json:"date"`
	Reason      *string    `json:"reason"`
	Notes       *string    `json:"notes"`
}

// validate checks the request shape and returns the parsed timestamp. It
// does not touch the store.
func (r *BookRequest) validate(now time.Time) (time.Time, error) {
	var missing []string
	if r.PhysicianID <= 0 {
		missing = append(missing, "physician_id")
	}
	if strings.TrimSpace(r.Date) == "" {
		missing = append(missing, "date")
	}
	if len(missing) > 0 {
		return time.Time{}, apperr.Validation("Missing fields: %s", strings.Join(missing, ", "))
	}

	if r.PhysicianID > math.MaxInt32 {
		return time.Time{}, apperr.Validation("Invalid physician_id")
	}

	at, err := civil.ParseTimestamp(r.Date)
	if err != nil {
		return time.Time{}, apperr.Validation("Invalid date format, expected YYYY-MM-DD HH:MM:SS")
	}
	if !at.After(now) {
		return time.Time{}, apperr.Validation("Appointment date must be in the future")
	}
	return at, nil
}

// StatusRequest is the body of PUT /api/physician/appointment/:id/status.
type StatusRequest struct {
	Status string `json:"status"`
}

package scheduling

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("appointment not found")
	// ErrSlotTaken is returned when the physician already has a live
	// appointment at the same timestamp.
	ErrSlotTaken = errors.New("physician slot taken")
	// ErrUnknownParty is returned when the patient or physician row does not
	// exist.
	ErrUnknownParty = errors.New("unknown patient or physician")
)

type Repository interface {
	// LockPhysicianSchedule serializes bookings for one physician until the
	// current transaction ends.
	LockPhysicianSchedule(ctx context.Context, physicianID int64) error
	PhysicianExists(ctx context.Context, physicianID int64) (bool, error)
	// SlotTaken reports whether a non-cancelled appointment exists for the
	// physician at exactly at.
	SlotTaken(ctx context.Context, physicianID int64, at time.Time) (bool, error)

	Create(ctx context.Context, a *Appointment) error
	// GetForUpdate loads an appointment and row-locks it for the current
	// transaction.
	GetForUpdate(ctx context.Context, id int64) (*Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error

	// ListForPatient returns the patient's appointments, newest first. A
	// limit of zero returns all of them.
	ListForPatient(ctx context.Context, patientID int64, limit, offset int) ([]View, int, error)
	ListForPhysician(ctx context.Context, physicianID int64, limit, offset int) ([]View, int, error)

	HasAppointment(ctx context.Context, patientID, physicianID int64) (bool, error)
	// NextForPhysician returns the earliest pending appointment at or after
	// from, or nil when there is none.
	NextForPhysician(ctx context.Context, physicianID int64, from time.Time) (*View, error)
}

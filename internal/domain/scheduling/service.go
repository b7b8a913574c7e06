package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/def-himani/mediflow/internal/platform/apperr"
	"github.com/def-himani/mediflow/internal/platform/auth"
	"github.com/def-himani/mediflow/internal/platform/db"
	"github.com/def-himani/mediflow/pkg/pagination"
)

const (
	MsgNotFound         = "Appointment not found"
	MsgSlotTaken        = "Physician already has an appointment at this time"
	MsgUnknownPhysician = "Physician not found"
	MsgInvalidStatus    = "Invalid status, expected Pending, Completed or Cancelled"
)

var (
	patientAppointment   = auth.PatientOwned(func(a *Appointment) int64 { return a.PatientID }, MsgNotFound)
	physicianAppointment = auth.PhysicianOwned(func(a *Appointment) int64 { return a.PhysicianID })
)

type Service struct {
	repo Repository
	tx   db.Transactor
	now  func() time.Time
}

func NewService(repo Repository, tx db.Transactor) *Service {
	return &Service{repo: repo, tx: tx, now: time.Now}
}

// WithClock returns a copy of s that reads the current time from now.
func (s *Service) WithClock(now func() time.Time) *Service {
	cp := *s
	cp.now = now
	return &cp
}

// Book creates a pending appointment for the calling patient. The
// physician's schedule is locked for the transaction so two concurrent
// bookings of the same slot cannot both pass the conflict check.
func (s *Service) Book(ctx context.Context, id auth.Identity, req *BookRequest) (*Appointment, error) {
	at, err := req.validate(s.now())
	if err != nil {
		return nil, err
	}
	a := &Appointment{
		PatientID:   id.SubjectID,
		PhysicianID: int64(req.PhysicianID),
		Date:        at,
		Status:      StatusPending,
		Reason:      req.Reason,
		Notes:       req.Notes,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.LockPhysicianSchedule(ctx, a.PhysicianID); err != nil {
			return apperr.Storage("book appointment", err)
		}
		ok, err := s.repo.PhysicianExists(ctx, a.PhysicianID)
		if err != nil {
			return apperr.Storage("book appointment", err)
		}
		if !ok {
			return apperr.Validation(MsgUnknownPhysician)
		}
		taken, err := s.repo.SlotTaken(ctx, a.PhysicianID, a.Date)
		if err != nil {
			return apperr.Storage("book appointment", err)
		}
		if taken {
			return apperr.Conflict(MsgSlotTaken)
		}
		return writeErr("book appointment", s.repo.Create(ctx, a))
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Cancel moves the calling patient's own appointment to Cancelled.
func (s *Service) Cancel(ctx context.Context, id auth.Identity, appointmentID int64) (*Appointment, error) {
	return s.transition(ctx, id, appointmentID, StatusCancelled, patientAppointment)
}

// UpdateStatus applies a physician's status change to one of their own
// appointments.
func (s *Service) UpdateStatus(ctx context.Context, id auth.Identity, appointmentID int64, req *StatusRequest) (*Appointment, error) {
	next, ok := ParseStatus(req.Status)
	if !ok {
		return nil, apperr.Validation(MsgInvalidStatus)
	}
	return s.transition(ctx, id, appointmentID, next, physicianAppointment)
}

func (s *Service) transition(ctx context.Context, id auth.Identity, appointmentID int64, next Status, rule auth.Rule[*Appointment]) (*Appointment, error) {
	if appointmentID <= 0 {
		return nil, apperr.NotFound(MsgNotFound)
	}

	var out *Appointment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		a, err := s.repo.GetForUpdate(ctx, appointmentID)
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound(MsgNotFound)
		}
		if err != nil {
			return apperr.Storage("load appointment", err)
		}
		if err := rule.Allow(id, a); err != nil {
			return err
		}
		if !a.Status.CanTransition(next) {
			return apperr.Validation("Cannot change appointment status from %s to %s", a.Status, next)
		}
		if err := writeErr("update appointment", s.repo.UpdateStatus(ctx, a.ID, next)); err != nil {
			return err
		}
		a.Status = next
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func writeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrSlotTaken):
		return apperr.Conflict(MsgSlotTaken)
	case errors.Is(err, ErrUnknownParty):
		return apperr.Validation(MsgUnknownPhysician)
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound(MsgNotFound)
	default:
		return apperr.Storage(op, err)
	}
}

// ListForPatient pages through the caller's own appointments.
func (s *Service) ListForPatient(ctx context.Context, id auth.Identity, p pagination.Params) ([]View, pagination.Page, error) {
	out, total, err := s.repo.ListForPatient(ctx, id.SubjectID, p.Limit, p.Offset)
	if err != nil {
		return nil, pagination.Page{}, apperr.Storage("list appointments", err)
	}
	return out, p.Page(total), nil
}

// Dashboard returns every appointment of the calling patient with the
// physician's name, newest first.
func (s *Service) Dashboard(ctx context.Context, id auth.Identity) ([]View, error) {
	out, _, err := s.repo.ListForPatient(ctx, id.SubjectID, 0, 0)
	if err != nil {
		return nil, apperr.Storage("dashboard", err)
	}
	return out, nil
}

// ListForPhysician pages through the caller's appointments with patient
// names.
func (s *Service) ListForPhysician(ctx context.Context, id auth.Identity, p pagination.Params) ([]View, pagination.Page, error) {
	out, total, err := s.repo.ListForPhysician(ctx, id.SubjectID, p.Limit, p.Offset)
	if err != nil {
		return nil, pagination.Page{}, apperr.Storage("list appointments", err)
	}
	return out, p.Page(total), nil
}

// HasAppointment implements auth.LinkChecker.
func (s *Service) HasAppointment(ctx context.Context, patientID, physicianID int64) (bool, error) {
	return s.repo.HasAppointment(ctx, patientID, physicianID)
}

// NextForPhysician returns the physician's next pending appointment, or nil.
func (s *Service) NextForPhysician(ctx context.Context, physicianID int64) (*View, error) {
	v, err := s.repo.NextForPhysician(ctx, physicianID, s.now().UTC().Truncate(time.Second))
	if err != nil {
		return nil, fmt.Errorf("next appointment: %w", err)
	}
	return v, nil
}

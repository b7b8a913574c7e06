package scheduling

import (
	"context"
	"sort"
	"time"

	"github.com/def-himani/mediflow/internal/platform/db/dbtest"
)

type mockRepo struct {
	nextID       int64
	appts        map[int64]*Appointment
	physicians   map[int64]string
	patients     map[int64]string
	lockCalls    []int64
	skipSlotTest bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		appts:      make(map[int64]*Appointment),
		physicians: map[int64]string{10: "Meredith Grey", 11: "Preston Burke"},
		patients:   map[int64]string{1: "Ada Lovelace", 2: "Alan Turing"},
	}
}

func (m *mockRepo) snapshot() func() {
	saved := make(map[int64]*Appointment, len(m.appts))
	for k, v := range m.appts {
		cp := *v
		saved[k] = &cp
	}
	nextID := m.nextID
	return func() { m.appts, m.nextID = saved, nextID }
}

func (m *mockRepo) LockPhysicianSchedule(_ context.Context, physicianID int64) error {
	m.lockCalls = append(m.lockCalls, physicianID)
	return nil
}

func (m *mockRepo) PhysicianExists(_ context.Context, physicianID int64) (bool, error) {
	_, ok := m.physicians[physicianID]
	return ok, nil
}

func (m *mockRepo) live(physicianID int64, at time.Time, except int64) bool {
	for _, a := range m.appts {
		if a.ID != except && a.PhysicianID == physicianID && a.Date.Equal(at) && a.Status != StatusCancelled {
			return true
		}
	}
	return false
}

func (m *mockRepo) SlotTaken(_ context.Context, physicianID int64, at time.Time) (bool, error) {
	if m.skipSlotTest {
		return false, nil
	}
	return m.live(physicianID, at, 0), nil
}

// Create enforces the partial unique index.
func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	if m.live(a.PhysicianID, a.Date, 0) {
		return ErrSlotTaken
	}
	m.nextID++
	a.ID = m.nextID
	a.CreatedAt = time.Now()
	cp := *a
	m.appts[a.ID] = &cp
	return nil
}

func (m *mockRepo) GetForUpdate(_ context.Context, id int64) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id int64, status Status) error {
	a, ok := m.appts[id]
	if !ok {
		return ErrNotFound
	}
	if status != StatusCancelled && m.live(a.PhysicianID, a.Date, id) {
		return ErrSlotTaken
	}
	a.Status = status
	return nil
}

func (m *mockRepo) list(match func(*Appointment) bool, name func(*Appointment, *View), limit, offset int) ([]View, int) {
	out := []View{}
	for _, a := range m.appts {
		if match(a) {
			v := View{Appointment: *a}
			name(a, &v)
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	total := len(out)
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, total
}

func (m *mockRepo) ListForPatient(_ context.Context, patientID int64, limit, offset int) ([]View, int, error) {
	out, total := m.list(
		func(a *Appointment) bool { return a.PatientID == patientID },
		func(a *Appointment, v *View) { v.PhysicianName = m.physicians[a.PhysicianID] },
		limit, offset)
	return out, total, nil
}

func (m *mockRepo) ListForPhysician(_ context.Context, physicianID int64, limit, offset int) ([]View, int, error) {
	out, total := m.list(
		func(a *Appointment) bool { return a.PhysicianID == physicianID },
		func(a *Appointment, v *View) { v.PatientName = m.patients[a.PatientID] },
		limit, offset)
	return out, total, nil
}

func (m *mockRepo) HasAppointment(_ context.Context, patientID, physicianID int64) (bool, error) {
	for _, a := range m.appts {
		if a.PatientID == patientID && a.PhysicianID == physicianID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) NextForPhysician(_ context.Context, physicianID int64, from time.Time) (*View, error) {
	var next *View
	for _, a := range m.appts {
		if a.PhysicianID != physicianID || a.Status != StatusPending || a.Date.Before(from) {
			continue
		}
		if next == nil || a.Date.Before(next.Date) {
			next = &View{Appointment: *a, PatientName: m.patients[a.PatientID]}
		}
	}
	return next, nil
}

var testNow = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestService() (*Service, *mockRepo, *dbtest.Transactor) {
	repo := newMockRepo()
	tx := &dbtest.Transactor{Snapshot: repo.snapshot}
	svc := NewService(repo, tx).WithClock(func() time.Time { return testNow })
	return svc, repo, tx
}

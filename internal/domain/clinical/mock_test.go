package clinical

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/def-himani/mediflow/internal/domain/activity"
	"github.com/def-himani/mediflow/internal/domain/scheduling"
	"github.com/def-himani/mediflow/internal/platform/db/dbtest"
	"github.com/def-himani/mediflow/pkg/civil"
)

var testNow = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

type mockRepo struct {
	nextID        int64
	records       map[int64]*HealthRecord
	prescriptions map[int64]*Prescription
	medicines     []Medicine

	names    map[int64]string
	dobs     map[int64]civil.Date
	catalog  map[int64]string
	links    map[int64][]int64
	lastSeen map[int64]time.Time

	next   *scheduling.View
	latest *activity.Log
}

func newMockRepo() *mockRepo {
	dob, _ := civil.Parse("1990-06-15")
	return &mockRepo{
		records:       make(map[int64]*HealthRecord),
		prescriptions: make(map[int64]*Prescription),
		names: map[int64]string{
			1: "Ada Lovelace", 2: "Alan Turing",
			10: "Meredith Grey", 11: "Preston Burke",
		},
		dobs:     map[int64]civil.Date{1: dob},
		catalog:  map[int64]string{1: "Amoxicillin", 2: "Ibuprofen"},
		links:    map[int64][]int64{10: {1}, 11: {2}},
		lastSeen: map[int64]time.Time{1: testNow.Add(-48 * time.Hour), 2: testNow.Add(-24 * time.Hour)},
	}
}

func (m *mockRepo) snapshot() func() {
	records := make(map[int64]*HealthRecord, len(m.records))
	for k, v := range m.records {
		cp := *v
		records[k] = &cp
	}
	prescriptions := make(map[int64]*Prescription, len(m.prescriptions))
	for k, v := range m.prescriptions {
		cp := *v
		prescriptions[k] = &cp
	}
	medicines := append([]Medicine(nil), m.medicines...)
	return func() {
		m.records, m.prescriptions, m.medicines = records, prescriptions, medicines
	}
}

func (m *mockRepo) rows() int {
	return len(m.records) + len(m.prescriptions) + len(m.medicines)
}

func (m *mockRepo) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *mockRepo) CreateRecord(_ context.Context, r *HealthRecord) error {
	r.ID = m.id()
	cp := *r
	m.records[r.ID] = &cp
	return nil
}

func (m *mockRepo) CreatePrescription(_ context.Context, p *Prescription) error {
	p.ID = m.id()
	m.prescriptions[p.ID] = &Prescription{ID: p.ID, RecordID: p.RecordID, DateIssued: p.DateIssued}
	return nil
}

func (m *mockRepo) CreateMedicine(_ context.Context, med *Medicine) error {
	name, ok := m.catalog[med.MedicationID]
	if !ok {
		return ErrUnknownMedication
	}
	med.ID = m.id()
	med.MedicationName = name
	m.medicines = append(m.medicines, *med)
	return nil
}

func (m *mockRepo) view(r *HealthRecord) RecordView {
	return RecordView{HealthRecord: *r, PatientName: m.names[r.PatientID], PhysicianName: m.names[r.PhysicianID]}
}

func (m *mockRepo) Get(_ context.Context, id int64) (*RecordView, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	v := m.view(r)
	return &v, nil
}

func (m *mockRepo) ListForPatient(_ context.Context, patientID int64, limit, offset int) ([]RecordView, int, error) {
	out := []RecordView{}
	for _, r := range m.records {
		if r.PatientID == patientID {
			out = append(out, m.view(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VisitDate.Equal(out[j].VisitDate.Time) {
			return out[i].ID > out[j].ID
		}
		return out[i].VisitDate.After(out[j].VisitDate.Time)
	})
	total := len(out)
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (m *mockRepo) Prescriptions(_ context.Context, recordID int64) ([]Prescription, error) {
	out := []Prescription{}
	for _, p := range m.prescriptions {
		if p.RecordID != recordID {
			continue
		}
		cp := *p
		cp.Medicines = []Medicine{}
		for _, med := range m.medicines {
			if med.PrescriptionID == p.ID {
				cp.Medicines = append(cp.Medicines, med)
			}
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockRepo) LinkedPatients(_ context.Context, physicianID int64) ([]PatientSummary, error) {
	out := []PatientSummary{}
	for _, pid := range m.links[physicianID] {
		s := PatientSummary{PatientID: pid, PatientName: m.names[pid]}
		if dob, ok := m.dobs[pid]; ok {
			d := dob
			s.DateOfBirth = &d
		}
		if seen, ok := m.lastSeen[pid]; ok {
			t := seen
			s.RecentDate = &t
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *mockRepo) RecentMedicines(_ context.Context, physicianID int64, limit int) ([]PrescribedMedicine, error) {
	out := []PrescribedMedicine{}
	for i := len(m.medicines) - 1; i >= 0 && len(out) < limit; i-- {
		med := m.medicines[i]
		p := m.prescriptions[med.PrescriptionID]
		r := m.records[p.RecordID]
		if r.PhysicianID != physicianID {
			continue
		}
		out = append(out, PrescribedMedicine{
			Medicine:    med,
			RecordID:    r.ID,
			PatientID:   r.PatientID,
			PatientName: m.names[r.PatientID],
			DateIssued:  p.DateIssued,
		})
	}
	return out, nil
}

func (m *mockRepo) HasAppointment(_ context.Context, patientID, physicianID int64) (bool, error) {
	for _, pid := range m.links[physicianID] {
		if pid == patientID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) ResolveMedication(_ context.Context, id int64, name string) (int64, bool, error) {
	if id > 0 {
		_, ok := m.catalog[id]
		return id, ok, nil
	}
	for cid, cname := range m.catalog {
		if strings.EqualFold(cname, strings.TrimSpace(name)) {
			return cid, true, nil
		}
	}
	return 0, false, nil
}

func (m *mockRepo) NextForPhysician(_ context.Context, _ int64) (*scheduling.View, error) {
	return m.next, nil
}

func (m *mockRepo) LatestForPhysician(_ context.Context, _ int64) (*activity.Log, error) {
	return m.latest, nil
}

func newTestService() (*Service, *mockRepo, *dbtest.Transactor) {
	repo := newMockRepo()
	tx := &dbtest.Transactor{Snapshot: repo.snapshot}
	svc := NewService(repo, tx, repo, repo, repo, repo, zerolog.Nop()).WithClock(func() time.Time { return testNow })
	return svc, repo, tx
}

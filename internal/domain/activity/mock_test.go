package activity

import (
	"context"
	"sort"

	"github.com/def-himani/mediflow/internal/platform/db/dbtest"
)

type mockRepo struct {
	nextID int64
	logs   map[int64]*Log
	// links maps physician id to the patient ids they have appointments with.
	links map[int64][]int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		logs:  make(map[int64]*Log),
		links: map[int64][]int64{10: {1}},
	}
}

func (m *mockRepo) snapshot() func() {
	saved := make(map[int64]*Log, len(m.logs))
	for k, v := range m.logs {
		cp := *v
		saved[k] = &cp
	}
	return func() { m.logs = saved }
}

func (m *mockRepo) Create(_ context.Context, l *Log) error {
	m.nextID++
	l.ID = m.nextID
	cp := *l
	m.logs[l.ID] = &cp
	return nil
}

func (m *mockRepo) Get(_ context.Context, id int64) (*Log, error) {
	l, ok := m.logs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *mockRepo) GetForUpdate(ctx context.Context, id int64) (*Log, error) {
	return m.Get(ctx, id)
}

func (m *mockRepo) Update(_ context.Context, l *Log) error {
	if _, ok := m.logs[l.ID]; !ok {
		return ErrNotFound
	}
	cp := *l
	m.logs[l.ID] = &cp
	return nil
}

func (m *mockRepo) ListForPatient(_ context.Context, patientID int64, limit, offset int) ([]Log, int, error) {
	out := []Log{}
	for _, l := range m.logs {
		if l.PatientID == patientID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LogDate.After(out[j].LogDate.Time) })
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

func (m *mockRepo) LatestForPhysician(_ context.Context, physicianID int64) (*Log, error) {
	var latest *Log
	for _, pid := range m.links[physicianID] {
		for _, l := range m.logs {
			if l.PatientID == pid && (latest == nil || l.LogDate.After(latest.LogDate.Time)) {
				cp := *l
				latest = &cp
			}
		}
	}
	return latest, nil
}

// HasAppointment lets the mock double as the link checker.
func (m *mockRepo) HasAppointment(_ context.Context, patientID, physicianID int64) (bool, error) {
	for _, pid := range m.links[physicianID] {
		if pid == patientID {
			return true, nil
		}
	}
	return false, nil
}

func newTestService() (*Service, *mockRepo, *dbtest.Transactor) {
	repo := newMockRepo()
	tx := &dbtest.Transactor{Snapshot: repo.snapshot}
	return NewService(repo, tx, repo), repo, tx
}

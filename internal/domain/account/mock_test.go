package account

import (
	"context"
	"time"

	"github.com/def-himani/mediflow/internal/platform/auth"
	"github.com/def-himani/mediflow/internal/platform/db/dbtest"
)

type mockRepo struct {
	nextID     int64
	accounts   map[int64]*Account
	patients   map[int64]*Patient
	physicians map[int64]*Physician
	insurances map[int64]string

	failCreatePatient error
	locked            []int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		accounts:   make(map[int64]*Account),
		patients:   make(map[int64]*Patient),
		physicians: make(map[int64]*Physician),
		insurances: map[int64]string{1: "Blue Cross"},
	}
}

// snapshot captures every table so a failed transaction can be undone.
func (m *mockRepo) snapshot() func() {
	accounts := make(map[int64]*Account, len(m.accounts))
	for k, v := range m.accounts {
		cp := *v
		accounts[k] = &cp
	}
	patients := make(map[int64]*Patient, len(m.patients))
	for k, v := range m.patients {
		cp := *v
		patients[k] = &cp
	}
	physicians := make(map[int64]*Physician, len(m.physicians))
	for k, v := range m.physicians {
		cp := *v
		physicians[k] = &cp
	}
	nextID := m.nextID
	return func() {
		m.accounts, m.patients, m.physicians, m.nextID = accounts, patients, physicians, nextID
	}
}

func (m *mockRepo) ExistsByUserNameOrEmail(_ context.Context, userName, email string) (bool, error) {
	for _, a := range m.accounts {
		if a.UserName == userName || a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) EmailTakenByOther(_ context.Context, email string, accountID int64) (bool, error) {
	for _, a := range m.accounts {
		if a.Email == email && a.ID != accountID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) CreateAccount(_ context.Context, a *Account) error {
	for _, existing := range m.accounts {
		if existing.UserName == a.UserName || existing.Email == a.Email {
			return ErrDuplicate
		}
	}
	m.nextID++
	a.ID = m.nextID
	a.CreatedAt = time.Now()
	cp := *a
	m.accounts[a.ID] = &cp
	return nil
}

func (m *mockRepo) CreatePatient(_ context.Context, p *Patient) error {
	if m.failCreatePatient != nil {
		return m.failCreatePatient
	}
	if p.InsuranceID != nil {
		if _, ok := m.insurances[*p.InsuranceID]; !ok {
			return ErrUnknownReference
		}
	}
	cp := *p
	m.patients[p.AccountID] = &cp
	return nil
}

func (m *mockRepo) CreatePhysician(_ context.Context, p *Physician) error {
	cp := *p
	m.physicians[p.AccountID] = &cp
	return nil
}

func (m *mockRepo) GetCredentials(_ context.Context, userName string, role auth.Role) (*Account, error) {
	for _, a := range m.accounts {
		if a.UserName == userName && a.Role == role {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) LockAccount(_ context.Context, id int64) error {
	if _, ok := m.accounts[id]; !ok {
		return ErrNotFound
	}
	m.locked = append(m.locked, id)
	return nil
}

func (m *mockRepo) GetPatientProfile(_ context.Context, id int64) (*PatientProfile, error) {
	a, ok := m.accounts[id]
	p, ok2 := m.patients[id]
	if !ok || !ok2 {
		return nil, ErrNotFound
	}
	out := &PatientProfile{Account: *a, Patient: *p}
	if p.InsuranceID != nil {
		name := m.insurances[*p.InsuranceID]
		out.InsuranceName = &name
	}
	return out, nil
}

func (m *mockRepo) GetPhysicianProfile(_ context.Context, id int64) (*PhysicianProfile, error) {
	a, ok := m.accounts[id]
	p, ok2 := m.physicians[id]
	if !ok || !ok2 {
		return nil, ErrNotFound
	}
	return &PhysicianProfile{Account: *a, Physician: *p}, nil
}

func (m *mockRepo) UpdateAccount(_ context.Context, a *Account) error {
	if _, ok := m.accounts[a.ID]; !ok {
		return ErrNotFound
	}
	cp := *a
	m.accounts[a.ID] = &cp
	return nil
}

func (m *mockRepo) UpdatePatient(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.AccountID]; !ok {
		return ErrNotFound
	}
	if p.InsuranceID != nil {
		if _, ok := m.insurances[*p.InsuranceID]; !ok {
			return ErrUnknownReference
		}
	}
	cp := *p
	m.patients[p.AccountID] = &cp
	return nil
}

func (m *mockRepo) UpdatePhysician(_ context.Context, p *Physician) error {
	if _, ok := m.physicians[p.AccountID]; !ok {
		return ErrNotFound
	}
	cp := *p
	m.physicians[p.AccountID] = &cp
	return nil
}

type stubHasher struct{}

func (stubHasher) Digest(plaintext string) (string, error) { return "digest:" + plaintext, nil }
func (stubHasher) Verify(plaintext, digest string) bool  { return digest == "digest:"+plaintext }

// countingHasher records every digest Verify is asked to check.
type countingHasher struct {
	stubHasher
	checked []string
}

func (h *countingHasher) Verify(plaintext, digest string) bool {
	h.checked = append(h.checked, digest)
	return h.stubHasher.Verify(plaintext, digest)
}

var testSecret = []byte("account-test-secret-key-0123456789")

func newTestService() (*Service, *mockRepo, *dbtest.Transactor) {
	repo := newMockRepo()
	tx := &dbtest.Transactor{Snapshot: repo.snapshot}
	svc := NewService(repo, tx, stubHasher{}, auth.NewTokenService(testSecret))
	return svc, repo, tx
}

func strPtr(s string) *string { return &s }
func int64Ptr(v int64) *int64 { return &v }

func validSignup(userName string) *SignupRequest {
	return &SignupRequest{
		UserName:  strPtr(userName),
		Password:  strPtr("pa55word"),
		FirstName: strPtr("Ada"),
		LastName:  strPtr("Lovelace"),
		Email:     strPtr(userName + "@example.com"),
		Phone:     strPtr("555-0100"),
	}
}

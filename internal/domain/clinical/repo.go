package clinical

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("health record not found")
	// ErrUnknownMedication is returned when a medicine references a
	// medication id that does not exist.
	ErrUnknownMedication = errors.New("unknown medication")
)

type Repository interface {
	CreateRecord(ctx context.Context, r *HealthRecord) error
	CreatePrescription(ctx context.Context, p *Prescription) error
	CreateMedicine(ctx context.Context, m *Medicine) error

	Get(ctx context.Context, id int64) (*RecordView, error)
	// ListForPatient returns the patient's records, latest visit first. A
	// limit of zero returns all of them.
	ListForPatient(ctx context.Context, patientID int64, limit, offset int) ([]RecordView, int, error)
	// Prescriptions returns the record's prescriptions with their medicines.
	Prescriptions(ctx context.Context, recordID int64) ([]Prescription, error)

	// LinkedPatients lists every patient with at least one appointment with
	// the physician. Age is left for the caller.
	LinkedPatients(ctx context.Context, physicianID int64) ([]PatientSummary, error)
	// RecentMedicines returns the newest medicine lines the physician has
	// prescribed.
	RecentMedicines(ctx context.Context, physicianID int64, limit int) ([]PrescribedMedicine, error)
}

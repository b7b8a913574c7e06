package clinical

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/def-himani/mediflow/internal/domain/activity"
	"github.com/def-himani/mediflow/internal/domain/scheduling"
	"github.com/def-himani/mediflow/internal/platform/apperr"
	"github.com/def-himani/mediflow/internal/platform/auth"
	"github.com/def-himani/mediflow/internal/platform/db"
	"github.com/def-himani/mediflow/pkg/pagination"
)

const (
	MsgNotFound          = "Health record not found"
	MsgUnknownMedication = "Unknown medication: %s"
)

// dashboardMedicines caps the prescriptions shown on the physician dashboard.
const dashboardMedicines = 5

// MedicationResolver maps a medication id or name onto a catalogue id.
type MedicationResolver interface {
	ResolveMedication(ctx context.Context, id int64, name string) (int64, bool, error)
}

type UpcomingAppointments interface {
	NextForPhysician(ctx context.Context, physicianID int64) (*scheduling.View, error)
}

type RecentActivity interface {
	LatestForPhysician(ctx context.Context, physicianID int64) (*activity.Log, error)
}

var ownRecord = auth.PatientOwned(func(r *RecordView) int64 { return r.PatientID }, MsgNotFound)

type Service struct {
	repo     Repository
	tx       db.Transactor
	links    auth.LinkChecker
	meds     MedicationResolver
	upcoming UpcomingAppointments
	activity RecentActivity
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(repo Repository, tx db.Transactor, links auth.LinkChecker, meds MedicationResolver,
	upcoming UpcomingAppointments, recent RecentActivity, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		tx:       tx,
		links:    links,
		meds:     meds,
		upcoming: upcoming,
		activity: recent,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	cp := *s
	cp.now = now
	return &cp
}

// CreateRecord writes a health record and its prescription in one
// transaction. The physician must have an appointment with the patient.
func (s *Service) CreateRecord(ctx context.Context, id auth.Identity, req *CreateRecordRequest) (*RecordDetail, error) {
	rec, err := req.validate()
	if err != nil {
		return nil, err
	}
	if err := auth.RequirePatientLink(ctx, s.links, id, rec.PatientID); err != nil {
		return nil, err
	}
	rec.PhysicianID = id.SubjectID

	var prescriptions []Prescription
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateRecord(ctx, rec); err != nil {
			return apperr.Storage("create health record", err)
		}
		if len(req.Prescriptions) == 0 {
			return nil
		}

		p := Prescription{RecordID: rec.ID, DateIssued: rec.VisitDate, Medicines: []Medicine{}}
		if err := s.repo.CreatePrescription(ctx, &p); err != nil {
			return apperr.Storage("create prescription", err)
		}
		for _, mr := range req.Prescriptions {
			medID, ok, err := s.meds.ResolveMedication(ctx, int64(mr.MedicationID), mr.MedicationName)
			if err != nil {
				return err
			}
			if !ok {
				return apperr.Validation(MsgUnknownMedication, mr.label())
			}
			m := Medicine{
				PrescriptionID: p.ID,
				MedicationID:   medID,
				Dosage:         trimmed(mr.Dosage),
				Frequency:      trimmed(mr.Frequency),
				Duration:       trimmed(mr.Duration),
				Instructions:   trimmed(mr.Instructions),
			}
			if err := s.repo.CreateMedicine(ctx, &m); err != nil {
				if errors.Is(err, ErrUnknownMedication) {
					return apperr.Validation(MsgUnknownMedication, mr.label())
				}
				return apperr.Storage("create medicine", err)
			}
			p.Medicines = append(p.Medicines, m)
		}
		prescriptions = []Prescription{p}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("record_id", rec.ID).
		Int64("patient_id", rec.PatientID).
		Int64("physician_id", rec.PhysicianID).
		Msg("health record created")

	if prescriptions == nil {
		prescriptions = []Prescription{}
	}
	return &RecordDetail{RecordView: RecordView{HealthRecord: *rec}, Prescriptions: prescriptions}, nil
}

// PatientRecords pages through the calling patient's own records.
func (s *Service) PatientRecords(ctx context.Context, id auth.Identity, p pagination.Params) ([]RecordView, pagination.Page, error) {
	out, total, err := s.repo.ListForPatient(ctx, id.SubjectID, p.Limit, p.Offset)
	if err != nil {
		return nil, pagination.Page{}, apperr.Storage("list health records", err)
	}
	return out, p.Page(total), nil
}

// PatientRecord returns one of the calling patient's records. Records of
// other patients are reported as not found.
func (s *Service) PatientRecord(ctx context.Context, id auth.Identity, recordID int64) (*RecordDetail, error) {
	v, err := s.load(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if err := ownRecord.Allow(id, v); err != nil {
		return nil, err
	}
	return s.detail(ctx, v)
}

// PhysicianRecord returns a record of a patient the physician is linked to.
func (s *Service) PhysicianRecord(ctx context.Context, id auth.Identity, recordID int64) (*RecordDetail, error) {
	v, err := s.load(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequirePatientLink(ctx, s.links, id, v.PatientID); err != nil {
		return nil, err
	}
	return s.detail(ctx, v)
}

func (s *Service) load(ctx context.Context, recordID int64) (*RecordView, error) {
	if recordID <= 0 {
		return nil, apperr.NotFound(MsgNotFound)
	}
	v, err := s.repo.Get(ctx, recordID)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound(MsgNotFound)
	}
	if err != nil {
		return nil, apperr.Storage("get health record", err)
	}
	return v, nil
}

func (s *Service) detail(ctx context.Context, v *RecordView) (*RecordDetail, error) {
	ps, err := s.repo.Prescriptions(ctx, v.ID)
	if err != nil {
		return nil, apperr.Storage("list prescriptions", err)
	}
	return &RecordDetail{RecordView: *v, Prescriptions: ps}, nil
}

// Patients lists the patients linked to the calling physician.
func (s *Service) Patients(ctx context.Context, id auth.Identity) ([]PatientSummary, error) {
	out, err := s.repo.LinkedPatients(ctx, id.SubjectID)
	if err != nil {
		return nil, apperr.Storage("list patients", err)
	}
	today := s.now().UTC()
	for i := range out {
		if dob := out[i].DateOfBirth; dob != nil && !dob.IsZero() {
			age := ageOn(*dob, today)
			out[i].Age = &age
		}
	}
	return out, nil
}

// Visits pages through the health records of a linked patient.
func (s *Service) Visits(ctx context.Context, id auth.Identity, patientID int64, p pagination.Params) ([]RecordView, pagination.Page, error) {
	if err := auth.RequirePatientLink(ctx, s.links, id, patientID); err != nil {
		return nil, pagination.Page{}, err
	}
	out, total, err := s.repo.ListForPatient(ctx, patientID, p.Limit, p.Offset)
	if err != nil {
		return nil, pagination.Page{}, apperr.Storage("list visits", err)
	}
	return out, p.Page(total), nil
}

// DashboardSummary gathers the physician's next appointment, latest
// prescriptions and the newest activity log among their patients.
func (s *Service) DashboardSummary(ctx context.Context, id auth.Identity) (*DashboardSummary, error) {
	next, err := s.upcoming.NextForPhysician(ctx, id.SubjectID)
	if err != nil {
		return nil, apperr.Storage("dashboard summary", err)
	}
	meds, err := s.repo.RecentMedicines(ctx, id.SubjectID, dashboardMedicines)
	if err != nil {
		return nil, apperr.Storage("dashboard summary", err)
	}
	latest, err := s.activity.LatestForPhysician(ctx, id.SubjectID)
	if err != nil {
		return nil, apperr.Storage("dashboard summary", err)
	}
	return &DashboardSummary{NextAppointment: next, Prescriptions: meds, ActivityLog: latest}, nil
}

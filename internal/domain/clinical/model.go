package clinical

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/def-himani/mediflow/internal/domain/activity"
	"github.com/def-himani/mediflow/internal/domain/scheduling"
	"github.com/def-himani/mediflow/internal/platform/apperr"
	"github.com/def-himani/mediflow/pkg/civil"
	"github.com/def-himani/mediflow/pkg/flex"
)

type HealthRecord struct {
	ID               int64      `json:"record_id"`
	PatientID        int64      `json:"patient_id"`
	PhysicianID      int64      `json:"physician_id"`
	VisitDate        civil.Date `json:"visit_date"`
	Diagnosis        *string    `json:"diagnosis"`
	Symptoms         *string    `json:"symptoms"`
	LabResults       *string    `json:"lab_results"`
	FollowUpRequired bool       `json:"follow_up_required"`
}

// RecordView is a record with the names of both parties.
type RecordView struct {
	HealthRecord
	PatientName   string `json:"patient_name,omitempty"`
	PhysicianName string `json:"physician_name,omitempty"`
}

type Prescription struct {
	ID         int64      `json:"prescription_id"`
	RecordID   int64      `json:"record_id"`
	DateIssued civil.Date `json:"date_issued"`
	Medicines  []Medicine `json:"medicines"`
}

// Medicine is one line item of a prescription.
type Medicine struct {
	ID             int64   `json:"medicine_id"`
	PrescriptionID int64   `json:"-"`
	MedicationID   int64   `json:"medication_id"`
	MedicationName string  `json:"medication_name"`
	Dosage         *string `json:"dosage"`
	Frequency      *string `json:"frequency"`
	Duration       *string `json:"duration"`
	Instructions   *string `json:"instructions"`
}

// RecordDetail is a record with its prescriptions.
type RecordDetail struct {
	RecordView
	Prescriptions []Prescription `json:"prescriptions"`
}

// PatientSummary is one row of a physician's patient list.
type PatientSummary struct {
	PatientID   int64       `json:"patient_id"`
	PatientName string      `json:"patient_name"`
	DateOfBirth *civil.Date `json:"date_of_birth"`
	Age         *int        `json:"age"`
	// RecentDate is the latest appointment with the physician.
	RecentDate *time.Time `json:"recent_date"`
}

// PrescribedMedicine is a medicine line with the context a dashboard needs.
type PrescribedMedicine struct {
	Medicine
	RecordID    int64      `json:"record_id"`
	PatientID   int64      `json:"patient_id"`
	PatientName string     `json:"patient_name"`
	DateIssued  civil.Date `json:"date_issued"`
}

// DashboardSummary is the payload of the physician dashboard.
type DashboardSummary struct {
	NextAppointment *scheduling.View     `json:"next_appointment"`
	Prescriptions   []PrescribedMedicine `json:"prescriptions"`
	ActivityLog     *activity.Log        `json:"activity_log"`
}

// CreateRecordRequest is the body of POST /api/physician/healthRecord/create.
// Each prescription entry is one medicine; together they form a single
// prescription issued on the visit date.
type CreateRecordRequest struct {
	PatientID        flex.Int64        `json:"patient_id"`
	VisitDate        string            `json:"visit_date"`
	Diagnosis        *string           `json:"diagnosis"`
	Symptoms         *string           `json:"symptoms"`
	LabResults       *string           `json:"lab_results"`
	FollowUpRequired *flex.Bool        `json:"follow_up_required"`
	Prescriptions    []MedicineRequest `json:"prescriptions"`
}

// MedicineRequest names a medication by id or by name.
type MedicineRequest struct {
	MedicationID   flex.Int64 `json:"medication_id"`
	MedicationName string     `json:"medication_name"`
	Dosage         *string    `json:"dosage"`
	Frequency      *string    `json:"frequency"`
	Duration       *string    `json:"duration"`
	Instructions   *string    `json:"instructions"`
}

func (m MedicineRequest) label() string {
	if name := strings.TrimSpace(m.MedicationName); name != "" {
		return name
	}
	return "#" + strconv.FormatInt(int64(m.MedicationID), 10)
}

func (r *CreateRecordRequest) validate() (*HealthRecord, error) {
	var missing []string
	if r.PatientID <= 0 {
		missing = append(missing, "patient_id")
	}
	if strings.TrimSpace(r.VisitDate) == "" {
		missing = append(missing, "visit_date")
	}
	if len(missing) > 0 {
		return nil, apperr.Validation("Missing fields: %s", strings.Join(missing, ", "))
	}
	if r.PatientID > math.MaxInt32 {
		return nil, apperr.Validation("Invalid patient_id")
	}

	visit, err := civil.Parse(r.VisitDate)
	if err != nil {
		return nil, apperr.Validation("Invalid visit_date, expected YYYY-MM-DD")
	}
	for i, m := range r.Prescriptions {
		if m.MedicationID <= 0 && strings.TrimSpace(m.MedicationName) == "" {
			return nil, apperr.Validation("prescriptions[%d]: medication_id or medication_name is required", i)
		}
		if m.MedicationID > math.MaxInt32 {
			return nil, apperr.Validation("prescriptions[%d]: invalid medication_id", i)
		}
	}

	rec := &HealthRecord{
		PatientID:  int64(r.PatientID),
		VisitDate:  visit,
		Diagnosis:  trimmed(r.Diagnosis),
		Symptoms:   trimmed(r.Symptoms),
		LabResults: trimmed(r.LabResults),
	}
	if r.FollowUpRequired != nil {
		rec.FollowUpRequired = bool(*r.FollowUpRequired)
	}
	return rec, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// ageOn returns the whole years between dob and on.
func ageOn(dob civil.Date, on time.Time) int {
	years := on.Year() - dob.Year()
	if on.Month() < dob.Month() || (on.Month() == dob.Month() && on.Day() < dob.Day()) {
		years--
	}
	return years
}

package clinical

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/def-himani/mediflow/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const recordCols = `
	h.record_id, h.patient_id, h.physician_id, h.visit_date,
	h.diagnosis, h.symptoms, h.lab_results, h.follow_up_required,
	CONCAT(pa.first_name, ' ', pa.last_name),
	CONCAT(ph.first_name, ' ', ph.last_name)`

const recordFrom = `
	FROM health_record h
	JOIN account pa ON pa.account_id = h.patient_id
	JOIN account ph ON ph.account_id = h.physician_id`

func scanRecord(row pgx.Row, v *RecordView) error {
	return row.Scan(&v.ID, &v.PatientID, &v.PhysicianID, &v.VisitDate,
		&v.Diagnosis, &v.Symptoms, &v.LabResults, &v.FollowUpRequired,
		&v.PatientName, &v.PhysicianName)
}

func (r *repoPG) CreateRecord(ctx context.Context, rec *HealthRecord) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO health_record (patient_id, physician_id, visit_date, diagnosis, symptoms, lab_results, follow_up_required)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING record_id`,
		rec.PatientID, rec.PhysicianID, rec.VisitDate, rec.Diagnosis, rec.Symptoms, rec.LabResults, rec.FollowUpRequired,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("insert health record: %w", err)
	}
	return nil
}

func (r *repoPG) CreatePrescription(ctx context.Context, p *Prescription) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO prescription (record_id, date_issued) VALUES ($1, $2)
		RETURNING prescription_id`, p.RecordID, p.DateIssued).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert prescription: %w", err)
	}
	return nil
}

func (r *repoPG) CreateMedicine(ctx context.Context, m *Medicine) error {
	err := r.conn(ctx).QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO medicine (prescription_id, medication_id, dosage, frequency, duration, instructions)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING medicine_id, medication_id
		)
		SELECT ins.medicine_id, md.medication_name
		FROM ins JOIN medications md ON md.medication_id = ins.medication_id`,
		m.PrescriptionID, m.MedicationID, m.Dosage, m.Frequency, m.Duration, m.Instructions,
	).Scan(&m.ID, &m.MedicationName)
	if db.IsForeignKeyViolation(err) {
		return ErrUnknownMedication
	}
	if err != nil {
		return fmt.Errorf("insert medicine: %w", err)
	}
	return nil
}

func (r *repoPG) Get(ctx context.Context, id int64) (*RecordView, error) {
	var v RecordView
	err := scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+recordCols+recordFrom+` WHERE h.record_id = $1`, id), &v)
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get health record: %w", err)
	}
	return &v, nil
}

func (r *repoPG) ListForPatient(ctx context.Context, patientID int64, limit, offset int) ([]RecordView, int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM health_record WHERE patient_id = $1`, patientID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count health records: %w", err)
	}

	var limitArg interface{}
	if limit > 0 {
		limitArg = limit
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+recordCols+recordFrom+`
		WHERE h.patient_id = $1
		ORDER BY h.visit_date DESC, h.record_id DESC
		LIMIT $2 OFFSET $3`, patientID, limitArg, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list health records: %w", err)
	}
	defer rows.Close()

	out := []RecordView{}
	for rows.Next() {
		var v RecordView
		if err := scanRecord(rows, &v); err != nil {
			return nil, 0, fmt.Errorf("scan health record: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list health records: %w", err)
	}
	return out, total, nil
}

func (r *repoPG) Prescriptions(ctx context.Context, recordID int64) ([]Prescription, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT p.prescription_id, p.record_id, p.date_issued,
		       m.medicine_id, m.medication_id, md.medication_name,
		       m.dosage, m.frequency, m.duration, m.instructions
		FROM prescription p
		LEFT JOIN medicine m ON m.prescription_id = p.prescription_id
		LEFT JOIN medications md ON md.medication_id = m.medication_id
		WHERE p.record_id = $1
		ORDER BY p.prescription_id, m.medicine_id`, recordID)
	if err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}
	defer rows.Close()

	out := []Prescription{}
	for rows.Next() {
		var (
			p            Prescription
			medicineID   *int64
			medicationID *int64
			name         *string
			m            Medicine
		)
		if err := rows.Scan(&p.ID, &p.RecordID, &p.DateIssued,
			&medicineID, &medicationID, &name,
			&m.Dosage, &m.Frequency, &m.Duration, &m.Instructions); err != nil {
			return nil, fmt.Errorf("scan prescription: %w", err)
		}
		if n := len(out); n == 0 || out[n-1].ID != p.ID {
			p.Medicines = []Medicine{}
			out = append(out, p)
		}
		if medicineID == nil {
			continue
		}
		m.ID, m.PrescriptionID = *medicineID, p.ID
		if medicationID != nil {
			m.MedicationID = *medicationID
		}
		if name != nil {
			m.MedicationName = *name
		}
		last := &out[len(out)-1]
		last.Medicines = append(last.Medicines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}
	return out, nil
}

func (r *repoPG) LinkedPatients(ctx context.Context, physicianID int64) ([]PatientSummary, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT a.account_id, CONCAT(a.first_name, ' ', a.last_name), p.date_of_birth, MAX(ap.date)
		FROM appointment ap
		JOIN account a ON a.account_id = ap.patient_id
		JOIN patient p ON p.account_id = ap.patient_id
		WHERE ap.physician_id = $1
		GROUP BY a.account_id, a.first_name, a.last_name, p.date_of_birth
		ORDER BY MAX(ap.date) DESC, a.account_id`, physicianID)
	if err != nil {
		return nil, fmt.Errorf("list linked patients: %w", err)
	}
	defer rows.Close()

	out := []PatientSummary{}
	for rows.Next() {
		var s PatientSummary
		if err := rows.Scan(&s.PatientID, &s.PatientName, &s.DateOfBirth, &s.RecentDate); err != nil {
			return nil, fmt.Errorf("scan linked patient: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list linked patients: %w", err)
	}
	return out, nil
}

func (r *repoPG) RecentMedicines(ctx context.Context, physicianID int64, limit int) ([]PrescribedMedicine, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT m.medicine_id, m.prescription_id, m.medication_id, md.medication_name,
		       m.dosage, m.frequency, m.duration, m.instructions,
		       h.record_id, h.patient_id, CONCAT(a.first_name, ' ', a.last_name), p.date_issued
		FROM medicine m
		JOIN medications md ON md.medication_id = m.medication_id
		JOIN prescription p ON p.prescription_id = m.prescription_id
		JOIN health_record h ON h.record_id = p.record_id
		JOIN account a ON a.account_id = h.patient_id
		WHERE h.physician_id = $1
		ORDER BY p.date_issued DESC, m.medicine_id DESC
		LIMIT $2`, physicianID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent medicines: %w", err)
	}
	defer rows.Close()

	out := []PrescribedMedicine{}
	for rows.Next() {
		var pm PrescribedMedicine
		if err := rows.Scan(&pm.ID, &pm.PrescriptionID, &pm.MedicationID, &pm.MedicationName,
			&pm.Dosage, &pm.Frequency, &pm.Duration, &pm.Instructions,
			&pm.RecordID, &pm.PatientID, &pm.PatientName, &pm.DateIssued); err != nil {
			return nil, fmt.Errorf("scan medicine: %w", err)
		}
		out = append(out, pm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recent medicines: %w", err)
	}
	return out, nil
}

package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/def-himani/mediflow/internal/platform/db"
)

// scheduleLockSpace is the first key of the two-key advisory lock taken per
// physician while booking.
const scheduleLockSpace = 4201

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func (r *repoPG) LockPhysicianSchedule(ctx context.Context, physicianID int64) error {
	if _, ok := db.TxFromContext(ctx); !ok {
		return fmt.Errorf("lock physician schedule: no transaction in context")
	}
	_, err := r.conn(ctx).Exec(ctx, `SELECT pg_advisory_xact_lock($1, $2::int)`, scheduleLockSpace, physicianID)
	if err != nil {
		return fmt.Errorf("lock physician schedule: %w", err)
	}
	return nil
}

func (r *repoPG) PhysicianExists(ctx context.Context, physicianID int64) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM physician WHERE account_id = $1)`, physicianID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check physician: %w", err)
	}
	return exists, nil
}

func (r *repoPG) SlotTaken(ctx context.Context, physicianID int64, at time.Time) (bool, error) {
	var taken bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointment
			WHERE physician_id = $1 AND date = $2 AND status <> 'Cancelled')`,
		physicianID, at).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check slot: %w", err)
	}
	return taken, nil
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointment (patient_id, physician_id, date, status, reason, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING appointment_id, created_at`,
		a.PatientID, a.PhysicianID, a.Date, string(a.Status), a.Reason, a.Notes,
	).Scan(&a.ID, &a.CreatedAt)
	if _, ok := db.UniqueViolation(err); ok {
		return ErrSlotTaken
	}
	if db.IsForeignKeyViolation(err) {
		return ErrUnknownParty
	}
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

const appointmentCols = `a.appointment_id, a.patient_id, a.physician_id, a.date, a.status, a.reason, a.notes, a.created_at`

func scanAppointment(row pgx.Row, a *Appointment, extra ...interface{}) error {
	dest := append([]interface{}{
		&a.ID, &a.PatientID, &a.PhysicianID, &a.Date, &a.Status, &a.Reason, &a.Notes, &a.CreatedAt,
	}, extra...)
	return row.Scan(dest...)
}

func (r *repoPG) GetForUpdate(ctx context.Context, id int64) (*Appointment, error) {
	var a Appointment
	err := scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointment a WHERE a.appointment_id = $1 FOR UPDATE`, id), &a)
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return &a, nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE appointment SET status = $2 WHERE appointment_id = $1`, id, string(status))
	if _, ok := db.UniqueViolation(err); ok {
		return ErrSlotTaken
	}
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListForPatient(ctx context.Context, patientID int64, limit, offset int) ([]View, int, error) {
	return r.list(ctx, "patient_id", "physician_id", patientID, limit, offset, func(v *View, name string) {
		v.PhysicianName = name
	})
}

func (r *repoPG) ListForPhysician(ctx context.Context, physicianID int64, limit, offset int) ([]View, int, error) {
	return r.list(ctx, "physician_id", "patient_id", physicianID, limit, offset, func(v *View, name string) {
		v.PatientName = name
	})
}

// list pages through appointments owned via ownerCol, joining the account
// on counterpartCol for its display name. Column names are constants.
func (r *repoPG) list(ctx context.Context, ownerCol, counterpartCol string, ownerID int64, limit, offset int, setName func(*View, string)) ([]View, int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment WHERE `+ownerCol+` = $1`, ownerID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	var limitArg interface{}
	if limit > 0 {
		limitArg = limit
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+appointmentCols+`, CONCAT(ac.first_name, ' ', ac.last_name)
		FROM appointment a
		JOIN account ac ON ac.account_id = a.`+counterpartCol+`
		WHERE a.`+ownerCol+` = $1
		ORDER BY a.date DESC, a.appointment_id DESC
		LIMIT $2 OFFSET $3`, ownerID, limitArg, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	out := []View{}
	for rows.Next() {
		var v View
		var name string
		if err := scanAppointment(rows, &v.Appointment, &name); err != nil {
			return nil, 0, fmt.Errorf("scan appointment: %w", err)
		}
		setName(&v, name)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}
	return out, total, nil
}

func (r *repoPG) HasAppointment(ctx context.Context, patientID, physicianID int64) (bool, error) {
	var linked bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointment WHERE patient_id = $1 AND physician_id = $2)`,
		patientID, physicianID).Scan(&linked)
	if err != nil {
		return false, fmt.Errorf("check appointment link: %w", err)
	}
	return linked, nil
}

func (r *repoPG) NextForPhysician(ctx context.Context, physicianID int64, from time.Time) (*View, error) {
	var v View
	err := scanAppointment(r.conn(ctx).QueryRow(ctx, `
		SELECT `+appointmentCols+`, CONCAT(ac.first_name, ' ', ac.last_name)
		FROM appointment a
		JOIN account ac ON ac.account_id = a.patient_id
		WHERE a.physician_id = $1 AND a.status = 'Pending' AND a.date >= $2
		ORDER BY a.date ASC
		LIMIT 1`, physicianID, from), &v.Appointment, &v.PatientName)
	if db.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next appointment: %w", err)
	}
	return &v, nil
}

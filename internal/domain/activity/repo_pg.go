package activity

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

const logCols = `l.log_id, l.patient_id, l.log_date, l.weight, l.bp, l.calories, l.duration_of_physical_activity`

func scanLog(row pgx.Row, l *Log, extra ...interface{}) error {
	return row.Scan(append([]interface{}{
		&l.ID, &l.PatientID, &l.LogDate, &l.Weight, &l.BP, &l.Calories, &l.Duration,
	}, extra...)...)
}

func (r *repoPG) Create(ctx context.Context, l *Log) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO activity_log (patient_id, log_date, weight, bp, calories, duration_of_physical_activity)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING log_id`,
		l.PatientID, l.LogDate, l.Weight, l.BP, l.Calories, l.Duration).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}
	return nil
}

func (r *repoPG) get(ctx context.Context, id int64, suffix string) (*Log, error) {
	var l Log
	err := scanLog(r.conn(ctx).QueryRow(ctx,
		`SELECT `+logCols+` FROM activity_log l WHERE l.log_id = $1`+suffix, id), &l)
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get activity log: %w", err)
	}
	return &l, nil
}

func (r *repoPG) Get(ctx context.Context, id int64) (*Log, error) {
	return r.get(ctx, id, "")
}

func (r *repoPG) GetForUpdate(ctx context.Context, id int64) (*Log, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *repoPG) Update(ctx context.Context, l *Log) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE activity_log
		SET log_date = $2, weight = $3, bp = $4, calories = $5, duration_of_physical_activity = $6
		WHERE log_id = $1`,
		l.ID, l.LogDate, l.Weight, l.BP, l.Calories, l.Duration)
	if err != nil {
		return fmt.Errorf("update activity log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListForPatient(ctx context.Context, patientID int64, limit, offset int) ([]Log, int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM activity_log WHERE patient_id = $1`, patientID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count activity logs: %w", err)
	}

	var limitArg interface{}
	if limit > 0 {
		limitArg = limit
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+logCols+`
		FROM activity_log l
		WHERE l.patient_id = $1
		ORDER BY l.log_date DESC, l.log_id DESC
		LIMIT $2 OFFSET $3`, patientID, limitArg, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list activity logs: %w", err)
	}
	defer rows.Close()

	out := []Log{}
	for rows.Next() {
		var l Log
		if err := scanLog(rows, &l); err != nil {
			return nil, 0, fmt.Errorf("scan activity log: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list activity logs: %w", err)
	}
	return out, total, nil
}

func (r *repoPG) LatestForPhysician(ctx context.Context, physicianID int64) (*Log, error) {
	var l Log
	err := scanLog(r.conn(ctx).QueryRow(ctx, `
		SELECT `+logCols+`, CONCAT(a.first_name, ' ', a.last_name)
		FROM activity_log l
		JOIN account a ON a.account_id = l.patient_id
		WHERE l.patient_id IN (SELECT patient_id FROM appointment WHERE physician_id = $1)
		ORDER BY l.log_date DESC, l.log_id DESC
		LIMIT 1`, physicianID), &l, &l.PatientName)
	if db.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest activity log: %w", err)
	}
	return &l, nil
}

package reference

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

// list runs sql and collects every row into T by column name. The result is
// never nil so it encodes as [].
func list[T any](ctx context.Context, q db.Querier, op, sql string, args ...interface{}) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (r *repoPG) ListInsurances(ctx context.Context) ([]Insurance, error) {
	return list[Insurance](ctx, r.conn(ctx), "list insurances",
		`SELECT insurance_id, provider_name FROM insurance ORDER BY provider_name`)
}

func (r *repoPG) ListPharmacies(ctx context.Context) ([]Pharmacy, error) {
	return list[Pharmacy](ctx, r.conn(ctx), "list pharmacies",
		`SELECT pharmacy_id, pharmacy_name FROM pharmacy ORDER BY pharmacy_name`)
}

func (r *repoPG) ListSpecializations(ctx context.Context) ([]Specialization, error) {
	return list[Specialization](ctx, r.conn(ctx), "list specializations",
		`SELECT specialization_id, specialization_name FROM specialization ORDER BY specialization_name`)
}

const medicationCols = `medication_id, medication_name, dosage_form, storage_instructions, common_side_effects, description`

func (r *repoPG) ListMedications(ctx context.Context) ([]Medication, error) {
	return list[Medication](ctx, r.conn(ctx), "list medications",
		`SELECT `+medicationCols+` FROM medications ORDER BY medication_name`)
}

func (r *repoPG) ListPhysicians(ctx context.Context, specializationID *int64) ([]Physician, error) {
	return list[Physician](ctx, r.conn(ctx), "list physicians", `
		SELECT a.account_id AS physician_id, a.first_name, a.last_name,
			p.specialization_id, s.specialization_name
		FROM physician p
		JOIN account a ON a.account_id = p.account_id
		LEFT JOIN specialization s ON s.specialization_id = p.specialization_id
		WHERE $1::int IS NULL OR p.specialization_id = $1
		ORDER BY a.last_name, a.first_name`, specializationID)
}

func (r *repoPG) FindMedication(ctx context.Context, id int64, name string) (*Medication, bool, error) {
	var rows pgx.Rows
	var err error
	if id > 0 {
		rows, err = r.conn(ctx).Query(ctx,
			`SELECT `+medicationCols+` FROM medications WHERE medication_id = $1`, id)
	} else {
		rows, err = r.conn(ctx).Query(ctx,
			`SELECT `+medicationCols+` FROM medications WHERE lower(medication_name) = lower($1)`, name)
	}
	if err != nil {
		return nil, false, fmt.Errorf("find medication: %w", err)
	}
	med, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[Medication])
	if db.IsNoRows(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find medication: %w", err)
	}
	return &med, true, nil
}

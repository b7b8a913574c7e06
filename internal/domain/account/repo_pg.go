package account

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/def-himani/mediflow/internal/platform/auth"
	"github.com/def-himani/mediflow/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

// mapWriteErr translates constraint violations into package errors.
func mapWriteErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := db.UniqueViolation(err); ok {
		return ErrDuplicate
	}
	if db.IsForeignKeyViolation(err) {
		return ErrUnknownReference
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (r *repoPG) ExistsByUserNameOrEmail(ctx context.Context, userName, email string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM account WHERE user_name = $1 OR email = $2)`,
		userName, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check account exists: %w", err)
	}
	return exists, nil
}

func (r *repoPG) EmailTakenByOther(ctx context.Context, email string, accountID int64) (bool, error) {
	var taken bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM account WHERE email = $1 AND account_id <> $2)`,
		email, accountID).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return taken, nil
}

func (r *repoPG) CreateAccount(ctx context.Context, a *Account) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO account (user_name, password, role, first_name, last_name, email, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING account_id, created_at`,
		a.UserName, a.PasswordDigest, string(a.Role), a.FirstName, a.LastName, a.Email, a.Phone,
	).Scan(&a.ID, &a.CreatedAt)
	return mapWriteErr("insert account", err)
}

func (r *repoPG) CreatePatient(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (account_id, date_of_birth, gender, address, insurance_id, pharmacy_id, emergency_contact)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.AccountID, p.DateOfBirth, p.Gender, p.Address, p.InsuranceID, p.PharmacyID, p.EmergencyContact)
	return mapWriteErr("insert patient", err)
}

func (r *repoPG) CreatePhysician(ctx context.Context, p *Physician) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO physician (account_id, specialization_id, license_number)
		VALUES ($1, $2, $3)`,
		p.AccountID, p.SpecializationID, p.LicenseNumber)
	return mapWriteErr("insert physician", err)
}

const accountCols = `a.account_id, a.user_name, a.password, a.role, a.first_name, a.last_name, a.email, a.phone, a.created_at`

func accountDest(a *Account) []interface{} {
	return []interface{}{&a.ID, &a.UserName, &a.PasswordDigest, &a.Role, &a.FirstName, &a.LastName, &a.Email, &a.Phone, &a.CreatedAt}
}

func (r *repoPG) GetCredentials(ctx context.Context, userName string, role auth.Role) (*Account, error) {
	var a Account
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+accountCols+` FROM account a WHERE a.user_name = $1 AND a.role = $2`,
		userName, string(role)).Scan(accountDest(&a)...)
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get credentials: %w", err)
	}
	return &a, nil
}

func (r *repoPG) LockAccount(ctx context.Context, id int64) error {
	var locked int64
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT account_id FROM account WHERE account_id = $1 FOR UPDATE`, id).Scan(&locked)
	if db.IsNoRows(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock account: %w", err)
	}
	return nil
}

func (r *repoPG) GetPatientProfile(ctx context.Context, id int64) (*PatientProfile, error) {
	var p PatientProfile
	dest := append(accountDest(&p.Account),
		&p.Patient.AccountID, &p.DateOfBirth, &p.Gender, &p.Address,
		&p.InsuranceID, &p.PharmacyID, &p.EmergencyContact,
		&p.InsuranceName, &p.PharmacyName)
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT `+accountCols+`,
			pt.account_id, pt.date_of_birth, pt.gender, pt.address,
			pt.insurance_id, pt.pharmacy_id, pt.emergency_contact,
			i.provider_name, ph.pharmacy_name
		FROM account a
		JOIN patient pt ON pt.account_id = a.account_id
		LEFT JOIN insurance i ON i.insurance_id = pt.insurance_id
		LEFT JOIN pharmacy ph ON ph.pharmacy_id = pt.pharmacy_id
		WHERE a.account_id = $1 AND a.role = 'patient'`, id).Scan(dest...)
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get patient profile: %w", err)
	}
	return &p, nil
}

func (r *repoPG) GetPhysicianProfile(ctx context.Context, id int64) (*PhysicianProfile, error) {
	var p PhysicianProfile
	dest := append(accountDest(&p.Account),
		&p.Physician.AccountID, &p.SpecializationID, &p.LicenseNumber, &p.SpecializationName)
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT `+accountCols+`,
			ph.account_id, ph.specialization_id, ph.license_number, s.specialization_name
		FROM account a
		JOIN physician ph ON ph.account_id = a.account_id
		LEFT JOIN specialization s ON s.specialization_id = ph.specialization_id
		WHERE a.account_id = $1 AND a.role = 'physician'`, id).Scan(dest...)
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get physician profile: %w", err)
	}
	return &p, nil
}

func (r *repoPG) UpdateAccount(ctx context.Context, a *Account) error {
	return r.execOne(ctx, "update account", `
		UPDATE account SET first_name = $2, last_name = $3, email = $4, phone = $5
		WHERE account_id = $1`,
		a.ID, a.FirstName, a.LastName, a.Email, a.Phone)
}

func (r *repoPG) UpdatePatient(ctx context.Context, p *Patient) error {
	return r.execOne(ctx, "update patient", `
		UPDATE patient SET date_of_birth = $2, gender = $3, address = $4,
			insurance_id = $5, pharmacy_id = $6, emergency_contact = $7
		WHERE account_id = $1`,
		p.AccountID, p.DateOfBirth, p.Gender, p.Address, p.InsuranceID, p.PharmacyID, p.EmergencyContact)
}

func (r *repoPG) UpdatePhysician(ctx context.Context, p *Physician) error {
	return r.execOne(ctx, "update physician", `
		UPDATE physician SET specialization_id = $2, license_number = $3
		WHERE account_id = $1`,
		p.AccountID, p.SpecializationID, p.LicenseNumber)
}

func (r *repoPG) execOne(ctx context.Context, op, sql string, args ...interface{}) error {
	tag, err := r.conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return mapWriteErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}


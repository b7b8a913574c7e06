package account

import (
	"context"
	"errors"

	"github.com/def-himani/mediflow/internal/platform/auth"
)

var (
	ErrNotFound = errors.New("account not found")
	// ErrDuplicate is returned when user_name or email is already taken.
	ErrDuplicate = errors.New("user name or email already exists")
	// ErrUnknownReference is returned when an insurance, pharmacy or
	// specialization id does not exist.
	ErrUnknownReference = errors.New("unknown reference id")
)

type Repository interface {
	ExistsByUserNameOrEmail(ctx context.Context, userName, email string) (bool, error)
	EmailTakenByOther(ctx context.Context, email string, accountID int64) (bool, error)

	CreateAccount(ctx context.Context, a *Account) error
	CreatePatient(ctx context.Context, p *Patient) error
	CreatePhysician(ctx context.Context, p *Physician) error

	// GetCredentials loads the account with the given user name and role.
	GetCredentials(ctx context.Context, userName string, role auth.Role) (*Account, error)
	// LockAccount takes a row lock on the account for the current transaction.
	LockAccount(ctx context.Context, id int64) error

	GetPatientProfile(ctx context.Context, id int64) (*PatientProfile, error)
	GetPhysicianProfile(ctx context.Context, id int64) (*PhysicianProfile, error)

	UpdateAccount(ctx context.Context, a *Account) error
	UpdatePatient(ctx context.Context, p *Patient) error
	UpdatePhysician(ctx context.Context, p *Physician) error
}

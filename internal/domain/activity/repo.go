package activity

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("activity log not found")

type Repository interface {
	Create(ctx context.Context, l *Log) error
	Get(ctx context.Context, id int64) (*Log, error)
	// GetForUpdate loads a log and row-locks it for the current transaction.
	GetForUpdate(ctx context.Context, id int64) (*Log, error)
	Update(ctx context.Context, l *Log) error
	// ListForPatient returns the patient's logs, newest first. A limit of zero
	// returns all of them.
	ListForPatient(ctx context.Context, patientID int64, limit, offset int) ([]Log, int, error)
	// LatestForPhysician returns the most recent log of any patient the
	// physician has an appointment with, or nil.
	LatestForPhysician(ctx context.Context, physicianID int64) (*Log, error)
}

package reference

import "context"

// Repository reads the read-only lookup tables.
type Repository interface {
	ListInsurances(ctx context.Context) ([]Insurance, error)
	ListPharmacies(ctx context.Context) ([]Pharmacy, error)
	ListSpecializations(ctx context.Context) ([]Specialization, error)
	ListMedications(ctx context.Context) ([]Medication, error)
	// ListPhysicians lists physicians, optionally only those with the given
	// specialization.
	ListPhysicians(ctx context.Context, specializationID *int64) ([]Physician, error)

	// FindMedication looks a medication up by id when id > 0, otherwise by
	// case-insensitive name. ok is false when nothing matches.
	FindMedication(ctx context.Context, id int64, name string) (med *Medication, ok bool, err error)
}

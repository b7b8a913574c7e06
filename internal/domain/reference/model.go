package reference

type Insurance struct {
	ID           int64  `json:"insurance_id" db:"insurance_id"`
	ProviderName string `json:"provider_name" db:"provider_name"`
}

type Pharmacy struct {
	ID   int64  `json:"pharmacy_id" db:"pharmacy_id"`
	Name string `json:"pharmacy_name" db:"pharmacy_name"`
}

type Specialization struct {
	ID   int64  `json:"specialization_id" db:"specialization_id"`
	Name string `json:"specialization_name" db:"specialization_name"`
}

type Medication struct {
	ID                  int64   `json:"medication_id" db:"medication_id"`
	Name                string  `json:"medication_name" db:"medication_name"`
	DosageForm          *string `json:"dosage_form" db:"dosage_form"`
	StorageInstructions *string `json:"storage_instructions" db:"storage_instructions"`
	CommonSideEffects   *string `json:"common_side_effects" db:"common_side_effects"`
	Description         *string `json:"description" db:"description"`
}

// Physician is the public listing of a physician account. It carries no
// contact details.
type Physician struct {
	ID                 int64   `json:"physician_id" db:"physician_id"`
	FirstName          string  `json:"first_name" db:"first_name"`
	LastName           string  `json:"last_name" db:"last_name"`
	SpecializationID   *int64  `json:"specialization_id" db:"specialization_id"`
	SpecializationName *string `json:"specialization_name" db:"specialization_name"`
}

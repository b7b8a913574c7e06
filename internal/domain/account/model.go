package account

import (
	"math"
	"net/mail"
	"strings"
	"time"

	"github.com/def-himani/mediflow/internal/platform/apperr"
	"github.com/def-himani/mediflow/internal/platform/auth"
	"github.com/def-himani/mediflow/pkg/civil"
)

// Account maps to the account table. The password digest never leaves the
// service.
type Account struct {
	ID             int64     `json:"account_id"`
	UserName       string    `json:"user_name"`
	PasswordDigest string    `json:"-"`
	Role           auth.Role `json:"role"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	CreatedAt      time.Time `json:"-"`
}

// Patient maps to the patient table.
type Patient struct {
	AccountID        int64       `json:"-"`
	DateOfBirth      *civil.Date `json:"date_of_birth"`
	Gender           *string     `json:"gender"`
	Address          *string     `json:"address"`
	InsuranceID      *int64      `json:"insurance_id"`
	PharmacyID       *int64      `json:"pharmacy_id"`
	EmergencyContact *string     `json:"emergency_contact"`
}

// Physician maps to the physician table.
type Physician struct {
	AccountID        int64   `json:"-"`
	SpecializationID *int64  `json:"specialization_id"`
	LicenseNumber    *string `json:"license_number"`
}

// PatientProfile is an account with its patient row and reference names.
type PatientProfile struct {
	Account
	Patient
	InsuranceName *string `json:"provider_name"`
	PharmacyName  *string `json:"pharmacy_name"`
}

// PhysicianProfile is an account with its physician row.
type PhysicianProfile struct {
	Account
	Physician
	SpecializationName *string `json:"specialization_name"`
}

// SignupRequest is the body of both signup endpoints. Role specific fields
// are ignored for the other role.
type SignupRequest struct {
	UserName  *string `json:"user_name"`
	Password  *string `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`

	DateOfBirth      *civil.Date `json:"date_of_birth"`
	Gender           *string     `json:"gender"`
	Address          *string     `json:"address"`
	InsuranceID      *int64      `json:"insurance_id"`
	PharmacyID       *int64      `json:"pharmacy_id"`
	EmergencyContact *string     `json:"emergency_contact"`

	SpecializationID *int64  `json:"specialization_id"`
	LicenseNumber    *string `json:"license_number"`
}

// Validate reports every required field that is absent or blank, in a
// fixed order, then checks the email shape.
func (r *SignupRequest) Validate() error {
	required := []struct {
		name  string
		value *string
	}{
		{"user_name", r.UserName},
		{"password", r.Password},
		{"first_name", r.FirstName},
		{"last_name", r.LastName},
		{"email", r.Email},
		{"phone", r.Phone},
	}
	var missing []string
	for _, f := range required {
		if f.value == nil || strings.TrimSpace(*f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return apperr.Validation("Missing fields: %s", strings.Join(missing, ", "))
	}
	if !validEmail(*r.Email) {
		return apperr.Validation("Invalid email address")
	}
	return checkRefIDs(
		refID{"insurance_id", r.InsuranceID},
		refID{"pharmacy_id", r.PharmacyID},
		refID{"specialization_id", r.SpecializationID},
	)
}

type refID struct {
	name  string
	value *int64
}

// checkRefIDs rejects reference ids that the INTEGER columns cannot hold.
func checkRefIDs(ids ...refID) error {
	for _, id := range ids {
		if id.value != nil && (*id.value <= 0 || *id.value > math.MaxInt32) {
			return apperr.Validation("Invalid %s", id.name)
		}
	}
	return nil
}

func (r *SignupRequest) account(role auth.Role) *Account {
	return &Account{
		UserName:  strings.TrimSpace(*r.UserName),
		Role:      role,
		FirstName: strings.TrimSpace(*r.FirstName),
		LastName:  strings.TrimSpace(*r.LastName),
		Email:     strings.TrimSpace(*r.Email),
		Phone:     strings.TrimSpace(*r.Phone),
	}
}

// LoginRequest is the body of both login endpoints.
type LoginRequest struct {
	UserName string `json:"user_name"`
	Password string `json:"password"`
}

// AccountPatch holds the account columns either role may change. Nil means
// unchanged.
type AccountPatch struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
}

func (p AccountPatch) empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil && p.Phone == nil
}

func (p AccountPatch) apply(a *Account) error {
	for _, f := range []struct {
		name string
		src  *string
		dst  *string
	}{
		{"first_name", p.FirstName, &a.FirstName},
		{"last_name", p.LastName, &a.LastName},
		{"email", p.Email, &a.Email},
		{"phone", p.Phone, &a.Phone},
	} {
		if f.src == nil {
			continue
		}
		v := strings.TrimSpace(*f.src)
		if v == "" {
			return apperr.Validation("%s cannot be empty", f.name)
		}
		*f.dst = v
	}
	if p.Email != nil && !validEmail(a.Email) {
		return apperr.Validation("Invalid email address")
	}
	return nil
}

// PatientPatch is the body of PUT /api/patient/profile/update.
type PatientPatch struct {
	AccountPatch
	DateOfBirth      *civil.Date `json:"date_of_birth"`
	Gender           *string     `json:"gender"`
	Address          *string     `json:"address"`
	InsuranceID      *int64      `json:"insurance_id"`
	PharmacyID       *int64      `json:"pharmacy_id"`
	EmergencyContact *string     `json:"emergency_contact"`
}

func (p PatientPatch) empty() bool {
	return p.AccountPatch.empty() && p.DateOfBirth == nil && p.Gender == nil && p.Address == nil &&
		p.InsuranceID == nil && p.PharmacyID == nil && p.EmergencyContact == nil
}

func (p PatientPatch) validate() error {
	return checkRefIDs(refID{"insurance_id", p.InsuranceID}, refID{"pharmacy_id", p.PharmacyID})
}

func (p PatientPatch) apply(pt *Patient) {
	if p.DateOfBirth != nil {
		pt.DateOfBirth = p.DateOfBirth
	}
	if p.Gender != nil {
		pt.Gender = p.Gender
	}
	if p.Address != nil {
		pt.Address = p.Address
	}
	if p.InsuranceID != nil {
		pt.InsuranceID = p.InsuranceID
	}
	if p.PharmacyID != nil {
		pt.PharmacyID = p.PharmacyID
	}
	if p.EmergencyContact != nil {
		pt.EmergencyContact = p.EmergencyContact
	}
}

// PhysicianPatch is the body of PUT /api/physician/profile/update.
type PhysicianPatch struct {
	AccountPatch
	SpecializationID *int64  `json:"specialization_id"`
	LicenseNumber    *string `json:"license_number"`
}

func (p PhysicianPatch) empty() bool {
	return p.AccountPatch.empty() && p.SpecializationID == nil && p.LicenseNumber == nil
}

func (p PhysicianPatch) validate() error {
	return checkRefIDs(refID{"specialization_id", p.SpecializationID})
}

func (p PhysicianPatch) apply(ph *Physician) {
	if p.SpecializationID != nil {
		ph.SpecializationID = p.SpecializationID
	}
	if p.LicenseNumber != nil {
		ph.LicenseNumber = p.LicenseNumber
	}
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

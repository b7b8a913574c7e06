package auth

import (
	"context"

	"github.com/def-himani/mediflow/internal/platform/apperr"
)

// MsgNotLinked is returned when a physician has no appointment with a patient.
const MsgNotLinked = "Not authorized for this patient"

// Rule is a per-resource authorization predicate applied after Guard: the
// caller must hold Role and Owns must accept the resource, otherwise Deny is
// returned.
type Rule[T any] struct {
	Role Role
	Owns func(id Identity, res T) bool
	Deny error
}

// Check evaluates the rule against the identity on ctx.
func (r Rule[T]) Check(ctx context.Context, res T) error {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return apperr.Authentication(MsgHeaderInvalid)
	}
	return r.Allow(id, res)
}

// Allow evaluates the rule for an explicit identity.
func (r Rule[T]) Allow(id Identity, res T) error {
	if id.Role != r.Role {
		return apperr.Authorization(MsgForbidden)
	}
	if !r.Owns(id, res) {
		return r.Deny
	}
	return nil
}

// PatientOwned builds a rule for patient self-scoped resources. A resource
// owned by another patient is reported as not found so its existence is not
// confirmed.
func PatientOwned[T any](patientID func(T) int64, notFound string) Rule[T] {
	return Rule[T]{
		Role: RolePatient,
		Owns: func(id Identity, res T) bool { return patientID(res) == id.SubjectID },
		Deny: apperr.NotFound(notFound),
	}
}

// PhysicianOwned builds a rule for resources a physician acts on directly.
func PhysicianOwned[T any](physicianID func(T) int64) Rule[T] {
	return Rule[T]{
		Role: RolePhysician,
		Owns: func(id Identity, res T) bool { return physicianID(res) == id.SubjectID },
		Deny: apperr.Authorization(MsgForbidden),
	}
}

// LinkChecker answers whether a physician has at least one appointment with
// a patient.
type LinkChecker interface {
	HasAppointment(ctx context.Context, patientID, physicianID int64) (bool, error)
}

// RequirePatientLink checks that physician id is linked to patientID
// through an appointment.
func RequirePatientLink(ctx context.Context, links LinkChecker, id Identity, patientID int64) error {
	if id.Role != RolePhysician || id.SubjectID <= 0 {
		return apperr.Authorization(MsgForbidden)
	}
	linked, err := links.HasAppointment(ctx, patientID, id.SubjectID)
	if err != nil {
		return apperr.Storage("check patient link", err)
	}
	if !linked {
		return apperr.Authorization(MsgNotLinked)
	}
	return nil
}

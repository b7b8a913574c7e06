package auth

import (
	"context"
	"time"
)

// Role is the account role carried in a session token.
type Role string

const (
	RolePatient   Role = "patient"
	RolePhysician Role = "physician"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RolePatient || r == RolePhysician
}

// Identity is the verified claim of a session token. It is created by the
// token service and never mutated afterwards.
type Identity struct {
	SubjectID int64
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity placed on ctx by the guard.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.SubjectID > 0
}

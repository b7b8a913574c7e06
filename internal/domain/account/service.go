package account

import (
	"context"
	"errors"
	"strings"

	"github.com/def-himani/mediflow/internal/platform/apperr"
	"github.com/def-himani/mediflow/internal/platform/auth"
	"github.com/def-himani/mediflow/internal/platform/db"
)

const (
	MsgDuplicate          = "Username/email already exists"
	MsgInvalidCredentials = "Invalid credentials"
	MsgUnknownReference   = "Unknown insurance, pharmacy or specialization"
	MsgEmailInUse         = "Email already in use"
	MsgNoFields           = "No fields to update"
	MsgProfileNotFound    = "Profile not found"
)

// PasswordHasher produces and checks password digests.
type PasswordHasher interface {
	Digest(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(subjectID int64, role auth.Role) (string, auth.Identity, error)
}

type Service struct {
	repo   Repository
	tx     db.Transactor
	hasher PasswordHasher
	tokens TokenIssuer
	// decoy is checked against when the user name is unknown so both
	// login failures cost one digest comparison.
	decoy string
}

func NewService(repo Repository, tx db.Transactor, hasher PasswordHasher, tokens TokenIssuer) *Service {
	decoy, _ := hasher.Digest("mediflow-unknown-account")
	return &Service{repo: repo, tx: tx, hasher: hasher, tokens: tokens, decoy: decoy}
}

// Signup creates the account and its role profile in one transaction and
// returns a session token for the new account.
func (s *Service) Signup(ctx context.Context, role auth.Role, req *SignupRequest) (string, error) {
	if !role.Valid() {
		return "", apperr.Validation("unknown role %q", role)
	}
	if err := req.Validate(); err != nil {
		return "", err
	}
	digest, err := s.hasher.Digest(*req.Password)
	if err != nil {
		return "", apperr.Storage("hash password", err)
	}

	acct := req.account(role)
	acct.PasswordDigest = digest

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.repo.ExistsByUserNameOrEmail(ctx, acct.UserName, acct.Email)
		if err != nil {
			return apperr.Storage("signup", err)
		}
		if exists {
			return apperr.Conflict(MsgDuplicate)
		}
		if err := s.repo.CreateAccount(ctx, acct); err != nil {
			return signupErr(err)
		}
		switch role {
		case auth.RolePatient:
			err = s.repo.CreatePatient(ctx, &Patient{
				AccountID:        acct.ID,
				DateOfBirth:      req.DateOfBirth,
				Gender:           req.Gender,
				Address:          req.Address,
				InsuranceID:      req.InsuranceID,
				PharmacyID:       req.PharmacyID,
				EmergencyContact: req.EmergencyContact,
			})
		case auth.RolePhysician:
			err = s.repo.CreatePhysician(ctx, &Physician{
				AccountID:        acct.ID,
				SpecializationID: req.SpecializationID,
				LicenseNumber:    req.LicenseNumber,
			})
		}
		if err != nil {
			return signupErr(err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	token, _, err := s.tokens.Issue(acct.ID, role)
	if err != nil {
		return "", apperr.Storage("issue token", err)
	}
	return token, nil
}

func signupErr(err error) error {
	switch {
	case errors.Is(err, ErrDuplicate):
		return apperr.Conflict(MsgDuplicate)
	case errors.Is(err, ErrUnknownReference):
		return apperr.Validation(MsgUnknownReference)
	default:
		return apperr.Storage("signup", err)
	}
}

// LoginResult carries the session token and the caller's profile.
type LoginResult struct {
	Token   string
	Profile interface{}
}

// Login checks the credentials of an account with the given role. Unknown
// user names, wrong passwords and role mismatches fail identically.
func (s *Service) Login(ctx context.Context, role auth.Role, req *LoginRequest) (*LoginResult, error) {
	if strings.TrimSpace(req.UserName) == "" || req.Password == "" {
		return nil, apperr.Validation("Missing fields: user_name, password")
	}

	acct, err := s.repo.GetCredentials(ctx, strings.TrimSpace(req.UserName), role)
	if errors.Is(err, ErrNotFound) {
		s.hasher.Verify(req.Password, s.decoy)
		return nil, apperr.Authentication(MsgInvalidCredentials)
	}
	if err != nil {
		return nil, apperr.Storage("login", err)
	}
	if !s.hasher.Verify(req.Password, acct.PasswordDigest) {
		return nil, apperr.Authentication(MsgInvalidCredentials)
	}

	id := auth.Identity{SubjectID: acct.ID, Role: role}
	var profile interface{}
	if role == auth.RolePatient {
		profile, err = s.GetPatientProfile(ctx, id)
	} else {
		profile, err = s.GetPhysicianProfile(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	token, _, err := s.tokens.Issue(acct.ID, role)
	if err != nil {
		return nil, apperr.Storage("issue token", err)
	}
	return &LoginResult{Token: token, Profile: profile}, nil
}

func (s *Service) GetPatientProfile(ctx context.Context, id auth.Identity) (*PatientProfile, error) {
	p, err := s.repo.GetPatientProfile(ctx, id.SubjectID)
	if err != nil {
		return nil, profileErr(err)
	}
	return p, nil
}

func (s *Service) GetPhysicianProfile(ctx context.Context, id auth.Identity) (*PhysicianProfile, error) {
	p, err := s.repo.GetPhysicianProfile(ctx, id.SubjectID)
	if err != nil {
		return nil, profileErr(err)
	}
	return p, nil
}

// UpdatePatientProfile applies patch to the caller's own account and patient
// rows under a row lock.
func (s *Service) UpdatePatientProfile(ctx context.Context, id auth.Identity, patch *PatientPatch) (*PatientProfile, error) {
	if patch.empty() {
		return nil, apperr.Validation(MsgNoFields)
	}
	if err := patch.validate(); err != nil {
		return nil, err
	}

	var out *PatientProfile
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.lockedPatient(ctx, id)
		if err != nil {
			return err
		}
		if err := s.applyAccountPatch(ctx, &p.Account, patch.AccountPatch); err != nil {
			return err
		}
		patch.apply(&p.Patient)
		if err := s.repo.UpdatePatient(ctx, &p.Patient); err != nil {
			return updateErr(err)
		}
		out, err = s.GetPatientProfile(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePhysicianProfile applies patch to the caller's own account and
// physician rows under a row lock.
func (s *Service) UpdatePhysicianProfile(ctx context.Context, id auth.Identity, patch *PhysicianPatch) (*PhysicianProfile, error) {
	if patch.empty() {
		return nil, apperr.Validation(MsgNoFields)
	}
	if err := patch.validate(); err != nil {
		return nil, err
	}

	var out *PhysicianProfile
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.LockAccount(ctx, id.SubjectID); err != nil {
			return profileErr(err)
		}
		p, err := s.GetPhysicianProfile(ctx, id)
		if err != nil {
			return err
		}
		if err := s.applyAccountPatch(ctx, &p.Account, patch.AccountPatch); err != nil {
			return err
		}
		patch.apply(&p.Physician)
		if err := s.repo.UpdatePhysician(ctx, &p.Physician); err != nil {
			return updateErr(err)
		}
		out, err = s.GetPhysicianProfile(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) lockedPatient(ctx context.Context, id auth.Identity) (*PatientProfile, error) {
	if err := s.repo.LockAccount(ctx, id.SubjectID); err != nil {
		return nil, profileErr(err)
	}
	return s.GetPatientProfile(ctx, id)
}

func (s *Service) applyAccountPatch(ctx context.Context, a *Account, patch AccountPatch) error {
	if patch.empty() {
		return nil
	}
	if err := patch.apply(a); err != nil {
		return err
	}
	if patch.Email != nil {
		taken, err := s.repo.EmailTakenByOther(ctx, a.Email, a.ID)
		if err != nil {
			return apperr.Storage("check email", err)
		}
		if taken {
			return apperr.Conflict(MsgEmailInUse)
		}
	}
	if err := s.repo.UpdateAccount(ctx, a); err != nil {
		return updateErr(err)
	}
	return nil
}

func profileErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound(MsgProfileNotFound)
	}
	return apperr.Storage("profile", err)
}

func updateErr(err error) error {
	switch {
	case errors.Is(err, ErrDuplicate):
		return apperr.Conflict(MsgEmailInUse)
	case errors.Is(err, ErrUnknownReference):
		return apperr.Validation(MsgUnknownReference)
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound(MsgProfileNotFound)
	default:
		return apperr.Storage("update profile", err)
	}
}

package account

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/def-himani/mediflow/internal/platform/apperr"
	"github.com/def-himani/mediflow/internal/platform/auth"
	"github.com/def-himani/mediflow/internal/platform/db/dbtest"
	"github.com/def-himani/mediflow/pkg/civil"
)

func assertAppErr(t *testing.T, err error, kind apperr.Kind, msg string) {
	t.Helper()
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae), "expected *apperr.Error, got %T (%v)", err, err)
	assert.Equal(t, kind, ae.Kind)
	assert.Equal(t, msg, ae.Message)
}

func TestSignup_CreatesAccountAndProfile(t *testing.T) {
	svc, repo, tx := newTestService()
	req := validSignup("ada")
	dob, err := civil.Parse("1990-04-02")
	require.NoError(t, err)
	req.DateOfBirth = &dob
	req.InsuranceID = int64Ptr(1)

	token, err := svc.Signup(context.Background(), auth.RolePatient, req)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, 1, tx.Commits)

	require.Len(t, repo.accounts, 1)
	acct := repo.accounts[1]
	assert.Equal(t, auth.RolePatient, acct.Role)
	assert.Equal(t, "digest:pa55word", acct.PasswordDigest)
	require.Contains(t, repo.patients, int64(1))
	assert.Equal(t, "1990-04-02", repo.patients[1].DateOfBirth.String())

	id, err := auth.NewTokenService(testSecret).Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id.SubjectID)
	assert.Equal(t, auth.RolePatient, id.Role)
}

func TestSignup_Physician(t *testing.T) {
	svc, repo, _ := newTestService()
	req := validSignup("drgray")
	req.LicenseNumber = strPtr("LIC-42")

	_, err := svc.Signup(context.Background(), auth.RolePhysician, req)
	require.NoError(t, err)
	require.Contains(t, repo.physicians, int64(1))
	assert.Equal(t, "LIC-42", *repo.physicians[1].LicenseNumber)
	assert.Empty(t, repo.patients)
}

func TestSignup_MissingFields(t *testing.T) {
	svc, repo, _ := newTestService()
	req := validSignup("ada")
	req.Password = nil
	req.Email = strPtr("   ")

	_, err := svc.Signup(context.Background(), auth.RolePatient, req)
	assertAppErr(t, err, apperr.KindValidation, "Missing fields: password, email")
	assert.Empty(t, repo.accounts)
}

func TestSignup_InvalidEmail(t *testing.T) {
	svc, _, _ := newTestService()
	req := validSignup("ada")
	req.Email = strPtr("not-an-email")

	_, err := svc.Signup(context.Background(), auth.RolePatient, req)
	assertAppErr(t, err, apperr.KindValidation, "Invalid email address")
}

func TestSignup_Duplicate(t *testing.T) {
	svc, repo, _ := newTestService()
	_, err := svc.Signup(context.Background(), auth.RolePatient, validSignup("ada"))
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), auth.RolePhysician, validSignup("ada"))
	assertAppErr(t, err, apperr.KindConflict, MsgDuplicate)
	assert.Len(t, repo.accounts, 1)
}

func TestSignup_ProfileFailureLeavesNoAccount(t *testing.T) {
	svc, repo, tx := newTestService()
	repo.failCreatePatient = errors.New("disk full")

	_, err := svc.Signup(context.Background(), auth.RolePatient, validSignup("ada"))
	assert.True(t, apperr.Is(err, apperr.KindStorage))
	assert.Empty(t, repo.accounts)
	assert.Empty(t, repo.patients)
	assert.Equal(t, 1, tx.Rollbacks)
	assert.Zero(t, tx.Commits)
}

func TestSignup_UnknownInsuranceRollsBack(t *testing.T) {
	svc, repo, _ := newTestService()
	req := validSignup("ada")
	req.InsuranceID = int64Ptr(99)

	_, err := svc.Signup(context.Background(), auth.RolePatient, req)
	assertAppErr(t, err, apperr.KindValidation, MsgUnknownReference)
	assert.Empty(t, repo.accounts)
}

func TestReferenceIDsOutOfRange(t *testing.T) {
	svc, repo, tx := newTestService()
	ctx := context.Background()

	req := validSignup("ada")
	req.PharmacyID = int64Ptr(3000000000)
	_, err := svc.Signup(ctx, auth.RolePatient, req)
	assertAppErr(t, err, apperr.KindValidation, "Invalid pharmacy_id")

	req = validSignup("drgray")
	req.SpecializationID = int64Ptr(-1)
	_, err = svc.Signup(ctx, auth.RolePhysician, req)
	assertAppErr(t, err, apperr.KindValidation, "Invalid specialization_id")
	assert.Empty(t, repo.accounts)
	assert.Zero(t, tx.Commits)

	_, err = svc.Signup(ctx, auth.RolePatient, validSignup("ada"))
	require.NoError(t, err)
	_, err = svc.UpdatePatientProfile(ctx, auth.Identity{SubjectID: 1, Role: auth.RolePatient}, &PatientPatch{
		InsuranceID: int64Ptr(1 << 40),
	})
	assertAppErr(t, err, apperr.KindValidation, "Invalid insurance_id")

	_, err = svc.UpdatePhysicianProfile(ctx, auth.Identity{SubjectID: 1, Role: auth.RolePhysician}, &PhysicianPatch{
		SpecializationID: int64Ptr(2147483648),
	})
	assertAppErr(t, err, apperr.KindValidation, "Invalid specialization_id")
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Signup(context.Background(), auth.RolePatient, validSignup("ada"))
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), auth.RolePatient, &LoginRequest{UserName: "ada", Password: "pa55word"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	profile, ok := res.Profile.(*PatientProfile)
	require.True(t, ok)
	assert.Equal(t, "ada", profile.UserName)
}

func TestLogin_UnknownUserStillVerifies(t *testing.T) {
	repo := newMockRepo()
	hasher := &countingHasher{}
	svc := NewService(repo, &dbtest.Transactor{Snapshot: repo.snapshot}, hasher, auth.NewTokenService(testSecret))
	ctx := context.Background()
	_, err := svc.Signup(ctx, auth.RolePatient, validSignup("ada"))
	require.NoError(t, err)

	_, err = svc.Login(ctx, auth.RolePatient, &LoginRequest{UserName: "nobody", Password: "pa55word"})
	assertAppErr(t, err, apperr.KindAuthentication, MsgInvalidCredentials)
	require.Len(t, hasher.checked, 1)
	assert.NotEmpty(t, hasher.checked[0])
	assert.NotEqual(t, repo.accounts[1].PasswordDigest, hasher.checked[0])

	_, err = svc.Login(ctx, auth.RolePatient, &LoginRequest{UserName: "ada", Password: "wrong"})
	assertAppErr(t, err, apperr.KindAuthentication, MsgInvalidCredentials)
	require.Len(t, hasher.checked, 2)
	assert.Equal(t, repo.accounts[1].PasswordDigest, hasher.checked[1])
}

func TestLogin_Failures(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Signup(context.Background(), auth.RolePatient, validSignup("ada"))
	require.NoError(t, err)

	tests := []struct {
		name string
		role auth.Role
		req  LoginRequest
	}{
		{"wrong password", auth.RolePatient, LoginRequest{UserName: "ada", Password: "nope"}},
		{"unknown user", auth.RolePatient, LoginRequest{UserName: "bob", Password: "pa55word"}},
		{"wrong role", auth.RolePhysician, LoginRequest{UserName: "ada", Password: "pa55word"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Login(context.Background(), tt.role, &tt.req)
			assert.Nil(t, res)
			assertAppErr(t, err, apperr.KindAuthentication, MsgInvalidCredentials)
		})
	}

	_, err = svc.Login(context.Background(), auth.RolePatient, &LoginRequest{UserName: "ada"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestGetProfile_NotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.GetPatientProfile(context.Background(), auth.Identity{SubjectID: 9, Role: auth.RolePatient})
	assertAppErr(t, err, apperr.KindNotFound, MsgProfileNotFound)
}

func TestUpdatePatientProfile(t *testing.T) {
	svc, repo, _ := newTestService()
	_, err := svc.Signup(context.Background(), auth.RolePatient, validSignup("ada"))
	require.NoError(t, err)
	id := auth.Identity{SubjectID: 1, Role: auth.RolePatient}

	patch := &PatientPatch{
		AccountPatch: AccountPatch{Phone: strPtr("555-0199")},
		InsuranceID:  int64Ptr(1),
		Address:      strPtr("1 Main St"),
	}
	p, err := svc.UpdatePatientProfile(context.Background(), id, patch)
	require.NoError(t, err)
	assert.Equal(t, "555-0199", p.Phone)
	assert.Equal(t, "Ada", p.FirstName)
	assert.Equal(t, "1 Main St", *p.Address)
	require.NotNil(t, p.InsuranceName)
	assert.Equal(t, "Blue Cross", *p.InsuranceName)
	assert.Equal(t, []int64{1}, repo.locked)
}

func TestUpdatePatientProfile_Rejections(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Signup(ctx, auth.RolePatient, validSignup("ada"))
	require.NoError(t, err)
	_, err = svc.Signup(ctx, auth.RolePatient, validSignup("bob"))
	require.NoError(t, err)
	id := auth.Identity{SubjectID: 1, Role: auth.RolePatient}

	_, err = svc.UpdatePatientProfile(ctx, id, &PatientPatch{})
	assertAppErr(t, err, apperr.KindValidation, MsgNoFields)

	_, err = svc.UpdatePatientProfile(ctx, id, &PatientPatch{AccountPatch: AccountPatch{FirstName: strPtr(" ")}})
	assertAppErr(t, err, apperr.KindValidation, "first_name cannot be empty")

	_, err = svc.UpdatePatientProfile(ctx, id, &PatientPatch{AccountPatch: AccountPatch{Email: strPtr("bob@example.com")}})
	assertAppErr(t, err, apperr.KindConflict, MsgEmailInUse)

	// account row changes are undone when the patient row fails
	_, err = svc.UpdatePatientProfile(ctx, id, &PatientPatch{
		AccountPatch: AccountPatch{Phone: strPtr("555-0000")},
		InsuranceID:  int64Ptr(77),
	})
	assertAppErr(t, err, apperr.KindValidation, MsgUnknownReference)
	assert.Equal(t, "555-0100", repo.accounts[1].Phone)
}

func TestUpdatePhysicianProfile(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Signup(context.Background(), auth.RolePhysician, validSignup("drgray"))
	require.NoError(t, err)
	id := auth.Identity{SubjectID: 1, Role: auth.RolePhysician}

	p, err := svc.UpdatePhysicianProfile(context.Background(), id, &PhysicianPatch{
		AccountPatch:  AccountPatch{Email: strPtr("gray@clinic.org")},
		LicenseNumber: strPtr("LIC-7"),
	})
	require.NoError(t, err)
	assert.Equal(t, "gray@clinic.org", p.Email)
	assert.Equal(t, "LIC-7", *p.LicenseNumber)
}

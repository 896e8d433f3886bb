package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusshelf/library-system/internal/core/domain"
	"github.com/campusshelf/library-system/internal/core/ports"
)

func validSignup() ports.SignupInput {
	return ports.SignupInput{
		Name:       "Alice",
		Email:      "alice@uni.edu",
		Password:   "pass123",
		Role:       domain.RoleStudent,
		Department: "Physics",
		StudentID:  "S-42",
	}
}

func TestAuthService_Signup_Success(t *testing.T) {
	f := newFixture(t)

	user, err := f.auth.Signup(context.Background(), validSignup())
	require.NoError(t, err)
	require.NotNil(t, user)
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")))
	assert.True(t, user.IsActive)
	assert.Equal(t, time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC), user.MemberSince)
	assert.Empty(t, user.CreatedBy)
}

func TestAuthService_Signup_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := validSignup()
	admin.Role = domain.RoleAdmin
	_, err := f.auth.Signup(ctx, admin)
	assert.ErrorIs(t, err, domain.ErrValidation)

	short := validSignup()
	short.Password = "12345"
	_, err = f.auth.Signup(ctx, short)
	assert.ErrorIs(t, err, domain.ErrValidation)

	noDept := validSignup()
	noDept.Department = ""
	_, err = f.auth.Signup(ctx, noDept)
	assert.ErrorIs(t, err, domain.ErrValidation)

	badRole := validSignup()
	badRole.Role = "wizard"
	_, err = f.auth.Signup(ctx, badRole)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAuthService_Signup_Duplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, validSignup())
	require.NoError(t, err)

	again := validSignup()
	again.Email = "ALICE@uni.edu"
	_, err = f.auth.Signup(ctx, again)
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestAuthService_Authenticate_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, _ := f.seedUser(t, domain.RoleLibrarian)

	res, err := f.auth.Authenticate(ctx, user.Email, testPassword, domain.RoleLibrarian)
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	assert.Equal(t, user.ID, res.User.ID)
	assert.Equal(t, f.now.Add(time.Hour), res.ExpiresAt)

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(res.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return f.now }))
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	assert.Equal(t, user.ID, claims["sub"])
	assert.Equal(t, string(domain.RoleLibrarian), claims["role"])
	assert.NotEmpty(t, claims["jti"])
}

func TestAuthService_Authenticate_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, _ := f.seedUser(t, domain.RoleStudent)

	_, err := f.auth.Authenticate(ctx, user.Email, "badpass", domain.RoleStudent)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.auth.Authenticate(ctx, user.Email, testPassword, domain.RoleFaculty)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials, "role must match")

	_, err = f.auth.Authenticate(ctx, "ghost@uni.edu", testPassword, domain.RoleStudent)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, err, domain.ErrAuth)

	_, err = f.auth.Authenticate(ctx, "", "", domain.RoleStudent)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_Authenticate_Deactivated(t *testing.T) {
	f := newFixture(t)
	user, _ := f.seedUser(t, domain.RoleFaculty, func(u *domain.User) {
		u.IsActive = false
		u.InactiveRemark = "on sabbatical"
	})

	_, err := f.auth.Authenticate(context.Background(), user.Email, testPassword, domain.RoleFaculty)
	require.ErrorIs(t, err, domain.ErrAuth)
	assert.Equal(t, "account has been deactivated: on sabbatical", err.Error())
}

func TestAuthService_Logout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.auth.Logout(ctx, "", time.Time{}), domain.ErrValidation)

	require.NoError(t, f.auth.Logout(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err := f.auth.blocklist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func (f *fixture) requestReset(t *testing.T, email, code string) {
	t.Helper()
	f.auth.newCode = func() (string, error) { return code, nil }
	require.NoError(t, f.auth.RequestPasswordReset(context.Background(), email))
}

func TestAuthService_PasswordReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, _ := f.seedUser(t, domain.RoleStudent)

	f.requestReset(t, strings.ToUpper(user.Email), "482913")
	require.Len(t, f.outbox.sent, 1)
	assert.Equal(t, user.Email, f.outbox.sent[0].to)
	assert.Contains(t, f.outbox.sent[0].body, "482913")
	assert.Contains(t, f.outbox.sent[0].body, "15 minutes")

	require.NoError(t, f.auth.ResetPassword(ctx, user.Email, "482913", "new-secret"))

	_, err := f.auth.Authenticate(ctx, user.Email, testPassword, domain.RoleStudent)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials, "old password no longer works")
	_, err = f.auth.Authenticate(ctx, user.Email, "new-secret", domain.RoleStudent)
	assert.NoError(t, err)

	err = f.auth.ResetPassword(ctx, user.Email, "482913", "another-one")
	assert.ErrorIs(t, err, domain.ErrInvalidResetCode, "codes are single use")
}

func TestAuthService_PasswordReset_WrongCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, _ := f.seedUser(t, domain.RoleFaculty)
	f.requestReset(t, user.Email, "111111")

	err := f.auth.ResetPassword(ctx, user.Email, "999999", "new-secret")
	assert.ErrorIs(t, err, domain.ErrInvalidResetCode)
	assert.ErrorIs(t, err, domain.ErrAuth)

	err = f.auth.ResetPassword(ctx, user.Email, "111111", "short")
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, f.auth.ResetPassword(ctx, user.Email, "111111", "new-secret"),
		"a rejected password does not spend the code")
}

func TestAuthService_PasswordReset_Expired(t *testing.T) {
	f := newFixture(t)
	user, _ := f.seedUser(t, domain.RoleStudent)
	f.requestReset(t, user.Email, "222222")

	f.now = f.now.Add(DefaultResetCodeTTL)
	err := f.auth.ResetPassword(context.Background(), user.Email, "222222", "new-secret")
	assert.ErrorIs(t, err, domain.ErrInvalidResetCode)
}

func TestAuthService_PasswordReset_SilentForUnknownAndInactive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inactive, _ := f.seedUser(t, domain.RoleStudent, func(u *domain.User) { u.IsActive = false })

	assert.NoError(t, f.auth.RequestPasswordReset(ctx, "ghost@uni.edu"))
	assert.NoError(t, f.auth.RequestPasswordReset(ctx, inactive.Email))
	assert.Empty(t, f.outbox.sent)

	assert.ErrorIs(t, f.auth.RequestPasswordReset(ctx, "  "), domain.ErrValidation)
}

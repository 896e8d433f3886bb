package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusshelf/library-system/internal/core/domain"
	"github.com/campusshelf/library-system/internal/core/ports"
)

func TestListUsers_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, admin := f.seedUser(t, domain.RoleAdmin)
	_, lib := f.seedUser(t, domain.RoleLibrarian)
	_, student := f.seedUser(t, domain.RoleStudent)
	f.seedUser(t, domain.RoleGuest)
	f.seedUser(t, domain.RoleFaculty)

	all, err := f.users.ListUsers(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	visible, err := f.users.ListUsers(ctx, lib)
	require.NoError(t, err)
	assert.Len(t, visible, 3)
	for _, u := range visible {
		assert.NotContains(t, []domain.Role{domain.RoleAdmin, domain.RoleLibrarian}, u.Role)
	}

	_, err = f.users.ListUsers(ctx, student)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lib, libActor := f.seedUser(t, domain.RoleLibrarian)
	_, admin := f.seedUser(t, domain.RoleAdmin)

	guest, err := f.users.CreateUser(ctx, libActor, ports.CreateUserInput{
		Name: "Visitor", Email: "Visitor@Example.com", Password: "secret1", Role: domain.RoleGuest, Department: "External",
	})
	require.NoError(t, err)
	assert.Equal(t, "visitor@example.com", guest.Email)
	assert.Equal(t, lib.ID, guest.CreatedBy)
	assert.True(t, guest.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(guest.PasswordHash), []byte("secret1")))

	_, err = f.users.CreateUser(ctx, libActor, ports.CreateUserInput{
		Name: "Other", Email: "o@x.edu", Password: "secret1", Role: domain.RoleLibrarian, Department: "Library",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.users.CreateUser(ctx, admin, ports.CreateUserInput{
		Name: "Other", Email: "o@x.edu", Password: "secret1", Role: domain.RoleLibrarian, Department: "Library",
	})
	assert.NoError(t, err)

	_, err = f.users.CreateUser(ctx, admin, ports.CreateUserInput{
		Name: "Dup", Email: "O@x.edu", Password: "secret1", Role: domain.RoleFaculty, Department: "Physics",
	})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	_, err = f.users.CreateUser(ctx, admin, ports.CreateUserInput{
		Name: "Kid", Email: "k@x.edu", Password: "secret1", Role: domain.RoleStudent, Department: "Physics",
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "students need a student id")

	_, err = f.users.CreateUser(ctx, admin, ports.CreateUserInput{
		Name: "Short", Email: "s@x.edu", Password: "12345", Role: domain.RoleFaculty, Department: "Physics",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSetUserActiveStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, lib := f.seedUser(t, domain.RoleLibrarian)
	admin, adminActor := f.seedUser(t, domain.RoleAdmin)
	student, studentActor := f.seedUser(t, domain.RoleStudent)
	book := f.seedBook(t, 1, 1)

	_, err := f.users.SetUserActiveStatus(ctx, lib, student.ID, false, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := f.users.SetUserActiveStatus(ctx, lib, student.ID, false, "lost three books")
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, "lost three books", got.InactiveRemark)

	_, err = f.circulation.CreateBorrowRequest(ctx, studentActor, book.ID)
	var de *domain.DeactivatedError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "lost three books", de.Remark)

	_, err = f.auth.Authenticate(ctx, student.Email, testPassword, domain.RoleStudent)
	assert.ErrorIs(t, err, domain.ErrAccountDeactivated)

	got, err = f.users.SetUserActiveStatus(ctx, lib, student.ID, true, "")
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Empty(t, got.InactiveRemark)

	_, err = f.users.SetUserActiveStatus(ctx, adminActor, admin.ID, false, "bye")
	assert.ErrorIs(t, err, domain.ErrSelfStatusChange)

	_, err = f.users.SetUserActiveStatus(ctx, lib, admin.ID, false, "nope")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestGuestManagedOnlyByCreator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator, creatorActor := f.seedUser(t, domain.RoleLibrarian)
	_, otherLib := f.seedUser(t, domain.RoleLibrarian)
	guest, guestActor := f.seedUser(t, domain.RoleGuest, func(u *domain.User) { u.CreatedBy = creator.ID })

	name := "Renamed"
	_, err := f.users.UpdateUserProfile(ctx, otherLib, guest.ID, ports.UpdateProfileInput{Name: &name})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.users.UpdateUserProfile(ctx, guestActor, guest.ID, ports.UpdateProfileInput{Name: &name})
	assert.ErrorIs(t, err, domain.ErrForbidden, "guests cannot edit themselves")

	got, err := f.users.UpdateUserProfile(ctx, creatorActor, guest.ID, ports.UpdateProfileInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
}

func TestUpdateUserProfile_SelfAndRoles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, lib := f.seedUser(t, domain.RoleLibrarian)
	student, studentActor := f.seedUser(t, domain.RoleStudent)

	dept := "Mathematics"
	got, err := f.users.UpdateUserProfile(ctx, studentActor, student.ID, ports.UpdateProfileInput{Department: &dept})
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", got.Department)

	promote := domain.RoleLibrarian
	_, err = f.users.UpdateUserProfile(ctx, studentActor, student.ID, ports.UpdateProfileInput{Role: &promote})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.users.UpdateUserProfile(ctx, lib, student.ID, ports.UpdateProfileInput{Role: &promote})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	faculty := domain.RoleFaculty
	got, err = f.users.UpdateUserProfile(ctx, lib, student.ID, ports.UpdateProfileInput{Role: &faculty})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleFaculty, got.Role)

	empty := " "
	_, err = f.users.UpdateUserProfile(ctx, lib, student.ID, ports.UpdateProfileInput{Name: &empty})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

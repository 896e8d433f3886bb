// Package policy holds the role-based access rules of the library. Every
// function here is a pure predicate over plain data.
package policy

import (
	"slices"

	"github.com/campusshelf/library-system/internal/core/domain"
)

// Action is something a user may attempt.
type Action string

const (
	ViewCatalog       Action = "view-catalog"
	Borrow            Action = "borrow"
	ManageBooks       Action = "manage-books"
	ManageGenres      Action = "manage-genres"
	ManageUsers       Action = "manage-users"
	ApproveRequests   Action = "approve-requests"
	ViewAllUsers      Action = "view-all-users"
	ProcessReturns    Action = "process-returns"
	ViewOwnLoans      Action = "view-own-loans"
	PayFines          Action = "pay-fines"
	ViewNotifications Action = "view-notifications"
)

// managedByLibrarian are the roles a librarian may list, create and edit.
var managedByLibrarian = []domain.Role{domain.RoleStudent, domain.RoleFaculty, domain.RoleGuest}

// Can reports whether role is allowed to perform action. It ignores account
// state; use Authorize for an actual user.
func Can(role domain.Role, action Action) bool {
	switch role {
	case domain.RoleAdmin:
		return true
	case domain.RoleLibrarian:
		switch action {
		case ViewCatalog, ManageBooks, ManageGenres, ManageUsers, ApproveRequests,
			ProcessReturns, ViewNotifications:
			return true
		}
		return false
	case domain.RoleStudent, domain.RoleFaculty:
		switch action {
		case ViewCatalog, Borrow, ViewOwnLoans, PayFines, ViewNotifications:
			return true
		}
		return false
	case domain.RoleGuest:
		return action == ViewCatalog
	}
	return false
}

// Authorize checks that u may perform action right now. Deactivated accounts
// are refused everything with an error that carries the deactivation remark.
func Authorize(u *domain.User, action Action) error {
	if !u.IsActive {
		return &domain.DeactivatedError{Remark: u.InactiveRemark}
	}
	if !Can(u.Role, action) {
		return domain.Forbidden(string(action))
	}
	return nil
}

// VisibleRoles returns the roles whose accounts role may list. A nil result
// means nothing is visible.
func VisibleRoles(role domain.Role) []domain.Role {
	switch role {
	case domain.RoleAdmin:
		return slices.Clone(domain.Roles)
	case domain.RoleLibrarian:
		return slices.Clone(managedByLibrarian)
	}
	return nil
}

// CanAssignRole reports whether actor may create an account with, or move an
// account to, the target role.
func CanAssignRole(actor, target domain.Role) bool {
	switch actor {
	case domain.RoleAdmin:
		return target.Valid()
	case domain.RoleLibrarian:
		return slices.Contains(managedByLibrarian, target)
	}
	return false
}

// CanManageUser reports whether actor may edit or (de)activate target's
// account. Guests may only be managed by an admin or by the librarian who
// created them.
func CanManageUser(actor, target *domain.User) bool {
	if actor.ID == target.ID {
		return false
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleLibrarian:
		if target.Role == domain.RoleGuest {
			return target.CreatedBy == actor.ID
		}
		return slices.Contains(managedByLibrarian, target.Role)
	}
	return false
}

// CanEditProfile reports whether actor may change target's profile fields.
// Users edit their own profile, except guests.
func CanEditProfile(actor, target *domain.User) bool {
	if actor.ID == target.ID {
		return actor.Role != domain.RoleGuest
	}
	return CanManageUser(actor, target)
}

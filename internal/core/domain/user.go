package domain

import (
	"strings"
	"time"
)

// Role identifies what a user is allowed to do in the library.
type Role string

const (
	RoleStudent   Role = "student"
	RoleFaculty   Role = "faculty"
	RoleLibrarian Role = "librarian"
	RoleAdmin     Role = "admin"
	RoleGuest     Role = "guest"
)

// Roles lists every role in display order.
var Roles = []Role{RoleStudent, RoleFaculty, RoleLibrarian, RoleAdmin, RoleGuest}

// ParseRole converts a case-insensitive role name into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", Invalid("unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleLibrarian, RoleAdmin, RoleGuest:
		return true
	}
	return false
}

// AccruesFines reports whether overdue loans held by this role are fined.
// Faculty and guests are exempt.
func (r Role) AccruesFines() bool {
	return r == RoleStudent
}

// User models an account in the system.
type User struct {
	ID             string    `json:"id" bson:"_id"`
	Name           string    `json:"name" bson:"name"`
	Email          string    `json:"email" bson:"email"`
	PasswordHash   string    `json:"-" bson:"password_hash"`
	Role           Role      `json:"role" bson:"role"`
	Department     string    `json:"department" bson:"department"`
	MemberSince    time.Time `json:"member_since" bson:"member_since"`
	StudentID      string    `json:"student_id,omitempty" bson:"student_id,omitempty"`
	IsActive       bool      `json:"is_active" bson:"is_active"`
	InactiveRemark string    `json:"inactive_remark,omitempty" bson:"inactive_remark,omitempty"`
	CreatedBy      string    `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// NormalizeEmail lower-cases and trims an address so lookups are stable.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

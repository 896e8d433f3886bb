package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error produced by the core wraps exactly one of these,
// so callers can classify failures with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrDomain     = errors.New("invalid operation")
	ErrAuth       = errors.New("authentication failed")
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("access forbidden")
)

// Error is a specific failure tagged with its kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

var (
	ErrUserNotFound         = newError(ErrNotFound, "user not found")
	ErrBookNotFound         = newError(ErrNotFound, "book not found")
	ErrGenreNotFound        = newError(ErrNotFound, "genre not found")
	ErrRequestNotFound      = newError(ErrNotFound, "borrow request not found")
	ErrLoanNotFound         = newError(ErrNotFound, "loan not found")
	ErrNotificationNotFound = newError(ErrNotFound, "notification not found")
)

var (
	ErrGuestCannotBorrow   = newError(ErrDomain, "guests cannot borrow books")
	ErrBookUnavailable     = newError(ErrDomain, "book is not available")
	ErrRequestNotPending   = newError(ErrDomain, "borrow request has already been reviewed")
	ErrLoanAlreadyReturned = newError(ErrDomain, "loan has already been returned")
	ErrDuplicateRequest    = newError(ErrDomain, "a pending request for this book already exists")
	ErrDuplicateISBN       = newError(ErrDomain, "a book with this isbn already exists")
	ErrDuplicateGenre      = newError(ErrDomain, "a genre with this name already exists")
	ErrUserExists          = newError(ErrDomain, "user with this email already exists")
	ErrNothingDue          = newError(ErrDomain, "no outstanding fines")
	ErrSelfStatusChange    = newError(ErrDomain, "users cannot change their own active status")
)

var (
	ErrInvalidCredentials = newError(ErrAuth, "invalid credentials")
	ErrAccountDeactivated = newError(ErrAuth, "account has been deactivated")
	ErrInvalidResetCode   = newError(ErrAuth, "invalid or expired reset code")
)

// DeactivatedError is returned for any authenticated action attempted by an
// inactive account. It carries the remark left by whoever deactivated it.
type DeactivatedError struct {
	Remark string
}

func (e *DeactivatedError) Error() string {
	if e.Remark == "" {
		return ErrAccountDeactivated.Msg
	}
	return ErrAccountDeactivated.Msg + ": " + e.Remark
}

func (e *DeactivatedError) Is(target error) bool {
	return target == ErrAccountDeactivated || target == ErrAuth
}

// Invalid builds an ErrValidation error with a formatted message.
func Invalid(format string, args ...any) error {
	return newError(ErrValidation, fmt.Sprintf(format, args...))
}

// Forbidden builds an ErrForbidden error naming the denied action.
func Forbidden(action string) error {
	return newError(ErrForbidden, "not allowed to "+action)
}

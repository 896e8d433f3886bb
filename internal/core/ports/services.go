package ports

import (
	"context"
	"time"

	"github.com/campusshelf/library-system/internal/core/domain"
)

// Actor identifies the authenticated caller of a use case. The service layer
// reloads the account behind UserID, so a stale Role never grants access.
type Actor struct {
	UserID string
	Role   domain.Role
}

// AddBookInput carries the fields of a new catalog entry.
type AddBookInput struct {
	Title    string
	Author   string
	Genre    string
	ISBN     string
	Quantity int
}

// GenreInput carries the editable fields of a genre.
type GenreInput struct {
	Name        string
	Description string
}

// CatalogService covers books, genres and inventory resizing.
type CatalogService interface {
	ListBooks(ctx context.Context, actor Actor, filter BookFilter) ([]*domain.Book, error)
	AddBook(ctx context.Context, actor Actor, in AddBookInput) (*domain.Book, error)
	ResizeBookQuantity(ctx context.Context, actor Actor, bookID string, newTotal int) (*domain.Book, error)
	ListGenres(ctx context.Context, actor Actor) ([]*domain.Genre, error)
	AddGenre(ctx context.Context, actor Actor, in GenreInput) (*domain.Genre, error)
	UpdateGenre(ctx context.Context, actor Actor, genreID string, in GenreInput) (*domain.Genre, error)
	DeleteGenre(ctx context.Context, actor Actor, genreID string) error
}

// ReviewInput carries a librarian's decision on a borrow request.
type ReviewInput struct {
	RequestID string
	Decision  domain.RequestStatus
	Note      string
}

// CirculationService covers the borrow request and loan lifecycle.
type CirculationService interface {
	CreateBorrowRequest(ctx context.Context, actor Actor, bookID string) (*domain.BorrowRequest, error)
	// ListBorrowRequests returns every request to reviewers and only the
	// caller's own requests to borrowers.
	ListBorrowRequests(ctx context.Context, actor Actor, filter RequestFilter) ([]*domain.BorrowRequest, error)
	ReviewBorrowRequest(ctx context.Context, actor Actor, in ReviewInput) (*domain.BorrowRequest, error)
	ListActiveLoans(ctx context.Context, actor Actor) ([]*domain.Loan, error)
	ListUserLoans(ctx context.Context, actor Actor) ([]*domain.Loan, error)
	ReturnLoan(ctx context.Context, actor Actor, loanID string) (*domain.Loan, error)
}

// CreateUserInput carries the fields of an account created by staff.
type CreateUserInput struct {
	Name       string
	Email      string
	Password   string
	Role       domain.Role
	Department string
	StudentID  string
}

// UpdateProfileInput carries optional profile changes; nil fields are left alone.
type UpdateProfileInput struct {
	Name       *string
	Email      *string
	Department *string
	StudentID  *string
	Role       *domain.Role
}

// UserService covers account administration.
type UserService interface {
	ListUsers(ctx context.Context, actor Actor) ([]*domain.User, error)
	CreateUser(ctx context.Context, actor Actor, in CreateUserInput) (*domain.User, error)
	UpdateUserProfile(ctx context.Context, actor Actor, userID string, in UpdateProfileInput) (*domain.User, error)
	SetUserActiveStatus(ctx context.Context, actor Actor, userID string, isActive bool, remark string) (*domain.User, error)
}

// SignupInput carries a self-registration.
type SignupInput struct {
	Name       string
	Email      string
	Password   string
	Role       domain.Role
	Department string
	StudentID  string
}

// AuthResult is returned by a successful login.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// AuthService covers sign-up, login, logout and password reset.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string, role domain.Role) (*AuthResult, error)
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
	// RequestPasswordReset mails a one-time code to the address. Unknown
	// and deactivated accounts get no mail and no error.
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

// NotificationService covers the per-user inbox.
type NotificationService interface {
	ListNotifications(ctx context.Context, actor Actor) ([]*domain.Notification, error)
	MarkNotificationRead(ctx context.Context, actor Actor, notificationID string) (*domain.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, actor Actor) (int, error)
	// SendDueReminders notifies borrowers of loans due soon or overdue and
	// returns how many notifications were created.
	SendDueReminders(ctx context.Context) (int, error)
}

// FineSummary breaks down what a user owes.
type FineSummary struct {
	// Accruing is the fine building up on loans that are still out.
	Accruing domain.Amount
	// Payable is the unpaid fine fixed on returned loans.
	Payable domain.Amount
	Total   domain.Amount
	// Loans are the loans contributing to either figure.
	Loans []*domain.Loan
}

// FineService covers viewing and settling fines.
type FineService interface {
	FineSummary(ctx context.Context, actor Actor) (*FineSummary, error)
	PayFines(ctx context.Context, actor Actor, reference string) (*domain.Payment, error)
}

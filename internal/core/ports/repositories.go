package ports

import (
	"context"
	"time"

	"github.com/campusshelf/library-system/internal/core/domain"
)

// BookFilter narrows a catalog listing. Empty fields do not filter.
type BookFilter struct {
	Query  string // partial, case-insensitive match on title
	Author string // partial, case-insensitive match on author
	Genre  string // exact, case-insensitive match on genre name
}

// RequestFilter narrows a borrow request listing.
type RequestFilter struct {
	UserID string               // empty = all users
	BookID string               // empty = all books
	Status domain.RequestStatus // empty = any status
}

// LoanFilter narrows a loan listing.
type LoanFilter struct {
	UserID   string // empty = all users
	Returned *bool  // nil = both open and returned loans
}

// UserRepository persists accounts. Email addresses are unique.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// List returns accounts whose role is in roles; nil roles returns every account.
	List(ctx context.Context, roles []domain.Role) ([]*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}

// BookRepository persists catalog entries. ISBNs are unique.
type BookRepository interface {
	Create(ctx context.Context, b *domain.Book) error
	FindByID(ctx context.Context, id string) (*domain.Book, error)
	List(ctx context.Context, filter BookFilter) ([]*domain.Book, error)
	Update(ctx context.Context, b *domain.Book) error
}

// GenreRepository persists the genre lookup table. Names are unique, ignoring case.
type GenreRepository interface {
	Create(ctx context.Context, g *domain.Genre) error
	FindByID(ctx context.Context, id string) (*domain.Genre, error)
	List(ctx context.Context) ([]*domain.Genre, error)
	Update(ctx context.Context, g *domain.Genre) error
	Delete(ctx context.Context, id string) error
}

// BorrowRequestRepository persists borrow requests.
type BorrowRequestRepository interface {
	Create(ctx context.Context, r *domain.BorrowRequest) error
	FindByID(ctx context.Context, id string) (*domain.BorrowRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]*domain.BorrowRequest, error)
	Update(ctx context.Context, r *domain.BorrowRequest) error
}

// LoanRepository persists loans.
type LoanRepository interface {
	Create(ctx context.Context, l *domain.Loan) error
	FindByID(ctx context.Context, id string) (*domain.Loan, error)
	List(ctx context.Context, filter LoanFilter) ([]*domain.Loan, error)
	Update(ctx context.Context, l *domain.Loan) error
}

// NotificationRepository persists per-user notifications.
type NotificationRepository interface {
	// Create stores n. When n.DedupKey is set and already used, Create
	// returns (false, nil) and stores nothing.
	Create(ctx context.Context, n *domain.Notification) (bool, error)
	FindByID(ctx context.Context, id string) (*domain.Notification, error)
	// ListByUser returns the user's notifications, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error)
	Update(ctx context.Context, n *domain.Notification) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
}

// PaymentRepository records fine settlements.
type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Payment, error)
}

// Store is the single source of truth for every entity. Implementations
// assign IDs to records created with an empty ID.
type Store interface {
	Users() UserRepository
	Books() BookRepository
	Genres() GenreRepository
	Requests() BorrowRequestRepository
	Loans() LoanRepository
	Notifications() NotificationRepository
	Payments() PaymentRepository

	// WithinTx runs fn so that either every write made through the store with
	// the context passed to fn is kept, or none is (fn returned an error).
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

// Executor serializes mutations: fn values run one at a time, in submission order.
type Executor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TokenBlocklist remembers revoked access tokens until they expire.
type TokenBlocklist interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// ResetCodeStore keeps one pending password-reset code per email address.
// Saving a new code replaces the previous one and clears its failed
// attempts. Consume succeeds at most once per code; after
// MaxResetAttempts wrong guesses the code is discarded.
type ResetCodeStore interface {
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	Consume(ctx context.Context, email, code string) (bool, error)
}

// MaxResetAttempts bounds wrong guesses against a single reset code.
const MaxResetAttempts = 5

// Mailer delivers a plain-text message to an email address.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

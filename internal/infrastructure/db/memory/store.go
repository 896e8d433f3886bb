// Package memory provides an in-memory implementation of ports.Store.
// It is the default backend and the one used by tests. Data does not survive
// a restart.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/campusshelf/library-system/internal/core/domain"
	"github.com/campusshelf/library-system/internal/core/ports"
)

// Store implements ports.Store on top of plain maps.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	users         *table[domain.User]
	books         *table[domain.Book]
	genres        *table[domain.Genre]
	requests      *table[domain.BorrowRequest]
	loans         *table[domain.Loan]
	notifications *table[domain.Notification]
	payments      *table[domain.Payment]
	dedupKeys     map[string]struct{}
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:         newTable[domain.User](),
		books:         newTable[domain.Book](),
		genres:        newTable[domain.Genre](),
		requests:      newTable[domain.BorrowRequest](),
		loans:         newTable[domain.Loan](),
		notifications: newTable[domain.Notification](),
		payments:      newTable[domain.Payment](),
		dedupKeys:     make(map[string]struct{}),
	}
}

func (s *Store) Users() ports.UserRepository                 { return userRepo{s} }
func (s *Store) Books() ports.BookRepository                 { return bookRepo{s} }
func (s *Store) Genres() ports.GenreRepository               { return genreRepo{s} }
func (s *Store) Requests() ports.BorrowRequestRepository     { return requestRepo{s} }
func (s *Store) Loans() ports.LoanRepository                 { return loanRepo{s} }
func (s *Store) Notifications() ports.NotificationRepository { return notificationRepo{s} }
func (s *Store) Payments() ports.PaymentRepository           { return paymentRepo{s} }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

type snapshot struct {
	users         *table[domain.User]
	books         *table[domain.Book]
	genres        *table[domain.Genre]
	requests      *table[domain.BorrowRequest]
	loans         *table[domain.Loan]
	notifications *table[domain.Notification]
	payments      *table[domain.Payment]
	dedupKeys     map[string]struct{}
}

// WithinTx runs fn and restores every table to its prior state when fn fails.
// Transactions do not overlap. Readers outside the transaction may observe
// intermediate writes; writers are expected to go through a single
// serialized executor.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.takeSnapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) takeSnapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make(map[string]struct{}, len(s.dedupKeys))
	for k := range s.dedupKeys {
		keys[k] = struct{}{}
	}
	return snapshot{
		users:         s.users.snapshot(),
		books:         s.books.snapshot(),
		genres:        s.genres.snapshot(),
		requests:      s.requests.snapshot(),
		loans:         s.loans.snapshot(),
		notifications: s.notifications.snapshot(),
		payments:      s.payments.snapshot(),
		dedupKeys:     keys,
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = snap.users
	s.books = snap.books
	s.genres = snap.genres
	s.requests = snap.requests
	s.loans = snap.loans
	s.notifications = snap.notifications
	s.payments = snap.payments
	s.dedupKeys = snap.dedupKeys
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// --- users ---

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email := domain.NormalizeEmail(u.Email)
	for _, existing := range r.s.users.rows {
		if domain.NormalizeEmail(existing.Email) == email {
			return domain.ErrUserExists
		}
	}
	u.ID = newID(u.ID)
	r.s.users.put(u.ID, u)
	return nil
}

func (r userRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users.get(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (r userRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	email = domain.NormalizeEmail(email)
	u, ok := lo.Find(r.s.users.all(), func(u *domain.User) bool {
		return domain.NormalizeEmail(u.Email) == email
	})
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (r userRepo) List(_ context.Context, roles []domain.Role) ([]*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := r.s.users.all()
	if roles == nil {
		return all, nil
	}
	return lo.Filter(all, func(u *domain.User, _ int) bool {
		return lo.Contains(roles, u.Role)
	}), nil
}

func (r userRepo) Update(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.users.has(u.ID) {
		return domain.ErrUserNotFound
	}
	email := domain.NormalizeEmail(u.Email)
	for id, existing := range r.s.users.rows {
		if id != u.ID && domain.NormalizeEmail(existing.Email) == email {
			return domain.ErrUserExists
		}
	}
	r.s.users.put(u.ID, u)
	return nil
}

// --- books ---

type bookRepo struct{ s *Store }

func (r bookRepo) Create(_ context.Context, b *domain.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.books.rows {
		if existing.ISBN == b.ISBN {
			return domain.ErrDuplicateISBN
		}
	}
	b.ID = newID(b.ID)
	r.s.books.put(b.ID, b)
	return nil
}

func (r bookRepo) FindByID(_ context.Context, id string) (*domain.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.books.get(id)
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	return b, nil
}

func (r bookRepo) List(_ context.Context, f ports.BookFilter) ([]*domain.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return lo.Filter(r.s.books.all(), func(b *domain.Book, _ int) bool {
		if f.Query != "" && !containsFold(b.Title, f.Query) {
			return false
		}
		if f.Author != "" && !containsFold(b.Author, f.Author) {
			return false
		}
		if f.Genre != "" && !strings.EqualFold(b.Genre, f.Genre) {
			return false
		}
		return true
	}), nil
}

func (r bookRepo) Update(_ context.Context, b *domain.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.books.has(b.ID) {
		return domain.ErrBookNotFound
	}
	r.s.books.put(b.ID, b)
	return nil
}

// --- genres ---

type genreRepo struct{ s *Store }

func (r genreRepo) nameTaken(name, exceptID string) bool {
	for id, g := range r.s.genres.rows {
		if id != exceptID && strings.EqualFold(g.Name, name) {
			return true
		}
	}
	return false
}

func (r genreRepo) Create(_ context.Context, g *domain.Genre) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.nameTaken(g.Name, "") {
		return domain.ErrDuplicateGenre
	}
	g.ID = newID(g.ID)
	r.s.genres.put(g.ID, g)
	return nil
}

func (r genreRepo) FindByID(_ context.Context, id string) (*domain.Genre, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	g, ok := r.s.genres.get(id)
	if !ok {
		return nil, domain.ErrGenreNotFound
	}
	return g, nil
}

func (r genreRepo) List(context.Context) ([]*domain.Genre, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.genres.all(), nil
}

func (r genreRepo) Update(_ context.Context, g *domain.Genre) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.genres.has(g.ID) {
		return domain.ErrGenreNotFound
	}
	if r.nameTaken(g.Name, g.ID) {
		return domain.ErrDuplicateGenre
	}
	r.s.genres.put(g.ID, g)
	return nil
}

func (r genreRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.genres.has(id) {
		return domain.ErrGenreNotFound
	}
	r.s.genres.delete(id)
	return nil
}

// --- borrow requests ---

type requestRepo struct{ s *Store }

func (r requestRepo) Create(_ context.Context, req *domain.BorrowRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req.ID = newID(req.ID)
	r.s.requests.put(req.ID, req)
	return nil
}

func (r requestRepo) FindByID(_ context.Context, id string) (*domain.BorrowRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	req, ok := r.s.requests.get(id)
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	return req, nil
}

func (r requestRepo) List(_ context.Context, f ports.RequestFilter) ([]*domain.BorrowRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return lo.Filter(r.s.requests.all(), func(req *domain.BorrowRequest, _ int) bool {
		return (f.UserID == "" || req.UserID == f.UserID) &&
			(f.BookID == "" || req.BookID == f.BookID) &&
			(f.Status == "" || req.Status == f.Status)
	}), nil
}

func (r requestRepo) Update(_ context.Context, req *domain.BorrowRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.requests.has(req.ID) {
		return domain.ErrRequestNotFound
	}
	r.s.requests.put(req.ID, req)
	return nil
}

// --- loans ---

type loanRepo struct{ s *Store }

func (r loanRepo) Create(_ context.Context, l *domain.Loan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l.ID = newID(l.ID)
	r.s.loans.put(l.ID, l)
	return nil
}

func (r loanRepo) FindByID(_ context.Context, id string) (*domain.Loan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	l, ok := r.s.loans.get(id)
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	return l, nil
}

func (r loanRepo) List(_ context.Context, f ports.LoanFilter) ([]*domain.Loan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return lo.Filter(r.s.loans.all(), func(l *domain.Loan, _ int) bool {
		return (f.UserID == "" || l.UserID == f.UserID) &&
			(f.Returned == nil || l.Returned == *f.Returned)
	}), nil
}

func (r loanRepo) Update(_ context.Context, l *domain.Loan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.loans.has(l.ID) {
		return domain.ErrLoanNotFound
	}
	r.s.loans.put(l.ID, l)
	return nil
}

// --- notifications ---

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(_ context.Context, n *domain.Notification) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if n.DedupKey != "" {
		if _, seen := r.s.dedupKeys[n.DedupKey]; seen {
			return false, nil
		}
		r.s.dedupKeys[n.DedupKey] = struct{}{}
	}
	n.ID = newID(n.ID)
	r.s.notifications.put(n.ID, n)
	return true, nil
}

func (r notificationRepo) FindByID(_ context.Context, id string) (*domain.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n, ok := r.s.notifications.get(id)
	if !ok {
		return nil, domain.ErrNotificationNotFound
	}
	return n, nil
}

func (r notificationRepo) ListByUser(_ context.Context, userID string) ([]*domain.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := lo.Filter(r.s.notifications.all(), func(n *domain.Notification, _ int) bool {
		return n.UserID == userID
	})
	// Insertion order breaks ties between notifications of the same date.
	out = lo.Reverse(out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r notificationRepo) Update(_ context.Context, n *domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.notifications.has(n.ID) {
		return domain.ErrNotificationNotFound
	}
	r.s.notifications.put(n.ID, n)
	return nil
}

func (r notificationRepo) MarkAllRead(_ context.Context, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	changed := 0
	for _, n := range r.s.notifications.all() {
		if n.UserID != userID || n.Read {
			continue
		}
		n.Read = true
		r.s.notifications.put(n.ID, n)
		changed++
	}
	return changed, nil
}

// --- payments ---

type paymentRepo struct{ s *Store }

func (r paymentRepo) Create(_ context.Context, p *domain.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p.ID = newID(p.ID)
	r.s.payments.put(p.ID, p)
	return nil
}

func (r paymentRepo) ListByUser(_ context.Context, userID string) ([]*domain.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return lo.Filter(r.s.payments.all(), func(p *domain.Payment, _ int) bool {
		return p.UserID == userID
	}), nil
}

var _ ports.Store = (*Store)(nil)

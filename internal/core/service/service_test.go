package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusshelf/library-system/internal/core/domain"
	"github.com/campusshelf/library-system/internal/core/ports"
	"github.com/campusshelf/library-system/internal/infrastructure/db/memory"
)

// inlineExec runs commands on the calling goroutine; tests are single-threaded.
type inlineExec struct{}

func (inlineExec) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

// outbox records mail instead of sending it.
type outbox struct {
	sent []sentMail
}

type sentMail struct {
	to, subject, body string
}

func (o *outbox) Send(_ context.Context, to, subject, body string) error {
	o.sent = append(o.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type fixture struct {
	store  *memory.Store
	outbox *outbox
	now    time.Time

	catalog       *CatalogService
	circulation   *CirculationService
	users         *UserService
	auth          *AuthService
	notifications *NotificationService
	fines         *FineService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:  memory.NewStore(),
		outbox: &outbox{},
		now:    time.Date(2024, 4, 2, 10, 30, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	exec := inlineExec{}
	log := zerolog.Nop()
	opts := Options{}

	f.catalog = NewCatalogService(f.store, exec, log)
	f.circulation = NewCirculationService(f.store, exec, opts, log)
	f.users = NewUserService(f.store, exec, log)
	f.auth = NewAuthService(f.store, exec, memory.NewBlocklist(), memory.NewResetCodes().WithClock(clock), f.outbox,
		AuthOptions{JWTSecret: "secret", TokenTTL: time.Hour}, log)
	f.notifications = NewNotificationService(f.store, exec, opts, log)
	f.fines = NewFineService(f.store, exec, opts, log)

	for _, b := range []*base{
		&f.catalog.base, &f.circulation.base, &f.users.base,
		&f.auth.base, &f.notifications.base, &f.fines.base,
	} {
		b.now = clock
	}
	f.users.hashCost = bcrypt.MinCost
	f.auth.hashCost = bcrypt.MinCost
	return f
}

// at moves the fixture clock to the given date at mid-morning.
func (f *fixture) at(y int, m time.Month, d int) {
	f.now = time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

const testPassword = "password123"

var seq int

func nextSeq() int {
	seq++
	return seq
}

func (f *fixture) seedUser(t *testing.T, role domain.Role, mutate ...func(*domain.User)) (*domain.User, ports.Actor) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	u := &domain.User{
		Name:         string(role) + " user",
		Email:        fmt.Sprintf("%s-%d@uni.edu", role, nextSeq()),
		PasswordHash: string(hash),
		Role:         role,
		Department:   "Library Science",
		IsActive:     true,
	}
	if role == domain.RoleStudent {
		u.StudentID = "S-1"
	}
	for _, m := range mutate {
		m(u)
	}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return u, ports.Actor{UserID: u.ID, Role: u.Role}
}

func (f *fixture) seedBook(t *testing.T, total, available int) *domain.Book {
	t.Helper()

	b := &domain.Book{
		Title:             "Dune",
		Author:            "Frank Herbert",
		Genre:             "Science Fiction",
		ISBN:              fmt.Sprintf("978-%d", nextSeq()),
		TotalQuantity:     total,
		AvailableQuantity: available,
	}
	require.NoError(t, f.store.Books().Create(context.Background(), b))
	return b
}

func (f *fixture) book(t *testing.T, id string) *domain.Book {
	t.Helper()
	b, err := f.store.Books().FindByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

// borrow runs a request through approval and returns the resulting loan.
func (f *fixture) borrow(t *testing.T, borrower, reviewer ports.Actor, bookID string) *domain.Loan {
	t.Helper()
	ctx := context.Background()

	req, err := f.circulation.CreateBorrowRequest(ctx, borrower, bookID)
	require.NoError(t, err)
	req, err = f.circulation.ReviewBorrowRequest(ctx, reviewer, ports.ReviewInput{
		RequestID: req.ID,
		Decision:  domain.RequestApproved,
	})
	require.NoError(t, err)

	loan, err := f.store.Loans().FindByID(ctx, req.LoanID)
	require.NoError(t, err)
	return loan
}

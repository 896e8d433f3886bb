// Package seed loads the demo accounts and catalog used in development.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusshelf/library-system/internal/core/domain"
	"github.com/campusshelf/library-system/internal/core/ports"
)

// DemoPassword is the password of every demo account.
const DemoPassword = "password123"

type demoUser struct {
	name, email, department, studentID string
	role                               domain.Role
	since                              time.Time
}

var demoUsers = []demoUser{
	{"Alex Johnson", "student@test.com", "Computer Science", "CS2023001", domain.RoleStudent, day(2023, 9, 1)},
	{"Sarah Wilson", "librarian@test.com", "Library Services", "", domain.RoleLibrarian, day(2020, 1, 1)},
	{"Michael Brown", "admin@test.com", "Administration", "", domain.RoleAdmin, day(2019, 3, 1)},
	{"Dr. Emily Davis", "faculty@test.com", "Mathematics", "", domain.RoleFaculty, day(2018, 8, 1)},
	{"John Visitor", "guest@test.com", "Guest Access", "", domain.RoleGuest, day(2024, 12, 1)},
}

var demoGenres = []domain.Genre{
	{Name: "Computer Science", Description: "Algorithms, programming and software engineering"},
	{Name: "Design"},
	{Name: "Psychology"},
	{Name: "Fiction"},
	{Name: "Physics"},
	{Name: "Mathematics"},
}

var demoBooks = []domain.Book{
	{Title: "Introduction to Algorithms", Author: "Thomas H. Cormen", Genre: "Computer Science", ISBN: "9780262046305", TotalQuantity: 3},
	{Title: "The Design of Everyday Things", Author: "Don Norman", Genre: "Design", ISBN: "9780465050659", TotalQuantity: 2},
	{Title: "Clean Code", Author: "Robert C. Martin", Genre: "Computer Science", ISBN: "9780132350884", TotalQuantity: 4},
	{Title: "Thinking, Fast and Slow", Author: "Daniel Kahneman", Genre: "Psychology", ISBN: "9780374533557", TotalQuantity: 2},
	{Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", Genre: "Fiction", ISBN: "9780743273565", TotalQuantity: 5},
	{Title: "To Kill a Mockingbird", Author: "Harper Lee", Genre: "Fiction", ISBN: "9780061120084", TotalQuantity: 3},
	{Title: "Physics for Scientists and Engineers", Author: "Serway & Jewett", Genre: "Physics", ISBN: "9781337553278", TotalQuantity: 2},
	{Title: "Calculus: Early Transcendentals", Author: "James Stewart", Genre: "Mathematics", ISBN: "9781285741550", TotalQuantity: 4},
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Result counts what a run created.
type Result struct {
	Users  int
	Genres int
	Books  int
}

// Seeder writes the demo data. Records that already exist (matched by email,
// genre name or ISBN) are left untouched, so running it twice is harmless.
type Seeder struct {
	store    ports.Store
	exec     ports.Executor
	log      zerolog.Logger
	hashCost int
	now      func() time.Time
}

func NewSeeder(store ports.Store, exec ports.Executor, log zerolog.Logger) *Seeder {
	return &Seeder{store: store, exec: exec, log: log, hashCost: bcrypt.DefaultCost, now: time.Now}
}

// Run seeds everything in one serialized transaction.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), s.hashCost)
	if err != nil {
		return Result{}, fmt.Errorf("hash demo password: %w", err)
	}

	var res Result
	err = s.exec.Do(ctx, func(ctx context.Context) error {
		return s.store.WithinTx(ctx, func(ctx context.Context) error {
			res = Result{}
			if res.Users, err = s.users(ctx, string(hash)); err != nil {
				return err
			}
			if res.Genres, err = s.genres(ctx); err != nil {
				return err
			}
			res.Books, err = s.books(ctx)
			return err
		})
	})
	if err != nil {
		return Result{}, fmt.Errorf("seed: %w", err)
	}

	s.log.Info().
		Int("users", res.Users).
		Int("genres", res.Genres).
		Int("books", res.Books).
		Msg("demo data seeded")
	return res, nil
}

func (s *Seeder) users(ctx context.Context, hash string) (int, error) {
	created := 0
	now := s.now().UTC()
	for _, d := range demoUsers {
		_, err := s.store.Users().FindByEmail(ctx, d.email)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return created, err
		}
		u := &domain.User{
			Name:         d.name,
			Email:        d.email,
			PasswordHash: hash,
			Role:         d.role,
			Department:   d.department,
			StudentID:    d.studentID,
			MemberSince:  d.since,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.store.Users().Create(ctx, u); err != nil {
			return created, fmt.Errorf("user %s: %w", d.email, err)
		}
		created++
	}
	return created, nil
}

func (s *Seeder) genres(ctx context.Context) (int, error) {
	existing, err := s.store.Genres().List(ctx)
	if err != nil {
		return 0, err
	}
	names := lo.Map(existing, func(g *domain.Genre, _ int) string { return strings.ToLower(g.Name) })

	created := 0
	for _, g := range demoGenres {
		if lo.Contains(names, strings.ToLower(g.Name)) {
			continue
		}
		if err := s.store.Genres().Create(ctx, &g); err != nil {
			return created, fmt.Errorf("genre %s: %w", g.Name, err)
		}
		created++
	}
	return created, nil
}

func (s *Seeder) books(ctx context.Context) (int, error) {
	existing, err := s.store.Books().List(ctx, ports.BookFilter{})
	if err != nil {
		return 0, err
	}
	isbns := lo.Associate(existing, func(b *domain.Book) (string, struct{}) { return b.ISBN, struct{}{} })

	created := 0
	now := s.now().UTC()
	for _, b := range demoBooks {
		if _, ok := isbns[b.ISBN]; ok {
			continue
		}
		b.AvailableQuantity = b.TotalQuantity
		b.AddedAt = now
		if err := s.store.Books().Create(ctx, &b); err != nil {
			return created, fmt.Errorf("book %s: %w", b.ISBN, err)
		}
		created++
	}
	return created, nil
}

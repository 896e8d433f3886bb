package seed

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusshelf/library-system/internal/core/domain"
	"github.com/campusshelf/library-system/internal/core/ports"
	"github.com/campusshelf/library-system/internal/infrastructure/db/memory"
)

type inlineExec struct{}

func (inlineExec) Do(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

func newSeeder(store *memory.Store) *Seeder {
	s := NewSeeder(store, inlineExec{}, zerolog.New(io.Discard))
	s.hashCost = bcrypt.MinCost
	return s
}

func TestSeeder_Run(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	res, err := newSeeder(store).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Users: len(demoUsers), Genres: len(demoGenres), Books: len(demoBooks)}, res)

	student, err := store.Users().FindByEmail(ctx, "student@test.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, student.Role)
	assert.Equal(t, "CS2023001", student.StudentID)
	assert.True(t, student.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte(DemoPassword)))

	books, err := store.Books().List(ctx, ports.BookFilter{})
	require.NoError(t, err)
	for _, b := range books {
		assert.Equal(t, b.TotalQuantity, b.AvailableQuantity, b.Title)
	}
}

func TestSeeder_RunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	s := newSeeder(store)

	_, err := s.Run(ctx)
	require.NoError(t, err)

	res, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)

	users, err := store.Users().List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, users, len(demoUsers))
}

func TestSeeder_KeepsExistingRecords(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Books().Create(ctx, &domain.Book{
		Title: "Clean Code", Author: "Robert C. Martin", Genre: "Computer Science",
		ISBN: "9780132350884", TotalQuantity: 1, AvailableQuantity: 0,
	}))

	res, err := newSeeder(store).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(demoBooks)-1, res.Books)

	books, err := store.Books().List(ctx, ports.BookFilter{Query: "clean code"})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, 0, books[0].AvailableQuantity)
}

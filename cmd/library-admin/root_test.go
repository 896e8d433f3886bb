package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), &out, envconfig.MapLookuper(map[string]string{
		"STORE_BACKEND": "memory",
	}), args)
	return out.String(), err
}

func TestSeedCommand(t *testing.T) {
	out, err := execute(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "created 5 users, 6 genres, 8 books")
}

func TestBooksList_WithSeed(t *testing.T) {
	out, err := execute(t, "--seed", "books", "list", "--genre", "fiction")
	require.NoError(t, err)
	assert.Contains(t, out, "The Great Gatsby")
	assert.Contains(t, out, "To Kill a Mockingbird")
	assert.NotContains(t, out, "Clean Code")
}

func TestBooksAdd_AsStudentIsForbidden(t *testing.T) {
	_, err := execute(t, "--seed", "--as", "student@test.com",
		"books", "add", "--title", "Dune", "--author", "Frank Herbert", "--genre", "Fiction", "--isbn", "9780441172719")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed to manage-books")
}

func TestUsersList_AsLibrarianHidesStaff(t *testing.T) {
	out, err := execute(t, "--seed", "--as", "librarian@test.com", "users", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "student@test.com")
	assert.Contains(t, out, "guest@test.com")
	assert.NotContains(t, out, "admin@test.com")
}

func TestUnknownActor(t *testing.T) {
	_, err := execute(t, "books", "list", "--as", "nobody@test.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nobody@test.com")
}

func TestUnknownStoreFlag(t *testing.T) {
	_, err := execute(t, "--store", "sqlite", "books", "list")
	require.Error(t, err)
}

func TestRemindersSend_NothingDue(t *testing.T) {
	out, err := execute(t, "--seed", "reminders", "send")
	require.NoError(t, err)
	assert.Contains(t, out, "sent 0 reminders")
}

func TestRequestsList_RejectsUnknownStatus(t *testing.T) {
	_, err := execute(t, "--seed", "requests", "list", "--status", "lost")
	require.Error(t, err)
}

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/campusshelf/library-system/internal/core/domain"
	"github.com/campusshelf/library-system/internal/core/ports"
	"github.com/campusshelf/library-system/internal/infrastructure/db/memory"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":  "user-1",
		"role": "librarian",
		"jti":  "token-1",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
}

// accounts returns a user store holding user-1 with the given role.
func accounts(t *testing.T, role domain.Role) ports.UserRepository {
	t.Helper()
	users := memory.NewStore().Users()
	err := users.Create(context.Background(), &domain.User{ID: "user-1", Email: "user-1@uni.edu", Role: role, IsActive: true})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return users
}

// runAuth sends a request carrying header through the middleware and
// returns the recorded status and whether the next handler ran.
func runAuth(t *testing.T, header string, blocklist *memory.Blocklist, users ports.UserRepository, next echo.HandlerFunc) (int, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth("secret", blocklist, users, zerolog.Nop())(func(c echo.Context) error {
		called = true
		if next != nil {
			return next(c)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec.Code, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	signed := signToken(t, "secret", validClaims())

	code, called := runAuth(t, "Bearer "+signed, memory.NewBlocklist(), accounts(t, domain.RoleLibrarian), func(c echo.Context) error {
		if c.Get(KeyUserID) != "user-1" {
			t.Fatalf("user id not set")
		}
		if c.Get(KeyRole) != "librarian" {
			t.Fatalf("role not set")
		}
		if c.Get(KeyTokenID) != "token-1" {
			t.Fatalf("token id not set")
		}
		if _, ok := c.Get(KeyTokenExp).(time.Time); !ok {
			t.Fatalf("token expiry not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("next not called")
	}
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	noJTI := validClaims()
	delete(noJTI, "jti")

	noExp := validClaims()
	delete(noExp, "exp")

	cases := map[string]string{
		"missing header":       "",
		"wrong scheme":         "Token abc",
		"garbage token":        "Bearer not-a-token",
		"wrong secret":         "Bearer " + signToken(t, "other", validClaims()),
		"expired":              "Bearer " + signToken(t, "secret", expired),
		"missing token id":     "Bearer " + signToken(t, "secret", noJTI),
		"missing expiry claim": "Bearer " + signToken(t, "secret", noExp),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			code, called := runAuth(t, header, memory.NewBlocklist(), accounts(t, domain.RoleLibrarian), nil)
			if called {
				t.Fatalf("should not reach next")
			}
			if code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", code)
			}
		})
	}
}

func TestAuthMiddleware_RevokedToken(t *testing.T) {
	blocklist := memory.NewBlocklist()
	if err := blocklist.Revoke(context.Background(), "token-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	code, called := runAuth(t, "Bearer "+signToken(t, "secret", validClaims()), blocklist, accounts(t, domain.RoleLibrarian), nil)
	if called {
		t.Fatalf("should not reach next")
	}
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestAuthMiddleware_UsesCurrentRole(t *testing.T) {
	claims := validClaims()
	claims["role"] = "student"

	code, called := runAuth(t, "Bearer "+signToken(t, "secret", claims), memory.NewBlocklist(), accounts(t, domain.RoleLibrarian), func(c echo.Context) error {
		if c.Get(KeyRole) != "librarian" {
			t.Fatalf("expected the account's current role, got %v", c.Get(KeyRole))
		}
		return c.NoContent(http.StatusOK)
	})
	if !called || code != http.StatusOK {
		t.Fatalf("expected next to run with 200, got %d", code)
	}
}

func TestAuthMiddleware_UnknownAccount(t *testing.T) {
	claims := validClaims()
	claims["sub"] = "user-2"

	code, called := runAuth(t, "Bearer "+signToken(t, "secret", claims), memory.NewBlocklist(), accounts(t, domain.RoleLibrarian), nil)
	if called {
		t.Fatalf("should not reach next")
	}
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/campusshelf/library-system/internal/core/domain"
	"github.com/campusshelf/library-system/internal/core/ports"
)

type stubAuthService struct {
	signupFn       func(ctx context.Context, in ports.SignupInput) (*domain.User, error)
	authenticateFn func(ctx context.Context, email, password string, role domain.Role) (*ports.AuthResult, error)
	logoutFn       func(ctx context.Context, tokenID string, expiresAt time.Time) error
	requestResetFn func(ctx context.Context, email string) error
	resetFn        func(ctx context.Context, email, code, newPassword string) error
}

func (s *stubAuthService) Signup(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
	return s.signupFn(ctx, in)
}

func (s *stubAuthService) Authenticate(ctx context.Context, email, password string, role domain.Role) (*ports.AuthResult, error) {
	return s.authenticateFn(ctx, email, password, role)
}

func (s *stubAuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	return s.logoutFn(ctx, tokenID, expiresAt)
}

func (s *stubAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	return s.requestResetFn(ctx, email)
}

func (s *stubAuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return s.resetFn(ctx, email, code, newPassword)
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
			if in.Name != "Ada" || in.Role != domain.RoleStudent || in.StudentID != "S-1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "u1", Name: in.Name, Email: in.Email, Role: in.Role, IsActive: true}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/auth/signup",
		`{"name":"Ada","email":"ada@uni.edu","password":"secret1","role":"student","department":"CS","student_id":"S-1"}`)
	serve(c, h.Signup)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	user := decode[map[string]any](t, rec)
	if user["id"] != "u1" || user["role"] != "student" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatalf("password hash must not be serialized")
	}
}

func TestAuthHandler_Signup_ValidationError(t *testing.T) {
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/auth/signup", `{"name":"Ada","email":"not-an-email","password":"x","role":"student","department":"CS"}`)
	serve(c, h.Signup)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Signup_AdminRejectedByValidator(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, rec := newTestContext(http.MethodPost, "/auth/signup",
		`{"name":"Eve","email":"eve@uni.edu","password":"secret1","role":"admin","department":"CS"}`)
	serve(c, h.Signup)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Signup_UserExists(t *testing.T) {
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/auth/signup",
		`{"name":"Ada","email":"ada@uni.edu","password":"secret1","role":"faculty","department":"CS"}`)
	serve(c, h.Signup)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	exp := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	stub := &stubAuthService{
		authenticateFn: func(ctx context.Context, email, password string, role domain.Role) (*ports.AuthResult, error) {
			if email != "lib@uni.edu" || password != "secret1" || role != domain.RoleLibrarian {
				t.Fatalf("unexpected args: %s %s %s", email, password, role)
			}
			return &ports.AuthResult{Token: "jwt", ExpiresAt: exp, User: &domain.User{ID: "u2", Role: role}}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/auth/login", `{"email":"lib@uni.edu","password":"secret1","role":"Librarian"}`)
	serve(c, h.Login)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[map[string]any](t, rec)
	if resp["token"] != "jwt" {
		t.Fatalf("expected token in response, got %+v", resp)
	}
	if _, ok := resp["user"].(map[string]any); !ok {
		t.Fatalf("expected user in response")
	}
}

func TestAuthHandler_Login_Errors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"deactivated", &domain.DeactivatedError{Remark: "left the university"}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubAuthService{
				authenticateFn: func(ctx context.Context, email, password string, role domain.Role) (*ports.AuthResult, error) {
					return nil, tc.err
				},
			}
			h := NewAuthHandler(stub)

			c, rec := newTestContext(http.MethodPost, "/auth/login", `{"email":"a@uni.edu","password":"secret1","role":"student"}`)
			serve(c, h.Login)

			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
			resp := decode[errorResponse](t, rec)
			if resp.Error != tc.err.Error() {
				t.Fatalf("expected %q, got %q", tc.err.Error(), resp.Error)
			}
		})
	}
}

func TestAuthHandler_Login_UnknownRole(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, rec := newTestContext(http.MethodPost, "/auth/login", `{"email":"a@uni.edu","password":"secret1","role":"janitor"}`)
	serve(c, h.Login)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	var revoked string
	stub := &stubAuthService{
		logoutFn: func(ctx context.Context, tokenID string, expiresAt time.Time) error {
			revoked = tokenID
			return nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/auth/logout", "")
	withActor(c, "u1", domain.RoleStudent)
	serve(c, h.Logout)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if revoked != "tok-u1" {
		t.Fatalf("expected tok-u1 revoked, got %q", revoked)
	}
}

func TestAuthHandler_Logout_WithoutToken(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, rec := newTestContext(http.MethodPost, "/auth/logout", "")
	serve(c, h.Logout)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	var got string
	h := NewAuthHandler(&stubAuthService{
		requestResetFn: func(ctx context.Context, email string) error {
			got = email
			return nil
		},
	})

	c, rec := newTestContext(http.MethodPost, "/auth/password/forgot", `{"email":"ada@uni.edu"}`)
	serve(c, h.ForgotPassword)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if got != "ada@uni.edu" {
		t.Fatalf("unexpected email %q", got)
	}
}

func TestAuthHandler_ResetPassword(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		resetFn: func(ctx context.Context, email, code, newPassword string) error {
			if email != "ada@uni.edu" || newPassword != "secret99" {
				t.Fatalf("unexpected input: %s %s", email, newPassword)
			}
			if code != "123456" {
				return domain.ErrInvalidResetCode
			}
			return nil
		},
	})

	body := `{"email":"ada@uni.edu","code":"123456","new_password":"secret99","confirm_password":"secret99"}`
	c, rec := newTestContext(http.MethodPost, "/auth/password/reset", body)
	serve(c, h.ResetPassword)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	body = `{"email":"ada@uni.edu","code":"654321","new_password":"secret99","confirm_password":"secret99"}`
	c, rec = newTestContext(http.MethodPost, "/auth/password/reset", body)
	serve(c, h.ResetPassword)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a wrong code, got %d", rec.Code)
	}
}

func TestAuthHandler_ResetPassword_ValidationError(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		resetFn: func(ctx context.Context, email, code, newPassword string) error {
			t.Fatalf("service must not be called")
			return nil
		},
	})

	cases := map[string]string{
		"mismatched confirm": `{"email":"ada@uni.edu","code":"123456","new_password":"secret99","confirm_password":"secret98"}`,
		"short code":         `{"email":"ada@uni.edu","code":"1234","new_password":"secret99","confirm_password":"secret99"}`,
		"short password":     `{"email":"ada@uni.edu","code":"123456","new_password":"abc","confirm_password":"abc"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, rec := newTestContext(http.MethodPost, "/auth/password/reset", body)
			serve(c, h.ResetPassword)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

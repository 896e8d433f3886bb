package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusshelf/library-system/internal/core/domain"
	"github.com/campusshelf/library-system/internal/core/ports"
)

// Defaults applied by NewAuthService when AuthOptions leaves a field zero.
const (
	DefaultTokenTTL     = 24 * time.Hour
	DefaultResetCodeTTL = 15 * time.Minute
)

// AuthOptions configures token signing and password reset.
type AuthOptions struct {
	JWTSecret    string
	TokenTTL     time.Duration
	ResetCodeTTL time.Duration
}

// AuthService implements sign-up, login, logout and password reset.
type AuthService struct {
	base
	blocklist ports.TokenBlocklist
	resets    ports.ResetCodeStore
	mailer    ports.Mailer
	jwtSecret string
	tokenTTL  time.Duration
	resetTTL  time.Duration
	hashCost  int
	newCode   func() (string, error)
}

func NewAuthService(store ports.Store, exec ports.Executor, blocklist ports.TokenBlocklist, resets ports.ResetCodeStore, mailer ports.Mailer, opts AuthOptions, logger zerolog.Logger) *AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = DefaultTokenTTL
	}
	if opts.ResetCodeTTL <= 0 {
		opts.ResetCodeTTL = DefaultResetCodeTTL
	}
	return &AuthService{
		base:      newBase(store, exec, logger),
		blocklist: blocklist,
		resets:    resets,
		mailer:    mailer,
		jwtSecret: opts.JWTSecret,
		tokenTTL:  opts.TokenTTL,
		resetTTL:  opts.ResetCodeTTL,
		hashCost:  bcrypt.DefaultCost,
		newCode:   randomCode,
	}
}

// Signup registers a self-service account. Admin accounts can only be
// created by another admin.
func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
	if in.Role == domain.RoleAdmin {
		return nil, domain.Invalid("admin accounts cannot be created by sign-up")
	}
	if err := validateAccount(in.Name, in.Email, in.Password, in.Department, in.Role, in.StudentID); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        domain.NormalizeEmail(in.Email),
		PasswordHash: string(hash),
		Role:         in.Role,
		Department:   strings.TrimSpace(in.Department),
		StudentID:    strings.TrimSpace(in.StudentID),
		MemberSince:  domain.Day(now),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.mutate(ctx, func(ctx context.Context) error {
		return s.store.Users().Create(ctx, user)
	}); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user signed up")
	return user, nil
}

// Authenticate checks the credentials and the role the user signs in as,
// and issues a token. Unknown email, wrong password and wrong role are
// indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, email, password string, role domain.Role) (*ports.AuthResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if user.Role != role {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, &domain.DeactivatedError{Remark: user.InactiveRemark}
	}

	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Str("user_id", user.ID).Msg("user authenticated")
	return &ports.AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Logout revokes a token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return domain.Invalid("token id is required")
	}
	return s.blocklist.Revoke(ctx, tokenID, expiresAt)
}

// RequestPasswordReset issues a six-digit code for the account and mails
// it. A new request replaces any code still pending.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.Invalid("email is required")
	}

	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debug().Msg("password reset requested for unknown email")
			return nil
		}
		return err
	}
	if !user.IsActive {
		s.logger.Debug().Str("user_id", user.ID).Msg("password reset requested for deactivated account")
		return nil
	}

	code, err := s.newCode()
	if err != nil {
		return fmt.Errorf("generate reset code: %w", err)
	}
	if err := s.resets.Save(ctx, email, code, s.resetTTL); err != nil {
		return err
	}
	body := fmt.Sprintf("Your password reset code is %s. It expires in %d minutes.", code, int(s.resetTTL.Minutes()))
	if err := s.mailer.Send(ctx, user.Email, "Password reset code", body); err != nil {
		return fmt.Errorf("send reset code: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Dur("ttl", s.resetTTL).Msg("password reset code issued")
	return nil
}

// ResetPassword replaces the password once the code checks out. The code is
// spent on success; a too-short password is rejected before the code is
// looked at.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = domain.NormalizeEmail(email)
	if err := required([2]string{"email", email}, [2]string{"code", code}); err != nil {
		return err
	}
	if len(newPassword) < minPasswordLength {
		return domain.Invalid("password must be at least %d characters", minPasswordLength)
	}

	ok, err := s.resets.Consume(ctx, email, code)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidResetCode
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.hashCost)
	if err != nil {
		return err
	}

	var userID string
	if err := s.mutate(ctx, func(ctx context.Context) error {
		user, err := s.store.Users().FindByEmail(ctx, email)
		if err != nil {
			return err
		}
		user.PasswordHash = string(hash)
		user.UpdatedAt = s.now().UTC()
		userID = user.ID
		return s.store.Users().Update(ctx, user)
	}); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", userID).Msg("password reset")
	return nil
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func (s *AuthService) generateToken(user *domain.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

var _ ports.AuthService = (*AuthService)(nil)

package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusshelf/library-system/internal/core/domain"
	"github.com/campusshelf/library-system/internal/core/policy"
	"github.com/campusshelf/library-system/internal/core/ports"
)

const minPasswordLength = 6

// UserService administers accounts on behalf of librarians and admins.
type UserService struct {
	base
	hashCost int
}

func NewUserService(store ports.Store, exec ports.Executor, logger zerolog.Logger) *UserService {
	return &UserService{base: newBase(store, exec, logger), hashCost: bcrypt.DefaultCost}
}

// ListUsers returns the accounts whose role the caller may see.
func (s *UserService) ListUsers(ctx context.Context, actor ports.Actor) ([]*domain.User, error) {
	user, err := s.authorize(ctx, actor, policy.ManageUsers)
	if err != nil {
		return nil, err
	}
	return s.store.Users().List(ctx, policy.VisibleRoles(user.Role))
}

func (s *UserService) CreateUser(ctx context.Context, actor ports.Actor, in ports.CreateUserInput) (*domain.User, error) {
	creator, err := s.authorize(ctx, actor, policy.ManageUsers)
	if err != nil {
		return nil, err
	}
	if err := validateAccount(in.Name, in.Email, in.Password, in.Department, in.Role, in.StudentID); err != nil {
		return nil, err
	}
	if !policy.CanAssignRole(creator.Role, in.Role) {
		return nil, domain.Forbidden("create " + string(in.Role) + " accounts")
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
		CreatedBy:    creator.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.mutate(ctx, func(ctx context.Context) error {
		return s.store.Users().Create(ctx, user)
	}); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Str("created_by", creator.ID).Msg("user created")
	return user, nil
}

// UpdateUserProfile applies the non-nil fields of in. Users edit their own
// profile (guests excepted); staff edit the accounts they manage. Role
// changes always require management rights over the target.
func (s *UserService) UpdateUserProfile(ctx context.Context, actor ports.Actor, userID string, in ports.UpdateProfileInput) (*domain.User, error) {
	editor, err := s.authorize(ctx, actor, policy.ViewCatalog)
	if err != nil {
		return nil, err
	}

	var updated *domain.User
	err = s.mutate(ctx, func(ctx context.Context) error {
		target, err := s.store.Users().FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if !policy.CanEditProfile(editor, target) {
			return domain.Forbidden("edit this profile")
		}

		if in.Name != nil {
			if strings.TrimSpace(*in.Name) == "" {
				return domain.Invalid("name is required")
			}
			target.Name = strings.TrimSpace(*in.Name)
		}
		if in.Email != nil {
			email := domain.NormalizeEmail(*in.Email)
			if email == "" {
				return domain.Invalid("email is required")
			}
			target.Email = email
		}
		if in.Department != nil {
			target.Department = strings.TrimSpace(*in.Department)
		}
		if in.StudentID != nil {
			target.StudentID = strings.TrimSpace(*in.StudentID)
		}
		if in.Role != nil && *in.Role != target.Role {
			if !policy.CanManageUser(editor, target) || !policy.CanAssignRole(editor.Role, *in.Role) {
				return domain.Forbidden("assign role " + string(*in.Role))
			}
			target.Role = *in.Role
		}
		if target.Role == domain.RoleStudent && target.StudentID == "" {
			return domain.Invalid("student id is required for students")
		}

		target.UpdatedAt = s.now().UTC()
		if err := s.store.Users().Update(ctx, target); err != nil {
			return err
		}
		updated = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", updated.ID).Str("editor_id", editor.ID).Msg("profile updated")
	return updated, nil
}

// SetUserActiveStatus activates or deactivates an account. Deactivation
// requires a remark, which the user sees on every refused action.
func (s *UserService) SetUserActiveStatus(ctx context.Context, actor ports.Actor, userID string, isActive bool, remark string) (*domain.User, error) {
	manager, err := s.authorize(ctx, actor, policy.ManageUsers)
	if err != nil {
		return nil, err
	}
	if manager.ID == userID {
		return nil, domain.ErrSelfStatusChange
	}
	remark = strings.TrimSpace(remark)
	if !isActive && remark == "" {
		return nil, domain.Invalid("a remark is required when deactivating an account")
	}

	var updated *domain.User
	err = s.mutate(ctx, func(ctx context.Context) error {
		target, err := s.store.Users().FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if !policy.CanManageUser(manager, target) {
			return domain.Forbidden("manage this account")
		}
		target.IsActive = isActive
		target.InactiveRemark = ""
		if !isActive {
			target.InactiveRemark = remark
		}
		target.UpdatedAt = s.now().UTC()
		if err := s.store.Users().Update(ctx, target); err != nil {
			return err
		}
		updated = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", updated.ID).Bool("active", updated.IsActive).Str("manager_id", manager.ID).Msg("account status changed")
	return updated, nil
}

// validateAccount checks the fields shared by sign-up and staff-created accounts.
func validateAccount(name, email, password, department string, role domain.Role, studentID string) error {
	if err := required(
		[2]string{"name", name},
		[2]string{"email", email},
		[2]string{"password", password},
		[2]string{"department", department},
	); err != nil {
		return err
	}
	if !strings.Contains(email, "@") {
		return domain.Invalid("email %q is not valid", email)
	}
	if len(password) < minPasswordLength {
		return domain.Invalid("password must be at least %d characters", minPasswordLength)
	}
	if !role.Valid() {
		return domain.Invalid("unknown role %q", role)
	}
	if role == domain.RoleStudent && strings.TrimSpace(studentID) == "" {
		return domain.Invalid("student id is required for students")
	}
	return nil
}

var _ ports.UserService = (*UserService)(nil)

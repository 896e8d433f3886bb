package handler

import (
	"time"

	"github.com/campusshelf/library-system/internal/core/domain"
	"github.com/campusshelf/library-system/internal/core/ports"
)

// --- Auth ---

type signupRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Role       string `json:"role" validate:"required,oneof=student faculty librarian guest"`
	Department string `json:"department" validate:"required"`
	StudentID  string `json:"student_id,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Code            string `json:"code" validate:"required,len=6,numeric"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// --- Catalog ---

type addBookRequest struct {
	Title    string `json:"title" validate:"required"`
	Author   string `json:"author" validate:"required"`
	Genre    string `json:"genre" validate:"required"`
	ISBN     string `json:"isbn" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

type resizeBookRequest struct {
	TotalQuantity *int `json:"total_quantity" validate:"required"`
}

type genreRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

// --- Circulation ---

type createBorrowRequestRequest struct {
	BookID string `json:"book_id" validate:"required"`
}

type reviewRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
	Note     string `json:"note,omitempty"`
}

// --- Users ---

type createUserRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Role       string `json:"role" validate:"required"`
	Department string `json:"department" validate:"required"`
	StudentID  string `json:"student_id,omitempty"`
}

type updateProfileRequest struct {
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Department *string `json:"department,omitempty"`
	StudentID  *string `json:"student_id,omitempty"`
	Role       *string `json:"role,omitempty"`
}

func (r updateProfileRequest) toInput() (ports.UpdateProfileInput, error) {
	in := ports.UpdateProfileInput{
		Name:       r.Name,
		Email:      r.Email,
		Department: r.Department,
		StudentID:  r.StudentID,
	}
	if r.Role != nil {
		role, err := domain.ParseRole(*r.Role)
		if err != nil {
			return in, err
		}
		in.Role = &role
	}
	return in, nil
}

type setStatusRequest struct {
	IsActive *bool  `json:"is_active" validate:"required"`
	Remark   string `json:"remark,omitempty"`
}

// --- Notifications and fines ---

type markAllReadResponse struct {
	Updated int `json:"updated"`
}

type payFinesRequest struct {
	Reference string `json:"reference,omitempty"`
}

type fineSummaryResponse struct {
	Accruing domain.Amount  `json:"accruing"`
	Payable  domain.Amount  `json:"payable"`
	Total    domain.Amount  `json:"total"`
	Loans    []*domain.Loan `json:"loans"`
}

package handler

import (
	"strings"

	"github.com/acquisitions/acquisitions-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// validationErrorResponse is returned with 400 when input fails schema checks.
type validationErrorResponse struct {
	Error   string              `json:"error" example:"Validation Error"`
	Details []domain.FieldError `json:"details"`
}

// messageResponse carries a human-readable status message.
type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type signUpRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=255"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=user admin"`
}

func (r *signUpRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Role = strings.TrimSpace(r.Role)
}

type signInRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *signInRequest) normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// userResponse is the public shape of an account; the password hash is never
// included.
type userResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

// --- Users ---

type updateUserRequest struct {
	Name  *string `json:"name"  validate:"omitempty,min=2,max=255"`
	Email *string `json:"email" validate:"omitempty,email,max=255"`
	Role  *string `json:"role"  validate:"omitempty,oneof=user admin"`
}

func (r *updateUserRequest) normalize() {
	if r.Name != nil {
		v := strings.TrimSpace(*r.Name)
		r.Name = &v
	}
	if r.Email != nil {
		v := strings.ToLower(strings.TrimSpace(*r.Email))
		r.Email = &v
	}
}

func (r updateUserRequest) toDomain() domain.UserUpdate {
	u := domain.UserUpdate{Name: r.Name, Email: r.Email}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		u.Role = &role
	}
	return u
}

type userDetailResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type userEnvelope struct {
	Message string             `json:"message"`
	User    userDetailResponse `json:"user"`
}

type userListResponse struct {
	Message string               `json:"message"`
	Users   []userDetailResponse `json:"users"`
	Count   int                  `json:"count"`
}

// --- Health ---

type healthResponse struct {
	Status    string  `json:"status"    example:"OK"`
	TimeStamp string  `json:"timeStamp"`
	Uptime    float64 `json:"uptime"`
}

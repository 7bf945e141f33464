package domain

import (
	"errors"
	"fmt"
	"time"
)

// Role is the authorization tier of an identity. It also selects the
// admission quota for requests made on the identity's behalf.
type Role string

const (
	RoleGuest Role = "guest"
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps an arbitrary claim value to a Role. Anything that is not
// a known role resolves to RoleGuest.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin
	case RoleUser:
		return RoleUser
	default:
		return RoleGuest
	}
}

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailExists     = errors.New("user with this email already exists")
	ErrEmailInUse      = errors.New("email already in use")
	ErrInvalidPassword = errors.New("invalid password")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access forbidden")
)

// Authorization failures. Each wraps ErrForbidden.
var (
	ErrNotOwner   = fmt.Errorf("%w: you can only update your own profile", ErrForbidden)
	ErrAdminOnly  = fmt.Errorf("%w: only administrators can delete users", ErrForbidden)
	ErrSelfDelete = fmt.Errorf("%w: cannot delete own account", ErrForbidden)
	ErrRoleChange = fmt.Errorf("%w: only administrators can change user roles", ErrForbidden)
)

// User models an account. PasswordHash never leaves the service layer in
// a response body.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserUpdate carries a partial update. Nil fields are left untouched.
type UserUpdate struct {
	Name  *string
	Email *string
	Role  *Role
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Role == nil
}

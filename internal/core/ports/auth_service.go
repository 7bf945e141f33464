package ports

import (
	"context"
	"time"

	"github.com/acquisitions/acquisitions-api/internal/core/domain"
)

// SignUpInput is the already-validated signup payload.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// SignInInput is the already-validated signin payload.
type SignInInput struct {
	Email    string
	Password string
}

// AuthResult is returned by a successful signup or signin. The transport
// layer turns Token into the session cookie.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

type AuthService interface {
	SignUp(ctx context.Context, in SignUpInput) (*AuthResult, error)
	SignIn(ctx context.Context, in SignInInput) (*AuthResult, error)
}

// PasswordHasher hashes and verifies passwords off the request goroutine.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Compare(ctx context.Context, hash, password string) (bool, error)
}

// TokenSubject is the identity encoded into a bearer token.
type TokenSubject struct {
	ID    int64
	Email string
	Role  domain.Role
}

// TokenIssuer signs bearer tokens.
type TokenIssuer interface {
	Issue(subject TokenSubject) (token string, expiresAt time.Time, err error)
}

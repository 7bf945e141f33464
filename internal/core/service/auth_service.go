package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/acquisitions/acquisitions-api/internal/core/domain"
	"github.com/acquisitions/acquisitions-api/internal/core/ports"
)

// AuthService implements signup and signin.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	log    zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens, log: log}
}

// SignUp registers a new account and issues its first token.
//
// The email pre-check gives a clean domain error in the common case; the
// store's unique constraint stays authoritative and a duplicate-key failure
// on insert is reported as the same domain.ErrEmailExists.
func (s *AuthService) SignUp(ctx context.Context, in ports.SignUpInput) (*ports.AuthResult, error) {
	if in.Role == "" {
		in.Role = domain.RoleUser
	}
	if err := validateSignUp(in); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		s.log.Warn().Str("email", in.Email).Msg("signup rejected: email already registered")
		return nil, domain.ErrEmailExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("sign up: lookup email: %w", err)
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, fmt.Errorf("sign up: hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		Role:         in.Role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailExists) {
			s.log.Warn().Str("email", in.Email).Msg("signup lost race on unique email")
			return nil, domain.ErrEmailExists
		}
		return nil, fmt.Errorf("sign up: create user: %w", err)
	}

	result, err := s.issue(created)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	s.log.Info().Int64("user_id", created.ID).Str("email", created.Email).Msg("user signed up")
	return result, nil
}

// SignIn verifies credentials and issues a token. An unknown email and a
// wrong password are reported as distinct errors.
func (s *AuthService) SignIn(ctx context.Context, in ports.SignInInput) (*ports.AuthResult, error) {
	if strings.TrimSpace(in.Email) == "" {
		return nil, domain.NewValidationError("email", "email is required")
	}
	if in.Password == "" {
		return nil, domain.NewValidationError("password", "password is required")
	}

	user, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("sign in: lookup email: %w", err)
	}

	ok, err := s.hasher.Compare(ctx, user.PasswordHash, in.Password)
	if err != nil {
		return nil, fmt.Errorf("sign in: compare password: %w", err)
	}
	if !ok {
		s.log.Warn().Str("email", in.Email).Msg("signin rejected: invalid password")
		return nil, domain.ErrInvalidPassword
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	s.log.Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("user signed in")
	return result, nil
}

func (s *AuthService) issue(user *domain.User) (*ports.AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(ports.TokenSubject{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	out := *user
	out.PasswordHash = ""
	return &ports.AuthResult{User: &out, Token: token, ExpiresAt: expiresAt}, nil
}

func validateSignUp(in ports.SignUpInput) error {
	var fields []domain.FieldError
	if strings.TrimSpace(in.Name) == "" {
		fields = append(fields, domain.FieldError{Field: "name", Message: "name is required"})
	}
	if strings.TrimSpace(in.Email) == "" {
		fields = append(fields, domain.FieldError{Field: "email", Message: "email is required"})
	}
	if in.Password == "" {
		fields = append(fields, domain.FieldError{Field: "password", Message: "password is required"})
	}
	if in.Role != domain.RoleUser && in.Role != domain.RoleAdmin {
		fields = append(fields, domain.FieldError{Field: "role", Message: "role must be one of: user admin"})
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

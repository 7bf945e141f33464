package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/acquisitions/acquisitions-api/internal/core/domain"
	"github.com/acquisitions/acquisitions-api/internal/core/ports"
)

func newAuthSvc(repo *stubUserRepo) (*AuthService, *stubIssuer) {
	issuer := &stubIssuer{}
	return NewAuthService(repo, &stubHasher{}, issuer, zerolog.Nop()), issuer
}

func signUpInput(email string) ports.SignUpInput {
	return ports.SignUpInput{Name: "Ann", Email: email, Password: "secret123"}
}

func TestAuthService_SignUp_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, issuer := newAuthSvc(repo)

	res, err := svc.SignUp(context.Background(), signUpInput("a@x.com"))
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if res.User.Email != "a@x.com" || res.User.Role != domain.RoleUser {
		t.Fatalf("unexpected user: %+v", res.User)
	}
	if res.User.PasswordHash != "" {
		t.Fatalf("result must not carry the password hash")
	}
	if res.Token == "" {
		t.Fatalf("expected token")
	}
	stored, _ := repo.FindByEmail(context.Background(), "a@x.com")
	if stored.PasswordHash != "hashed:secret123" {
		t.Fatalf("expected hashed password to be stored, got %q", stored.PasswordHash)
	}
	if len(issuer.issued) != 1 || issuer.issued[0].ID != res.User.ID || issuer.issued[0].Role != domain.RoleUser {
		t.Fatalf("unexpected token subject: %+v", issuer.issued)
	}
}

func TestAuthService_SignUp_DuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newAuthSvc(repo)

	if _, err := svc.SignUp(context.Background(), signUpInput("a@x.com")); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}
	_, err := svc.SignUp(context.Background(), signUpInput("a@x.com"))
	if !errors.Is(err, domain.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
	if repo.createCalls != 1 {
		t.Fatalf("duplicate signup must not reach insert, got %d create calls", repo.createCalls)
	}
}

// The pre-check passes but the store's unique constraint rejects the insert,
// as happens when two signups race.
func TestAuthService_SignUp_ConstraintViolationIsConflict(t *testing.T) {
	repo := newStubUserRepo()
	repo.createErr = domain.ErrEmailExists
	svc, _ := newAuthSvc(repo)

	_, err := svc.SignUp(context.Background(), signUpInput("race@x.com"))
	if !errors.Is(err, domain.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestAuthService_SignUp_Validation(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newAuthSvc(repo)

	_, err := svc.SignUp(context.Background(), ports.SignUpInput{Email: "a@x.com", Password: "pw", Role: "root"})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Fields) != 2 {
		t.Fatalf("expected name and role errors, got %+v", ve.Fields)
	}
	if repo.createCalls != 0 {
		t.Fatalf("validation failure must not touch the store")
	}
}

func TestAuthService_SignUp_StoreFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.findEmailErr = errors.New("connection refused")
	svc, _ := newAuthSvc(repo)

	_, err := svc.SignUp(context.Background(), signUpInput("a@x.com"))
	if err == nil || errors.Is(err, domain.ErrEmailExists) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestAuthService_SignIn_Success(t *testing.T) {
	repo := newStubUserRepo()
	seeded := repo.seed("Carol", "carol@x.com", domain.RoleAdmin)
	svc, issuer := newAuthSvc(repo)

	res, err := svc.SignIn(context.Background(), ports.SignInInput{Email: "carol@x.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if res.User.ID != seeded.ID || res.User.PasswordHash != "" {
		t.Fatalf("unexpected user: %+v", res.User)
	}
	if issuer.issued[0].Role != domain.RoleAdmin {
		t.Fatalf("expected admin role in token, got %s", issuer.issued[0].Role)
	}
}

func TestAuthService_SignIn_WrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed("Dave", "dave@x.com", domain.RoleUser)
	svc, _ := newAuthSvc(repo)

	_, err := svc.SignIn(context.Background(), ports.SignInInput{Email: "dave@x.com", Password: "badpass"})
	if !errors.Is(err, domain.ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestAuthService_SignIn_UnknownEmail(t *testing.T) {
	svc, _ := newAuthSvc(newStubUserRepo())

	_, err := svc.SignIn(context.Background(), ports.SignInInput{Email: "ghost@x.com", Password: "pw"})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if errors.Is(err, domain.ErrInvalidPassword) {
		t.Fatalf("not-found must be distinguishable from bad password")
	}
}

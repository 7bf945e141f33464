package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/acquisitions/acquisitions-api/internal/api/handler"
	"github.com/acquisitions/acquisitions-api/internal/core/domain"
	"github.com/acquisitions/acquisitions-api/internal/core/ports"
	"github.com/acquisitions/acquisitions-api/internal/infrastructure/token"
)

func newIssuer(t *testing.T) *token.Issuer {
	t.Helper()
	iss, err := token.NewIssuer("secret", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	return iss
}

func issue(t *testing.T, iss *token.Issuer, id int64, role domain.Role) string {
	t.Helper()
	tok, _, err := iss.Issue(ports.TokenSubject{ID: id, Email: "alice@example.com", Role: role})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return tok
}

func TestIdentify_Cookie(t *testing.T) {
	iss := newIssuer(t)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: issue(t, iss, 7, domain.RoleAdmin)})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := Identify(iss)(func(c echo.Context) error {
		called = true
		if c.Get(handler.CtxUserID) != int64(7) {
			t.Fatalf("user id not set, got %v", c.Get(handler.CtxUserID))
		}
		if c.Get(handler.CtxRole) != "admin" {
			t.Fatalf("role not set")
		}
		if c.Get(handler.CtxEmail) != "alice@example.com" {
			t.Fatalf("email not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestIdentify_BearerHeader(t *testing.T) {
	iss := newIssuer(t)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, iss, 3, domain.RoleUser))
	c := e.NewContext(req, httptest.NewRecorder())

	h := Identify(iss)(func(c echo.Context) error {
		if c.Get(handler.CtxRole) != "user" {
			t.Fatalf("role not set from bearer token")
		}
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestIdentify_InvalidTokenContinuesAsGuest(t *testing.T) {
	iss := newIssuer(t)
	e := echo.New()

	for _, setup := range []func(*http.Request){
		func(r *http.Request) {},
		func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "token", Value: "not-a-token"}) },
		func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") },
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		setup(req)
		c := e.NewContext(req, httptest.NewRecorder())

		called := false
		h := Identify(iss)(func(c echo.Context) error {
			called = true
			if c.Get(handler.CtxRole) != nil || c.Get(handler.CtxUserID) != nil {
				t.Fatalf("no identity expected")
			}
			return nil
		})
		if err := h(c); err != nil || !called {
			t.Fatalf("expected pass-through, err=%v called=%v", err, called)
		}
	}
}

func TestRequireAuth(t *testing.T) {
	e := echo.New()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if err := RequireAuth()(next)(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	rec := httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set(handler.CtxUserID, int64(1))
	if err := RequireAuth()(next)(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

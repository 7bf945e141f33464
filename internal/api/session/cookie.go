// Package session manages the cookie that carries the signed session token.
package session

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// CookieName is the name of the session cookie.
const CookieName = "token"

// Cookies writes and clears the session cookie. Secure is set in production.
type Cookies struct {
	Secure bool
	now    func() time.Time
}

func NewCookies(secure bool) *Cookies {
	return &Cookies{Secure: secure, now: time.Now}
}

// Set attaches token as the session cookie, expiring together with the token.
func (m *Cookies) Set(c echo.Context, token string, expiresAt time.Time) {
	maxAge := int(expiresAt.Sub(m.now()) / time.Second)
	if maxAge <= 0 {
		maxAge = 1
	}
	c.SetCookie(m.cookie(token, maxAge, expiresAt))
}

// Clear overwrites the session cookie with an already-expired one. It is safe
// to call when no session exists.
func (m *Cookies) Clear(c echo.Context) {
	c.SetCookie(m.cookie("", -1, time.Unix(0, 0)))
}

func (m *Cookies) cookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires.UTC(),
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// Token returns the session token sent with the request, if any.
func Token(c echo.Context) string {
	ck, err := c.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return ck.Value
}

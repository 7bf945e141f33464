package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/acquisitions/acquisitions-api/internal/api/metrics"
	"github.com/acquisitions/acquisitions-api/internal/api/session"
	"github.com/acquisitions/acquisitions-api/internal/core/domain"
	"github.com/acquisitions/acquisitions-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	cookies     *session.Cookies
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, cookies *session.Cookies, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies, log: log}
}

// SignUp creates a new account and starts a session.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signUpRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  validationErrorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/auth/signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		metrics.AuthEventsTotal.WithLabelValues("signup", "invalid").Inc()
		return invalidPayload()
	}
	req.normalize()
	if err := c.Validate(&req); err != nil {
		metrics.AuthEventsTotal.WithLabelValues("signup", "invalid").Inc()
		return err
	}

	res, err := h.authService.SignUp(c.Request().Context(), ports.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		metrics.AuthEventsTotal.WithLabelValues("signup", authResult(err)).Inc()
		return err
	}

	h.cookies.Set(c, res.Token, res.ExpiresAt)
	metrics.AuthEventsTotal.WithLabelValues("signup", "success").Inc()

	return c.JSON(http.StatusCreated, authResponse{
		Message: "User registered successfully",
		User:    toUserResponse(res.User),
	})
}

// SignIn verifies credentials and starts a session.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signInRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  validationErrorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/auth/signin [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		metrics.AuthEventsTotal.WithLabelValues("signin", "invalid").Inc()
		return invalidPayload()
	}
	req.normalize()
	if err := c.Validate(&req); err != nil {
		metrics.AuthEventsTotal.WithLabelValues("signin", "invalid").Inc()
		return err
	}

	res, err := h.authService.SignIn(c.Request().Context(), ports.SignInInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		metrics.AuthEventsTotal.WithLabelValues("signin", authResult(err)).Inc()
		return err
	}

	h.cookies.Set(c, res.Token, res.ExpiresAt)
	metrics.AuthEventsTotal.WithLabelValues("signin", "success").Inc()

	return c.JSON(http.StatusOK, authResponse{
		Message: "User signed in successfully",
		User:    toUserResponse(res.User),
	})
}

// SignOut clears the session cookie. It succeeds whether or not a session
// exists.
//
// @Summary      Sign out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /api/auth/signout [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	h.cookies.Clear(c)
	metrics.AuthEventsTotal.WithLabelValues("signout", "success").Inc()

	if id, ok := c.Get(CtxUserID).(int64); ok {
		h.log.Info().Int64("user_id", id).Msg("user signed out")
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "User signed out successfully"})
}

func invalidPayload() error {
	return domain.NewValidationError("body", "request body must be valid JSON")
}

func authResult(err error) string {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return "invalid"
	case errors.Is(err, domain.ErrEmailExists):
		return "conflict"
	case errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidPassword):
		return "bad_password"
	default:
		return "error"
	}
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)}
}

package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/acquisitions/acquisitions-api/internal/api/handler"
	"github.com/acquisitions/acquisitions-api/internal/api/metrics"
	"github.com/acquisitions/acquisitions-api/internal/core/domain"
	"github.com/acquisitions/acquisitions-api/internal/core/ports"
)

// Rate-limit response headers.
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
)

type denialResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// AdmissionConfig configures the Admission middleware.
type AdmissionConfig struct {
	// Skipper exempts requests from admission. Defaults to none.
	Skipper echomiddleware.Skipper
}

// Admission asks svc for a decision on every request and answers denials
// before any handler runs. Engine failures reject the request with 500.
func Admission(svc ports.AdmissionService, cfg AdmissionConfig) echo.MiddlewareFunc {
	if cfg.Skipper == nil {
		cfg.Skipper = echomiddleware.DefaultSkipper
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper(c) {
				return next(c)
			}

			req := c.Request()
			role, _ := c.Get(handler.CtxRole).(string)

			d := svc.Evaluate(req.Context(), ports.AdmissionRequest{
				Role:      domain.ParseRole(role),
				ClientIP:  c.RealIP(),
				Method:    req.Method,
				Path:      req.URL.Path,
				RawQuery:  req.URL.RawQuery,
				UserAgent: req.UserAgent(),
				Header:    req.Header,
			})
			metrics.AdmissionDecisionsTotal.WithLabelValues(d.Outcome.String(), string(d.Role)).Inc()

			if d.Outcome != domain.OutcomeEngineError {
				setRateLimitHeaders(c, d)
			}

			switch d.Outcome {
			case domain.OutcomeAllow:
				return next(c)
			case domain.OutcomeDenyBot:
				return c.JSON(http.StatusForbidden, denialResponse{Error: "Forbidden"})
			case domain.OutcomeDenyShield:
				return c.JSON(http.StatusForbidden, denialResponse{Error: "Request blocked by Security Policy"})
			case domain.OutcomeDenyRateLimit:
				c.Response().Header().Set("Retry-After", strconv.Itoa(secondsUntil(d.Reset)))
				return c.JSON(http.StatusTooManyRequests, denialResponse{Error: "Too Many Requests"})
			default:
				return c.JSON(http.StatusInternalServerError, denialResponse{
					Error:   "Internal Server Error",
					Message: "Something went wrong with the Security Middleware",
				})
			}
		}
	}
}

// OperationalSkipper exempts health probes, metrics scraping and API docs
// from admission.
func OperationalSkipper(c echo.Context) bool {
	switch p := c.Path(); {
	case p == "/health", p == "/health/ready", p == "/metrics":
		return true
	default:
		return strings.HasPrefix(p, "/swagger/")
	}
}

func setRateLimitHeaders(c echo.Context, d domain.Decision) {
	h := c.Response().Header()
	h.Set(HeaderRateLimitLimit, strconv.Itoa(d.Quota.MaxRequests))
	h.Set(HeaderRateLimitRemaining, strconv.Itoa(d.Remaining))
	if !d.Reset.IsZero() {
		h.Set(HeaderRateLimitReset, strconv.Itoa(secondsUntil(d.Reset)))
	}
}

func secondsUntil(t time.Time) int {
	s := int(math.Ceil(time.Until(t).Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

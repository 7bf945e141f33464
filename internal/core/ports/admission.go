package ports

import (
	"context"
	"net/http"
	"time"

	"github.com/acquisitions/acquisitions-api/internal/core/domain"
)

// AdmissionRequest is the per-request admission context. It lives only for
// the duration of one request.
type AdmissionRequest struct {
	Role      domain.Role
	ClientIP  string
	Method    string
	Path      string
	RawQuery  string
	UserAgent string
	Header    http.Header
}

// ProtectRequest is what the protection engine inspects.
type ProtectRequest struct {
	ClientIP  string
	Method    string
	Path      string
	RawQuery  string
	UserAgent string
	Header    http.Header
	// Bucket namespaces the rate-limit counter, e.g. by role tier.
	Bucket string
}

// ProtectResult reports every rule that flagged the request. More than one
// flag may be set; callers decide precedence.
type ProtectResult struct {
	Bot       bool
	Shield    bool
	RateLimit bool
	Remaining int
	Reset     time.Time
}

// ProtectionEngine evaluates shield, bot detection and the sliding-window
// rate limit in a single pass. It owns the rate-limit counters.
type ProtectionEngine interface {
	Protect(ctx context.Context, req ProtectRequest, quota domain.QuotaRule) (ProtectResult, error)
}

type AdmissionService interface {
	Evaluate(ctx context.Context, req AdmissionRequest) domain.Decision
}

// Package protection is the request protection engine: a signature shield,
// user-agent bot detection and a sliding-window rate limit evaluated in one
// pass. It owns the rate-limit counters; callers only read its verdict.
package protection

import (
	"context"
	"fmt"
	"time"

	"github.com/acquisitions/acquisitions-api/internal/core/domain"
	"github.com/acquisitions/acquisitions-api/internal/core/ports"
)

// Engine implements ports.ProtectionEngine.
type Engine struct {
	shield *Shield
	bots   *BotDetector
	window WindowStore
	now    func() time.Time
}

func NewEngine(bots *BotDetector, window WindowStore) *Engine {
	return &Engine{
		shield: NewShield(),
		bots:   bots,
		window: window,
		now:    time.Now,
	}
}

// Protect runs every rule and reports all of them; it does not choose a
// reason. The rate-limit hit is recorded even when another rule flags the
// request.
func (e *Engine) Protect(ctx context.Context, req ports.ProtectRequest, quota domain.QuotaRule) (ports.ProtectResult, error) {
	if quota.MaxRequests <= 0 || quota.Window <= 0 {
		return ports.ProtectResult{}, fmt.Errorf("protect: invalid quota %+v", quota)
	}
	key, err := windowKey(req, quota)
	if err != nil {
		return ports.ProtectResult{}, err
	}

	var res ports.ProtectResult
	_, res.Shield = e.shield.Inspect(req)
	res.Bot = e.bots.IsBot(req.UserAgent)

	wr, err := e.window.Hit(ctx, key, quota.Window, quota.MaxRequests, e.now())
	if err != nil {
		return ports.ProtectResult{}, fmt.Errorf("protect: sliding window: %w", err)
	}
	res.RateLimit = !wr.Allowed
	res.Remaining = wr.Remaining
	res.Reset = wr.Reset

	return res, nil
}

func windowKey(req ports.ProtectRequest, quota domain.QuotaRule) (string, error) {
	if quota.Segment != domain.SegmentByIP {
		return "", fmt.Errorf("protect: unsupported segment %q", quota.Segment)
	}
	ip := req.ClientIP
	if ip == "" {
		ip = "unknown"
	}
	bucket := req.Bucket
	if bucket == "" {
		bucket = "default"
	}
	return "ratelimit:" + bucket + ":" + ip, nil
}

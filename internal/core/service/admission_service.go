package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/acquisitions/acquisitions-api/internal/core/domain"
	"github.com/acquisitions/acquisitions-api/internal/core/ports"
)

// AdmissionService classifies a request, derives its quota from the caller's
// role and turns the protection engine's verdict into a single Decision.
type AdmissionService struct {
	engine ports.ProtectionEngine
	log    zerolog.Logger
}

func NewAdmissionService(engine ports.ProtectionEngine, log zerolog.Logger) *AdmissionService {
	return &AdmissionService{engine: engine, log: log}
}

// Evaluate never returns an error: an engine failure becomes an
// OutcomeEngineError decision and the pipeline rejects the request.
// Denials are logged at warn; allowed requests are not logged.
func (s *AdmissionService) Evaluate(ctx context.Context, req ports.AdmissionRequest) domain.Decision {
	role := domain.ParseRole(string(req.Role))
	quota := domain.QuotaFor(role)

	res, err := s.engine.Protect(ctx, ports.ProtectRequest{
		ClientIP:  req.ClientIP,
		Method:    req.Method,
		Path:      req.Path,
		RawQuery:  req.RawQuery,
		UserAgent: req.UserAgent,
		Header:    req.Header,
		Bucket:    string(role),
	}, quota)
	if err != nil {
		s.log.Error().Err(err).
			Str("role", string(role)).
			Str("ip", req.ClientIP).
			Str("path", req.Path).
			Msg("protection engine failed")
		return domain.Decision{Outcome: domain.OutcomeEngineError, Role: role, Quota: quota, Err: err}
	}

	d := domain.Decision{
		Outcome:   outcomeOf(res),
		Role:      role,
		Quota:     quota,
		Remaining: res.Remaining,
		Reset:     res.Reset,
	}

	if !d.Allowed() {
		s.log.Warn().
			Str("reason", d.Outcome.String()).
			Str("role", string(role)).
			Str("ip", req.ClientIP).
			Str("path", req.Path).
			Msg("request denied")
	}
	return d
}

// outcomeOf picks one reason when several rules flagged the request:
// bot, then shield, then rate limit.
func outcomeOf(res ports.ProtectResult) domain.Outcome {
	switch {
	case res.Bot:
		return domain.OutcomeDenyBot
	case res.Shield:
		return domain.OutcomeDenyShield
	case res.RateLimit:
		return domain.OutcomeDenyRateLimit
	default:
		return domain.OutcomeAllow
	}
}

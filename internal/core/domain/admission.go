package domain

import "time"

// QuotaWindow is the sliding window every quota tier is measured over.
const QuotaWindow = time.Minute

// SegmentByIP partitions rate-limit counters by client network address.
const SegmentByIP = "ip"

// QuotaRule is the rate-limit rule applied to a single request.
type QuotaRule struct {
	Window      time.Duration
	MaxRequests int
	Segment     string
}

var quotas = map[Role]int{
	RoleAdmin: 20,
	RoleUser:  10,
	RoleGuest: 5,
}

// QuotaFor returns the rule for role. Unrecognised roles get the guest tier.
func QuotaFor(role Role) QuotaRule {
	return QuotaRule{
		Window:      QuotaWindow,
		MaxRequests: quotas[ParseRole(string(role))],
		Segment:     SegmentByIP,
	}
}

// Outcome is the result category of an admission decision.
type Outcome int

const (
	OutcomeAllow Outcome = iota
	OutcomeDenyBot
	OutcomeDenyShield
	OutcomeDenyRateLimit
	OutcomeEngineError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAllow:
		return "allow"
	case OutcomeDenyBot:
		return "bot"
	case OutcomeDenyShield:
		return "shield"
	case OutcomeDenyRateLimit:
		return "rate_limit"
	case OutcomeEngineError:
		return "engine_error"
	default:
		return "unknown"
	}
}

// Decision is the admission verdict for one request. It is consumed once by
// the pipeline and never stored.
type Decision struct {
	Outcome Outcome
	Role    Role
	Quota   QuotaRule
	// Remaining and Reset describe the caller's rate-limit bucket after this
	// request. They are zero when the engine failed.
	Remaining int
	Reset     time.Time
	Err       error
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool { return d.Outcome == OutcomeAllow }

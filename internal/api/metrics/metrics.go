// Package metrics defines and registers the custom Prometheus metrics of the
// acquisitions API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default registry on package init via
// promauto; HTTP request metrics come from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "acquisitions"

// ── Admission metrics ─────────────────────────────────────────────────────────

// AdmissionDecisionsTotal counts admission outcomes.
// Labels:
//   - outcome: "allow", "bot", "shield", "rate_limit" or "engine_error"
//   - role: the quota tier the request was evaluated under
var AdmissionDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admission_decisions_total",
		Help:      "Total number of admission decisions, by outcome and role.",
	},
	[]string{"outcome", "role"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthEventsTotal counts signup, signin and signout attempts.
// Labels:
//   - operation: "signup", "signin" or "signout"
//   - result: "success", "invalid", "conflict", "not_found", "bad_password" or "error"
var AuthEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Total number of authentication events, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ── User metrics ──────────────────────────────────────────────────────────────

// UserMutationsTotal counts successful user updates and deletes.
// Label:
//   - operation: "update" or "delete"
var UserMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_mutations_total",
		Help:      "Total number of user records updated or deleted.",
	},
	[]string{"operation"},
)

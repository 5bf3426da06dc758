// Package metrics defines and registers the custom Prometheus metrics for the
// user administration service. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "useradmin"

// ── Account metrics ──────────────────────────────────────────────────────────

// UserMutationsTotal counts admin mutations on user accounts.
// Labels:
//   - action: "create", "update" or "delete"
//   - result: "ok" or "error"
var UserMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_mutations_total",
		Help:      "Total number of user create/update/delete requests, by outcome.",
	},
	[]string{"action", "result"},
)

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "rejected" (bad credentials) or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)

// ── Audit metrics ────────────────────────────────────────────────────────────

// AuditEventsDroppedTotal counts audit events discarded because a worker queue was full.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of audit events dropped because the dispatcher queue was full.",
	},
)

// RegisterAuditQueueDepth exposes the dispatcher backlog as a gauge. Call once at startup.
func RegisterAuditQueueDepth(depth func() int) {
	promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "audit_queue_depth",
			Help:      "Current number of audit events waiting in the dispatcher.",
		},
		func() float64 { return float64(depth()) },
	)
}

// Result maps an error to the "ok"/"error" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

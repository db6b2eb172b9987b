// Package metrics defines and registers all custom Prometheus metrics for the
// backoffice API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "backoffice"

// ── Authentication metrics ────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts by outcome.
// Label:
//   - outcome: "success", "bad_credentials", "too_many_attempts" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// TokenRejectionsTotal counts bearer tokens the guard refused.
// Label:
//   - reason: "malformed", "invalid" or "expired"
var TokenRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "token_rejections_total",
		Help:      "Total number of bearer tokens rejected by the request guard.",
	},
	[]string{"reason"},
)

// AdmissionDenialsTotal counts requests refused by route admission.
// Labels:
//   - surface: "api" or "web"
//   - reason: "unauthenticated" or "forbidden"
var AdmissionDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "admission_denials_total",
		Help:      "Total number of requests denied by the route admission policy.",
	},
	[]string{"surface", "reason"},
)

// ── Rate limiter metrics ──────────────────────────────────────────────────────

// RateLimitEntries tracks the number of keys currently held by the in-memory limiter.
var RateLimitEntries = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "ratelimit",
		Name:      "entries",
		Help:      "Current number of rate-limit keys held in memory.",
	},
)

// RateLimitBlocksTotal counts keys that reached the failure threshold.
var RateLimitBlocksTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ratelimit",
		Name:      "blocks_total",
		Help:      "Total number of lockouts started.",
	},
)

// RateLimitSweptTotal counts entries removed by the periodic sweep.
var RateLimitSweptTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ratelimit",
		Name:      "swept_total",
		Help:      "Total number of stale rate-limit entries removed by the sweep.",
	},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsDroppedTotal counts login events dropped because a worker queue was full.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "audit",
		Name:      "events_dropped_total",
		Help:      "Total number of login audit events dropped on a full queue.",
	},
)

// AuditQueueDepth tracks the number of events waiting in each audit worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "audit",
		Name:      "queue_depth",
		Help:      "Current number of login events pending in each audit worker channel.",
	},
	[]string{"worker_id"},
)

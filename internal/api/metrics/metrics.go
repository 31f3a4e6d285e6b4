// Package metrics defines and registers all custom Prometheus metrics for
// the price-survey API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default registry at import time via promauto;
// the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pricesurvey"

// ── Authentication metrics ────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Labels:
//   - actor_type: "ADMIN", "USER", or "OPERATIVE"
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by actor type and result.",
	},
	[]string{"actor_type", "result"},
)

// RegistrationsTotal counts created actors.
// Label:
//   - actor_type: the variant that was created
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of actors registered, by actor type.",
	},
	[]string{"actor_type"},
)

// TokenPairsIssuedTotal counts issued access/refresh pairs.
// Label:
//   - grant: "password" (login/registration) or "refresh" (rotation)
var TokenPairsIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_pairs_issued_total",
		Help:      "Total number of token pairs issued, by grant.",
	},
	[]string{"grant"},
)

// GuardRejectionsTotal counts requests rejected by the authentication guard.
// Label:
//   - reason: "missing_token", "invalid_token", "actor_not_live"
var GuardRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_rejections_total",
		Help:      "Total number of requests rejected by the authentication guard, by reason.",
	},
	[]string{"reason"},
)

// ── Revocation metrics ────────────────────────────────────────────────────────

// RevocationsTotal counts session revocations.
// Label:
//   - cause: "logout", "disable", or "delete"
var RevocationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "revocations_total",
		Help:      "Total number of refresh sessions revoked, by cause.",
	},
	[]string{"cause"},
)

// LoginThrottledTotal counts login requests rejected by the throttle.
var LoginThrottledTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_throttled_total",
		Help:      "Total number of login requests rejected by the attempt throttle.",
	},
)

// Package metrics defines and registers all custom Prometheus metrics for the
// Noosify gateway. It is the single source of truth for metric names, labels,
// and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "noosify"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "rejected" (Backend said no), or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts account-creation attempts.
// Label:
//   - result: "success", "rejected", or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// AuthGateRedirectsTotal counts requests to protected routes turned away for
// lacking an authenticated session.
var AuthGateRedirectsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authgate_redirects_total",
		Help:      "Total number of protected-route requests redirected to the login page.",
	},
)

// ── Upload metrics ────────────────────────────────────────────────────────────

// UploadsTotal counts upload submissions.
// Label:
//   - result: "success", "rejected" (Backend validation / empty selection), or "error"
var UploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Total number of upload submissions, by result.",
	},
	[]string{"result"},
)

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestDuration measures one Backend round-trip.
// Labels:
//   - operation: "login", "register", "fetch_user", "upload"
//   - outcome:   "ok", "rejected", or "unreachable"
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of requests to the document service.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation", "outcome"},
)

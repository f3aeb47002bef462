// Package metrics defines and registers all custom Prometheus metrics for the
// book-exchange API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry through promauto when the
// package is first imported; HTTP request metrics come from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bookexchange"

// Outcomes recorded by RequestAuthTotal.
const (
	AuthAnonymous      = "anonymous"
	AuthAuthenticated  = "authenticated"
	AuthInvalidToken   = "invalid_token"
	AuthExpiredToken   = "expired_token"
	AuthUnknownSubject = "unknown_subject"
	AuthStaleToken     = "stale_token"
	AuthDisabled       = "disabled"
)

// ── Authentication metrics ────────────────────────────────────────────────────

// RequestAuthTotal counts the outcome of passive bearer authentication.
// Label:
//   - outcome: one of the Auth* constants above
var RequestAuthTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "request_auth_total",
		Help:      "Total number of requests by bearer authentication outcome.",
	},
	[]string{"outcome"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "disabled", or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "conflict", "invalid", or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// AccessDeniedTotal counts requests rejected by authorization.
// Label:
//   - reason: "unauthenticated" or "forbidden"
var AccessDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Total number of requests denied by authorization, by reason.",
	},
	[]string{"reason"},
)

// ── Catalog metrics ───────────────────────────────────────────────────────────

// CatalogCacheTotal counts public catalog cache lookups.
// Label:
//   - result: "hit", "miss", or "error"
var CatalogCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_cache_total",
		Help:      "Total number of public catalog cache lookups, by result.",
	},
	[]string{"result"},
)

// BooksCreatedTotal counts newly created listings.
// Label:
//   - exchange_type: EXCHANGE_ONLY, GIVEAWAY or EXCHANGE_OR_GIVEAWAY
var BooksCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "books_created_total",
		Help:      "Total number of book listings created, by exchange type.",
	},
	[]string{"exchange_type"},
)

// ── Image cleanup metrics ─────────────────────────────────────────────────────

// ImageCleanupTotal counts background object deletions.
// Label:
//   - result: "deleted", "failed", or "dropped" (queue full)
var ImageCleanupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_cleanup_total",
		Help:      "Total number of image cleanup jobs, by result.",
	},
	[]string{"result"},
)

// ImageCleanupQueueDepth tracks the number of keys waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ImageCleanupQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "image_cleanup_queue_depth",
		Help:      "Current number of object keys pending in each cleanup worker channel.",
	},
	[]string{"worker_id"},
)

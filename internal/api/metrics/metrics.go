// Package metrics defines and registers all custom Prometheus metrics for the
// diagnostic booking API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry on package init via
// promauto; /metrics serves that registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "diagnostic"

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// HTTPRequestDuration measures request latency.
// Labels:
//   - method: HTTP method
//   - route:  the registered route pattern (e.g. "/tests/:id")
//   - code:   response status code
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests by method, route and status code.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"method", "route", "code"},
)

// AuthRejectionsTotal counts requests stopped by the token gate.
// Label:
//   - reason: "missing_header", "malformed_header", "invalid_token" or "forbidden"
var AuthRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejections_total",
		Help:      "Total number of requests rejected by authorization middleware.",
	},
	[]string{"reason"},
)

// ── Booking metrics ───────────────────────────────────────────────────────────

// BookingsCreatedTotal counts bookings persisted.
var BookingsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_created_total",
		Help:      "Total number of bookings created.",
	},
)

// BookingsRejectedTotal counts bookings refused before any write.
// Label:
//   - reason: "no_slots" or "duplicate"
var BookingsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_rejected_total",
		Help:      "Total number of booking requests rejected, by reason.",
	},
	[]string{"reason"},
)

// ReservationsCancelledTotal counts reservation documents deleted by cancellations.
var ReservationsCancelledTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservations_cancelled_total",
		Help:      "Total number of reservations removed by cancellation.",
	},
)

// SlotAdjustFailuresTotal counts reservation writes whose slot update failed.
// Label:
//   - op: "booking" or "cancellation"
var SlotAdjustFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_slot_adjust_failures_total",
		Help:      "Total number of bookings or cancellations whose slot counter update failed.",
	},
	[]string{"op"},
)

// ── Payment metrics ───────────────────────────────────────────────────────────

// PaymentIntentsTotal counts payment intent attempts.
// Label:
//   - result: "created" or "failed"
var PaymentIntentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_intents_total",
		Help:      "Total number of payment intent requests, by result.",
	},
	[]string{"result"},
)

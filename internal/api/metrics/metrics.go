// Package metrics defines and registers all custom Prometheus metrics for the
// library API. It is the single source of truth for metric names, labels, and
// help strings.
//
// The metrics register with the default Prometheus registry on package
// initialisation; the router exposes that registry on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "library"

// ── Command queue metrics ─────────────────────────────────────────────────────

// CommandQueueDepth tracks the number of mutations waiting for the single writer.
var CommandQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "command_queue_depth",
		Help:      "Current number of mutations waiting in the serialized command queue.",
	},
)

// CommandDuration measures how long a mutation holds the single writer.
// Label:
//   - result: "ok", "error" or "dropped" (context cancelled before it started)
var CommandDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "command_duration_seconds",
		Help:      "Duration of a serialized mutation from dequeue to completion.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// ── Circulation metrics ───────────────────────────────────────────────────────

// BorrowRequestsTotal counts borrow requests created, by requester role.
var BorrowRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "borrow_requests_total",
		Help:      "Total number of borrow requests created, by requester role.",
	},
	[]string{"role"},
)

// RequestReviewsTotal counts reviewed borrow requests.
// Label:
//   - decision: "approved" or "rejected"
var RequestReviewsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "request_reviews_total",
		Help:      "Total number of borrow requests reviewed, by decision.",
	},
	[]string{"decision"},
)

// LoansReturnedTotal counts returned loans.
// Label:
//   - late: "true" when the copy came back after its due date
var LoansReturnedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loans_returned_total",
		Help:      "Total number of loans returned, split by lateness.",
	},
	[]string{"late"},
)

// FinesAssessedTotal sums the fines fixed on returned loans, in currency units.
var FinesAssessedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fines_assessed_units_total",
		Help:      "Sum of fines fixed at return time, in currency units.",
	},
)

// FinesPaidTotal sums recorded fine payments, in currency units.
var FinesPaidTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fines_paid_units_total",
		Help:      "Sum of recorded fine payments, in currency units.",
	},
)

// ── Catalog and notification metrics ──────────────────────────────────────────

// BooksAddedTotal counts catalog entries created.
var BooksAddedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "books_added_total",
		Help:      "Total number of books added to the catalog.",
	},
)

// NotificationsSentTotal counts notifications stored, by type.
var NotificationsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total number of notifications created, by type.",
	},
	[]string{"type"},
)

// Package metrics defines and registers all custom Prometheus metrics for the
// timesheet engine. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// initialisation via promauto; exposing /metrics is enough.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "timesheet"

// ── Entry metrics ─────────────────────────────────────────────────────────────

// EntriesStoppedTotal counts entries that were stopped and priced.
// Label:
//   - billable: "true" or "false"
var EntriesStoppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entries_stopped_total",
		Help:      "Total number of timesheet entries stopped, by billable flag.",
	},
	[]string{"billable"},
)

// RatesComputedTotal counts rate resolutions by outcome kind.
// Label:
//   - kind: "fixed", "hourly", or "zero"
var RatesComputedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rates_computed_total",
		Help:      "Total number of rate computations, by rate kind.",
	},
	[]string{"kind"},
)

// LockdownDeniedTotal counts edit and delete attempts rejected by the
// lockdown policy.
var LockdownDeniedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lockdown_denied_total",
		Help:      "Total number of entry modifications denied by the lockdown policy.",
	},
)

// ── Recalculation metrics ─────────────────────────────────────────────────────

// RecalcDedupTotal counts deduplication decisions for recalculation requests.
// Label:
//   - result: "hit" (duplicate, skipped) or "miss" (new request, processed)
var RecalcDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recalc_dedup_total",
		Help:      "Total number of recalculation dedup checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// RecalcQueueDepth tracks the current number of recalculation jobs waiting in
// each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var RecalcQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "recalc_queue_depth",
		Help:      "Current number of recalculation jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// RecalcDuration measures how long one user's recalculation takes end-to-end.
// Label:
//   - result: "ok" or "error"
var RecalcDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "recalc_duration_seconds",
		Help:      "Duration of a recalculation job from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"result"},
)

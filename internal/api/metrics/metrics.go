// Package metrics defines and registers the custom Prometheus metrics of the
// storefront API. Metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Operation metrics ─────────────────────────────────────────────────────────

// SkippedOperationsTotal counts operations that did nothing because a
// prerequisite was missing.
// Labels:
//   - op: the operation name (e.g. "cart.add")
//   - reason: the missing prerequisite (e.g. "no_token", "user_not_found")
var SkippedOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "skipped_operations_total",
		Help:      "Total number of operations turned into no-ops by a missing prerequisite.",
	},
	[]string{"op", "reason"},
)

// InputDefaultsTotal counts malformed inputs replaced by a default value.
// Label:
//   - field: the input field name (e.g. "cantidad", "precio")
var InputDefaultsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "input_defaults_total",
		Help:      "Total number of malformed inputs replaced by a default.",
	},
	[]string{"field"},
)

// ── Order metrics ─────────────────────────────────────────────────────────────

// OrdersRecordedTotal counts orders created from a cart.
var OrdersRecordedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_recorded_total",
		Help:      "Total number of orders recorded from a cart.",
	},
)

// OrderAmount observes the total of each recorded order.
var OrderAmount = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "order_amount",
		Help:      "Total amount of recorded orders.",
		Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500},
	},
)

// CheckoutsTotal counts checkouts reaching a terminal state.
// Label:
//   - state: "recorded" or "failed"
var CheckoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkouts_total",
		Help:      "Total number of checkouts reaching a terminal state.",
	},
	[]string{"state"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts queued e-mail deliveries.
// Label:
//   - result: "sent", "failed" or "dropped"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of queued notifications, by delivery result.",
	},
	[]string{"result"},
)

// NotificationQueueDepth tracks notifications waiting across all workers.
var NotificationQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications pending delivery.",
	},
)

// Recorder adapts the metrics above to ports.Recorder.
type Recorder struct{}

func (Recorder) Skipped(op, reason string) {
	SkippedOperationsTotal.WithLabelValues(op, reason).Inc()
}

func (Recorder) Defaulted(field string) {
	InputDefaultsTotal.WithLabelValues(field).Inc()
}

func (Recorder) OrderRecorded(total float64) {
	OrdersRecordedTotal.Inc()
	OrderAmount.Observe(total)
}

func (Recorder) CheckoutFinished(state string) {
	CheckoutsTotal.WithLabelValues(state).Inc()
}

// QueueObserver adapts the notification metrics to queue.Observer.
type QueueObserver struct{}

func (QueueObserver) NotificationResult(result string) {
	NotificationsTotal.WithLabelValues(result).Inc()
}

func (QueueObserver) QueueDepth(delta int) {
	NotificationQueueDepth.Add(float64(delta))
}

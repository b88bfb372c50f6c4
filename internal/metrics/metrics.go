// Package metrics defines and registers all custom Prometheus metrics for the
// practice API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry through
// promauto at package initialisation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clinic"

// ── Scheduling metrics ────────────────────────────────────────────────────────

// SessionTransitionsTotal counts session state machine transitions.
// Labels:
//   - from: status before the transition (e.g. "SCHEDULED")
//   - to:   status after the transition (e.g. "COMPLETED")
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session status transitions.",
	},
	[]string{"from", "to"},
)

// SchedulingOutcomesTotal counts proposition and session-request outcomes.
// Labels:
//   - workflow: "proposition" or "session_request"
//   - outcome:  "created", "accepted", "rejected" or "unavailable"
var SchedulingOutcomesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scheduling_outcomes_total",
		Help:      "Total number of scheduling workflow outcomes.",
	},
	[]string{"workflow", "outcome"},
)

// RecurrenceSessionsGenerated counts sessions created by recurrence
// configuration.
var RecurrenceSessionsGenerated = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recurrence_sessions_generated_total",
		Help:      "Total number of sessions generated by recurrence configuration.",
	},
)

// TherapiesCreatedTotal counts therapies created.
// Label:
//   - origin: "PSYCHOLOGIST_INITIATED" or "CONSULTANT_INITIATED"
var TherapiesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "therapies_created_total",
		Help:      "Total number of therapies created, by origin.",
	},
	[]string{"origin"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsDeliveredTotal counts notifications persisted.
// Label:
//   - type: the notification type (e.g. "SESSION_CANCELLED")
var NotificationsDeliveredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_delivered_total",
		Help:      "Total number of notifications persisted, by type.",
	},
	[]string{"type"},
)

// NotificationsDebouncedTotal counts notifications dropped by the debounce window.
var NotificationsDebouncedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_debounced_total",
		Help:      "Total number of notifications suppressed by debounce.",
	},
)

// NotificationsErrorsTotal counts notifications that failed delivery.
// Label:
//   - reason: short description of the failure (e.g. "insert_failed")
var NotificationsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_errors_total",
		Help:      "Total number of notifications that failed delivery.",
	},
	[]string{"reason"},
)

// NotificationQueueDepth tracks the notifications waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// NotificationDeliveryDuration measures how long one delivery takes.
// Label:
//   - result: "ok", "debounced" or "error"
var NotificationDeliveryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_delivery_duration_seconds",
		Help:      "Duration of notification delivery from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

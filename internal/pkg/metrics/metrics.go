package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the notification lifecycle.
type Metrics struct {
	TriggersScheduled *prometheus.CounterVec
	TriggersCancelled prometheus.Counter
	InvalidDoseTimes  prometheus.Counter
	Responses         *prometheus.CounterVec
	UsageLogAttempts  prometheus.Counter
	UsageLogFailures  prometheus.Counter
	StockFailures     *prometheus.CounterVec
	Deliveries        prometheus.Counter
}

// New registers the metrics on reg. Tests pass prometheus.NewRegistry() so
// repeated construction does not collide with the default registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TriggersScheduled: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "medreminder",
				Subsystem: "scheduler",
				Name:      "triggers_scheduled_total",
				Help:      "Number of notification triggers scheduled",
			},
			[]string{"kind"}, // daily or snooze
		),
		TriggersCancelled: f.NewCounter(prometheus.CounterOpts{
			Namespace: "medreminder",
			Subsystem: "scheduler",
			Name:      "triggers_cancelled_total",
			Help:      "Number of notification triggers cancelled",
		}),
		InvalidDoseTimes: f.NewCounter(prometheus.CounterOpts{
			Namespace: "medreminder",
			Subsystem: "scheduler",
			Name:      "invalid_dose_times_total",
			Help:      "Number of dose time entries skipped because they failed to parse",
		}),
		Responses: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "medreminder",
				Subsystem: "dispatcher",
				Name:      "responses_total",
				Help:      "Notification responses by outcome",
			},
			[]string{"outcome"}, // taken, missed, snoozed, duplicate, malformed, unknown, failed
		),
		UsageLogAttempts: f.NewCounter(prometheus.CounterOpts{
			Namespace: "medreminder",
			Subsystem: "reconciler",
			Name:      "usage_log_attempts_total",
			Help:      "Number of remote usage-log creation attempts",
		}),
		UsageLogFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: "medreminder",
			Subsystem: "reconciler",
			Name:      "usage_log_failures_total",
			Help:      "Number of usage logs dropped after retries were exhausted",
		}),
		StockFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "medreminder",
				Subsystem: "reconciler",
				Name:      "stock_failures_total",
				Help:      "Stock decrement failures after a successful usage log",
			},
			[]string{"reason"},
		),
		Deliveries: f.NewCounter(prometheus.CounterOpts{
			Namespace: "medreminder",
			Subsystem: "notifier",
			Name:      "deliveries_total",
			Help:      "Number of notifications delivered by fired triggers",
		}),
	}
}

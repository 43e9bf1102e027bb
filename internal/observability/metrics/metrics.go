package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK = "ok"

	NotificationSent    = "sent"
	NotificationFailed  = "failed"
	NotificationDropped = "dropped"
	NotificationSkipped = "skipped"
)

// ClinicMetrics counts appointment transitions, times ledger commits and
// tracks notification delivery. A nil *ClinicMetrics records nothing.
type ClinicMetrics struct {
	transitions   *prometheus.CounterVec
	completion    prometheus.Histogram
	notifications *prometheus.CounterVec
}

func NewClinicMetrics(reg prometheus.Registerer) *ClinicMetrics {
	m := &ClinicMetrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "appointments",
			Name:      "transitions_total",
			Help:      "Appointment lifecycle events by outcome",
		}, []string{"event", "outcome"}),
		completion: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dental",
			Name:      "ledger_completion_seconds",
			Help:      "Duration of the completion transaction",
			Buckets:   prometheus.DefBuckets,
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental",
			Name:      "notifications_total",
			Help:      "Patient notifications by kind and delivery status",
		}, []string{"kind", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.transitions, m.completion, m.notifications)
	return m
}

// ObserveTransition records one lifecycle event. outcome is OutcomeOK or
// the error code the event failed with.
func (m *ClinicMetrics) ObserveTransition(event, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(event, outcome).Inc()
}

func (m *ClinicMetrics) ObserveCompletion(d time.Duration) {
	if m == nil {
		return
	}
	m.completion.Observe(d.Seconds())
}

func (m *ClinicMetrics) ObserveNotification(kind, status string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind, status).Inc()
}

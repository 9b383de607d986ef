// Package metrics defines the Prometheus collectors exported at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the application collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	transfersCreated prometheus.Counter
	notifications    *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New registers the collectors on reg. A nil reg yields a no-op Metrics.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	m := &Metrics{
		transfersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transferlog_transfers_created_total",
			Help: "Transfers recorded.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transferlog_notifications_total",
			Help: "Notification emails by kind and result.",
		}, []string{"kind", "result"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "transferlog_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
	reg.MustRegister(m.transfersCreated, m.notifications, m.httpDuration)
	return m
}

// TransferCreated counts a stored transfer.
func (m *Metrics) TransferCreated() {
	if m == nil {
		return
	}
	m.transfersCreated.Inc()
}

// NotificationSent counts one notification attempt of the given kind.
func (m *Metrics) NotificationSent(kind string, err error) {
	if m == nil {
		return
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.notifications.WithLabelValues(normalizeLabel(kind), result).Inc()
}

// ObserveHTTP records the latency of one request.
func (m *Metrics) ObserveHTTP(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(d.Seconds())
}

func normalizeLabel(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

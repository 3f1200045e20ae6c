package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the process level HTTP and session metrics.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	SessionsActive  prometheus.Gauge
	LoginsTotal     *prometheus.CounterVec
	RoleChanges     *prometheus.CounterVec
}

// New creates and registers all process metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "navshell_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"route", "status"}),
		SessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "navshell_sessions_active",
			Help: "Sessions currently attached to a navigation registry",
		}),
		LoginsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "navshell_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		RoleChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "navshell_role_changes_total",
			Help: "Role changes delivered to registries by role",
		}, []string{"role"}),
	}
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(route, status string, start time.Time) {
	m.RequestDuration.WithLabelValues(route, status).Observe(time.Since(start).Seconds())
}

// IncrementLogin records a login attempt outcome.
func (m *Metrics) IncrementLogin(outcome string) {
	m.LoginsTotal.WithLabelValues(outcome).Inc()
}

// IncrementRoleChange records a role change; the absent role is "none".
func (m *Metrics) IncrementRoleChange(role string) {
	if role == "" {
		role = "none"
	}
	m.RoleChanges.WithLabelValues(role).Inc()
}

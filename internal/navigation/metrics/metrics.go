package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for navigation registries.
// Counters aggregate across every registry sharing the instance.
type Metrics struct {
	ProvidersRegistered prometheus.Counter
	Conflicts           *prometheus.CounterVec
	Recomputations      prometheus.Counter
	Resolutions         *prometheus.CounterVec
	Subscribers         prometheus.Gauge
}

// New registers the navigation metrics with reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not collide.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ProvidersRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "navshell_providers_registered_total",
			Help: "Total number of feature providers accepted by a registry",
		}),
		Conflicts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "navshell_registration_conflicts_total",
			Help: "Rejected registrations by conflict kind (feature, route)",
		}, []string{"kind"}),
		Recomputations: f.NewCounter(prometheus.CounterOpts{
			Name: "navshell_snapshot_recomputations_total",
			Help: "Total number of snapshots recomputed and published",
		}),
		Resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "navshell_main_destination_resolutions_total",
			Help: "Main destination resolutions by outcome",
		}, []string{"resolution"}),
		Subscribers: f.NewGauge(prometheus.GaugeOpts{
			Name: "navshell_snapshot_subscribers",
			Help: "Currently open snapshot subscriptions",
		}),
	}
}

// IncrementRegistered records an accepted provider.
func (m *Metrics) IncrementRegistered() {
	m.ProvidersRegistered.Inc()
}

// IncrementConflict records a rejected registration.
func (m *Metrics) IncrementConflict(kind string) {
	m.Conflicts.WithLabelValues(kind).Inc()
}

// IncrementRecomputed records a published snapshot.
func (m *Metrics) IncrementRecomputed() {
	m.Recomputations.Inc()
}

// IncrementResolved records a main destination resolution outcome.
func (m *Metrics) IncrementResolved(resolution string) {
	m.Resolutions.WithLabelValues(resolution).Inc()
}

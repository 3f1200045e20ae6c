// Package navigation implements the role-scoped navigation registry.
//
// A Registry aggregates FeatureProviders, filters their destinations by the
// current role and pushes each recomputed Snapshot to its subscribers. All
// mutation (registration, role changes, publication) is serialized by one
// mutex, so snapshots reach subscribers in the order the calls were made.
package navigation

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	navmetrics "navshell/internal/navigation/metrics"
	"navshell/pkg/domain"
)

type entry struct {
	featureID    string
	main         bool
	destinations []Destination
}

// firstVisible returns the lowest-order destination role may see.
// Equal orders keep declaration order.
func (e *entry) firstVisible(role domain.Role) (Destination, bool) {
	var best Destination
	found := false
	for _, d := range e.destinations {
		if !d.VisibleTo(role) {
			continue
		}
		if !found || d.Order < best.Order {
			best = d
			found = true
		}
	}
	return best, found
}

// Registry is the central navigation aggregator. Construct one with New and
// pass it by reference to every feature registration call.
type Registry struct {
	mu       sync.Mutex
	entries  []*entry
	features map[string]*entry
	routes   map[string]string

	role     domain.Role
	current  Snapshot
	revision uint64

	subs      map[uint64]*Subscription
	nextSubID uint64
	closed    bool

	priority PriorityTable
	logger   *slog.Logger
	metrics  *navmetrics.Metrics
}

// Option configures a Registry.
type Option func(r *Registry)

// WithLogger sets the logger used for registration diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithMetrics records registry activity.
func WithMetrics(m *navmetrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithPriority sets the table used to pick between competing main
// destinations.
func WithPriority(table PriorityTable) Option {
	return func(r *Registry) {
		r.priority = table.Clone()
	}
}

// WithInitialRole starts the registry with role already applied.
func WithInitialRole(role domain.Role) Option {
	return func(r *Registry) {
		r.role = role
	}
}

// New constructs an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		features: make(map[string]*entry),
		routes:   make(map[string]string),
		subs:     make(map[uint64]*Subscription),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.current = Snapshot{Role: r.role}
	return r
}

// Register adds a provider and republishes the snapshot for the current
// role. Providers with an empty or already registered feature id, or with
// a route that is empty or already taken, are rejected without changing
// any state; the rejection is logged and returned.
func (r *Registry) Register(p FeatureProvider) error {
	if p == nil {
		r.logger.Warn("navigation provider rejected", "error", ErrNilProvider)
		return ErrNilProvider
	}
	featureID := strings.TrimSpace(p.FeatureID())
	if featureID == "" {
		r.logger.Warn("navigation provider rejected", "error", ErrEmptyFeatureID)
		return ErrEmptyFeatureID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.features[featureID]; exists {
		r.logger.Warn("duplicate feature registration ignored", "feature_id", featureID)
		if r.metrics != nil {
			r.metrics.IncrementConflict("feature")
		}
		return fmt.Errorf("%w: %s", ErrDuplicateFeature, featureID)
	}

	e, err := r.normalize(featureID, p)
	if err != nil {
		r.logger.Warn("navigation provider rejected",
			"feature_id", featureID,
			"error", err,
		)
		if r.metrics != nil {
			r.metrics.IncrementConflict("route")
		}
		return err
	}

	r.entries = append(r.entries, e)
	r.features[featureID] = e
	for _, d := range e.destinations {
		r.routes[d.Route] = featureID
	}
	if r.metrics != nil {
		r.metrics.IncrementRegistered()
	}
	r.logger.Debug("navigation provider registered",
		"feature_id", featureID,
		"destinations", len(e.destinations),
		"main", e.main,
	)

	r.recomputeLocked()
	return nil
}

// normalize copies the provider's destinations, trims routes, applies role
// inheritance and checks route uniqueness against the registry.
func (r *Registry) normalize(featureID string, p FeatureProvider) (*entry, error) {
	inherited := p.AllowedRoles()
	src := p.Destinations()
	dests := make([]Destination, 0, len(src))
	seen := make(map[string]struct{}, len(src))

	for _, d := range src {
		d.Route = strings.TrimSpace(d.Route)
		if d.Route == "" {
			return nil, fmt.Errorf("%w in feature %s", ErrEmptyRoute, featureID)
		}
		if owner, taken := r.routes[d.Route]; taken {
			return nil, fmt.Errorf("%w: %s already owned by %s", ErrDuplicateRoute, d.Route, owner)
		}
		if _, dup := seen[d.Route]; dup {
			return nil, fmt.Errorf("%w: %s declared twice by %s", ErrDuplicateRoute, d.Route, featureID)
		}
		seen[d.Route] = struct{}{}

		if len(d.AllowedRoles) == 0 {
			d.AllowedRoles = inherited.Clone()
		} else {
			d.AllowedRoles = d.AllowedRoles.Clone()
		}
		if d.Placement == "" {
			d.Placement = PlacementHidden
		}
		dests = append(dests, d)
	}

	return &entry{
		featureID:    featureID,
		main:         p.IsMainDestination(),
		destinations: dests,
	}, nil
}

// OnRoleChanged applies a new current role. RoleNone hides every
// destination. Re-applying the current role publishes nothing.
func (r *Registry) OnRoleChanged(role domain.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if role == r.role {
		return
	}
	r.role = role
	r.recomputeLocked()
}

// recomputeLocked rebuilds the snapshot from scratch and publishes it.
func (r *Registry) recomputeLocked() {
	var visible []Destination
	if !r.role.IsNil() {
		for _, e := range r.entries {
			for _, d := range e.destinations {
				if d.VisibleTo(r.role) {
					visible = append(visible, d)
				}
			}
		}
	}
	if visible == nil {
		visible = []Destination{}
	}

	r.revision++
	r.current = Snapshot{
		Role:         r.role,
		Revision:     r.revision,
		Destinations: visible,
	}
	if r.metrics != nil {
		r.metrics.IncrementRecomputed()
	}

	for _, sub := range r.subs {
		sub.offer(r.current)
	}
}

// Subscribe returns a subscription primed with the current snapshot.
func (r *Registry) Subscribe() *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub := &Subscription{ch: make(chan Snapshot, 1), reg: r}
	if r.closed {
		sub.once.Do(func() { close(sub.ch) })
		return sub
	}

	r.nextSubID++
	sub.id = r.nextSubID
	r.subs[sub.id] = sub
	if r.metrics != nil {
		r.metrics.Subscribers.Inc()
	}
	sub.offer(r.current)
	return sub
}

// Snapshot returns the most recently published snapshot.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Role returns the current role.
func (r *Registry) Role() domain.Role {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.role
}

// FeatureIDs lists registered providers in registration order.
func (r *Registry) FeatureIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		ids = append(ids, e.featureID)
	}
	return ids
}

// Close ends every subscription. Later subscriptions are closed on arrival.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	for _, sub := range r.subs {
		sub.closeLocked()
	}
}

// Package shell hosts the navigation registries of live sessions. Each
// session owns one registry; role changes from the session bus are routed
// to it and the HTTP surfaces read from it.
package shell

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"navshell/internal/audit"
	"navshell/internal/navigation"
	navmetrics "navshell/internal/navigation/metrics"
	"navshell/internal/platform/metrics"
	"navshell/internal/session/bus"
	"navshell/pkg/domain"
)

// ErrSessionEnded is returned for sessions whose absent role has already
// been applied. Their ids are never attached again.
var ErrSessionEnded = errors.New("shell: session ended")

// AuditPublisher records registration conflicts.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Manager owns the per-session registries. The catalog is validated once
// at construction; providers rejected there are never offered to session
// registries.
type Manager struct {
	mu         sync.Mutex
	registries map[domain.SessionID]*navigation.Registry
	ended      map[domain.SessionID]struct{}

	providers  []navigation.FeatureProvider
	catalog    *navigation.Registry
	priority   navigation.PriorityTable
	breakpoint int

	logger     *slog.Logger
	navMetrics *navmetrics.Metrics
	metrics    *metrics.Metrics
	auditor    AuditPublisher
	tracer     trace.Tracer
}

type Option func(*Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

func WithPriority(table navigation.PriorityTable) Option {
	return func(m *Manager) {
		m.priority = table.Clone()
	}
}

// WithBreakpoint sets the width (dp) from which layouts use the side rail.
func WithBreakpoint(dp int) Option {
	return func(m *Manager) {
		if dp > 0 {
			m.breakpoint = dp
		}
	}
}

func WithNavigationMetrics(nm *navmetrics.Metrics) Option {
	return func(m *Manager) {
		m.navMetrics = nm
	}
}

func WithMetrics(pm *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = pm
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(m *Manager) {
		m.auditor = p
	}
}

// New validates providers against an empty registry and keeps the ones it
// accepts. Every rejection is reported to the audit publisher.
func New(ctx context.Context, providers []navigation.FeatureProvider, opts ...Option) *Manager {
	m := &Manager{
		registries: make(map[domain.SessionID]*navigation.Registry),
		ended:      make(map[domain.SessionID]struct{}),
		breakpoint: navigation.DefaultWideBreakpoint,
		logger:     slog.Default(),
		tracer:     otel.Tracer("navshell/shell"),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.catalog = m.newRegistry(m.logger)
	for _, p := range providers {
		if err := m.catalog.Register(p); err != nil {
			m.reportConflict(ctx, p, err)
			continue
		}
		m.providers = append(m.providers, p)
	}
	return m
}

func (m *Manager) newRegistry(logger *slog.Logger, opts ...navigation.Option) *navigation.Registry {
	base := []navigation.Option{
		navigation.WithLogger(logger),
		navigation.WithPriority(m.priority),
	}
	if m.navMetrics != nil {
		base = append(base, navigation.WithMetrics(m.navMetrics))
	}
	return navigation.New(append(base, opts...)...)
}

func (m *Manager) reportConflict(ctx context.Context, p navigation.FeatureProvider, err error) {
	featureID := ""
	if p != nil {
		featureID = p.FeatureID()
	}
	if m.auditor == nil {
		return
	}
	event := audit.Event{
		Category:  audit.CategoryOperations,
		Action:    audit.ActionRegistrationConflict,
		FeatureID: featureID,
		Reason:    err.Error(),
	}
	if emitErr := m.auditor.Emit(ctx, event); emitErr != nil {
		m.logger.WarnContext(ctx, "failed to emit registration conflict",
			"feature_id", featureID,
			"error", emitErr,
		)
	}
}

// FeatureIDs lists the accepted providers in registration order.
func (m *Manager) FeatureIDs() []string {
	return m.catalog.FeatureIDs()
}

// Breakpoint is the configured wide-viewport width.
func (m *Manager) Breakpoint() int {
	return m.breakpoint
}

// MainFor resolves the main destination of role against the catalog. It
// needs no session, so login responses can name it before the session's
// registry exists.
func (m *Manager) MainFor(role domain.Role) navigation.MainDestination {
	return m.catalog.ResolveMainDestination(role)
}

// Apply routes one role change. The absent role detaches the session and
// closes its subscriptions; changes for an ended session are dropped.
func (m *Manager) Apply(ctx context.Context, change bus.RoleChange) {
	_, span := m.tracer.Start(ctx, "shell.Apply", trace.WithAttributes(
		attribute.String("session.id", change.SessionID.String()),
		attribute.String("session.role", change.Role.String()),
	))
	defer span.End()

	if change.Role.IsNil() {
		m.detach(change.SessionID)
		return
	}
	if _, err := m.Registry(change.SessionID, change.Role); err != nil {
		m.logger.DebugContext(ctx, "role change for ended session dropped",
			"session_id", change.SessionID.String(),
			"role", change.Role.String(),
		)
	}
}

// Registry returns the session's registry switched to role, attaching one
// if the session has none yet. Ended sessions get ErrSessionEnded.
func (m *Manager) Registry(sessionID domain.SessionID, role domain.Role) (*navigation.Registry, error) {
	m.mu.Lock()
	if _, gone := m.ended[sessionID]; gone {
		m.mu.Unlock()
		return nil, ErrSessionEnded
	}
	reg, ok := m.registries[sessionID]
	if !ok {
		reg = m.attachLocked(sessionID, role)
	}
	m.mu.Unlock()

	reg.OnRoleChanged(role)
	return reg, nil
}

// Lookup returns the session's registry without changing it.
func (m *Manager) Lookup(sessionID domain.SessionID) (*navigation.Registry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.registries[sessionID]
	return reg, ok
}

func (m *Manager) attachLocked(sessionID domain.SessionID, role domain.Role) *navigation.Registry {
	reg := m.newRegistry(
		m.logger.With("session_id", sessionID.String()),
		navigation.WithInitialRole(role),
	)
	for _, p := range m.providers {
		_ = reg.Register(p)
	}
	m.registries[sessionID] = reg
	if m.metrics != nil {
		m.metrics.SessionsActive.Inc()
	}
	m.logger.Debug("session attached", "session_id", sessionID.String(), "role", role.String())
	return reg
}

func (m *Manager) detach(sessionID domain.SessionID) {
	m.mu.Lock()
	reg, ok := m.registries[sessionID]
	delete(m.registries, sessionID)
	m.ended[sessionID] = struct{}{}
	m.mu.Unlock()

	if !ok {
		return
	}
	reg.OnRoleChanged(domain.RoleNone)
	reg.Close()
	if m.metrics != nil {
		m.metrics.SessionsActive.Dec()
	}
	m.logger.Debug("session detached", "session_id", sessionID.String())
}

// Sessions reports how many sessions hold a registry.
func (m *Manager) Sessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.registries)
}

// Run applies role changes from b until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, b bus.Bus) error {
	changes, err := b.Subscribe(ctx)
	if err != nil {
		return err
	}
	for change := range changes {
		m.Apply(ctx, change)
	}
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Close detaches every session.
func (m *Manager) Close() {
	m.mu.Lock()
	ids := make([]domain.SessionID, 0, len(m.registries))
	for id := range m.registries {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	for _, id := range ids {
		m.detach(id)
	}
}

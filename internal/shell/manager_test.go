package shell

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"navshell/internal/audit"
	"navshell/internal/features"
	"navshell/internal/navigation"
	"navshell/internal/platform/config"
	"navshell/internal/platform/metrics"
	"navshell/internal/session/bus"
	"navshell/pkg/domain"
)

type ManagerSuite struct {
	suite.Suite
	auditStore *audit.InMemoryStore
	metrics    *metrics.Metrics
	manager    *Manager
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) SetupTest() {
	s.auditStore = audit.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())

	providers := append(features.Catalog(),
		navigation.StaticProvider{ID: "billing"},
		navigation.StaticProvider{ID: "reports", Roles: domain.NewRoleSet(domain.RoleAdmin), Dests: []navigation.Destination{
			{Route: "reports/summary", Placement: navigation.PlacementDrawer},
		}},
	)
	s.manager = New(context.Background(), providers,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithPriority(config.DefaultPriority()),
		WithMetrics(s.metrics),
		WithAuditPublisher(audit.NewPublisher(s.auditStore)),
	)
}

func (s *ManagerSuite) TestCatalogValidation() {
	s.Equal([]string{"home", "billing", "invoice", "requests", "notifications", "user", "profile", "reports"},
		s.manager.FeatureIDs())

	events := s.auditStore.List()
	s.Require().Len(events, 1)
	s.Equal(audit.ActionRegistrationConflict, events[0].Action)
	s.Equal("billing", events[0].FeatureID)
	s.Equal(audit.CategoryOperations, events[0].Category)
}

func (s *ManagerSuite) TestMainFor() {
	s.Equal("billing/overview", s.manager.MainFor(domain.RoleClient).Route)
	s.Equal("user/directory", s.manager.MainFor(domain.RoleAdmin).Route)
	s.False(s.manager.MainFor(domain.RoleNone).Found())
}

func (s *ManagerSuite) TestApply() {
	ctx := context.Background()
	sid := domain.NewSessionID()

	s.Run("first role attaches a registry", func() {
		s.manager.Apply(ctx, bus.RoleChange{SessionID: sid, Role: domain.RoleAdmin})
		reg, ok := s.manager.Lookup(sid)
		s.Require().True(ok)
		s.Equal(domain.RoleAdmin, reg.Role())
		s.Contains(reg.Snapshot().Routes(), "reports/summary")
		s.Equal(1.0, testutil.ToFloat64(s.metrics.SessionsActive))
	})

	s.Run("later roles switch the same registry", func() {
		reg, _ := s.manager.Lookup(sid)
		sub := reg.Subscribe()
		<-sub.C()

		s.manager.Apply(ctx, bus.RoleChange{SessionID: sid, Role: domain.RoleAgent})
		snap := <-sub.C()
		s.Equal(domain.RoleAgent, snap.Role)
		s.NotContains(snap.Routes(), "reports/summary")
		s.Equal(1, s.manager.Sessions())
		sub.Unsubscribe()
	})

	s.Run("absent role detaches and ends streams", func() {
		reg, _ := s.manager.Lookup(sid)
		sub := reg.Subscribe()
		<-sub.C()

		s.manager.Apply(ctx, bus.RoleChange{SessionID: sid})
		_, ok := s.manager.Lookup(sid)
		s.False(ok)
		s.Equal(0.0, testutil.ToFloat64(s.metrics.SessionsActive))

		for range sub.C() {
		}
	})

	s.Run("detaching an unknown session is harmless", func() {
		s.manager.Apply(ctx, bus.RoleChange{SessionID: domain.NewSessionID()})
		s.Equal(0, s.manager.Sessions())
	})
}

func (s *ManagerSuite) TestEndedSessionIsNotReattached() {
	ctx := context.Background()
	sid := domain.NewSessionID()

	s.manager.Apply(ctx, bus.RoleChange{SessionID: sid, Role: domain.RoleClient})
	s.manager.Apply(ctx, bus.RoleChange{SessionID: sid})

	s.Run("late reads are refused", func() {
		reg, err := s.manager.Registry(sid, domain.RoleClient)
		s.ErrorIs(err, ErrSessionEnded)
		s.Nil(reg)
		s.Equal(0, s.manager.Sessions())
		s.Equal(0.0, testutil.ToFloat64(s.metrics.SessionsActive))
	})

	s.Run("late role changes are dropped", func() {
		s.manager.Apply(ctx, bus.RoleChange{SessionID: sid, Role: domain.RoleAdmin})
		_, ok := s.manager.Lookup(sid)
		s.False(ok)
	})

	s.Run("logout seen before any read still ends the session", func() {
		other := domain.NewSessionID()
		s.manager.Apply(ctx, bus.RoleChange{SessionID: other})
		_, err := s.manager.Registry(other, domain.RoleAgent)
		s.ErrorIs(err, ErrSessionEnded)
	})
}

func (s *ManagerSuite) TestRunConsumesBus() {
	b := bus.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.manager.Run(ctx, b) }()

	sid := domain.NewSessionID()
	s.Eventually(func() bool {
		_ = b.Publish(ctx, bus.RoleChange{SessionID: sid, Role: domain.RoleClient})
		_, ok := s.manager.Lookup(sid)
		return ok
	}, time.Second, 10*time.Millisecond)

	reg, _ := s.manager.Lookup(sid)
	s.Equal("billing/overview", reg.ResolveMainDestination(reg.Role()).Route)

	cancel()
	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(time.Second):
		s.Fail("Run did not return after cancel")
	}

	s.manager.Close()
	s.Equal(0, s.manager.Sessions())
}

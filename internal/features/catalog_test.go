package features

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"navshell/internal/navigation"
	"navshell/internal/platform/config"
	"navshell/pkg/domain"
)

func catalogRegistry(t *testing.T) *navigation.Registry {
	t.Helper()
	reg := navigation.New(
		navigation.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		navigation.WithPriority(config.DefaultPriority()),
	)
	for _, p := range Catalog() {
		require.NoError(t, reg.Register(p))
	}
	return reg
}

func TestCatalogRegistersCleanly(t *testing.T) {
	reg := catalogRegistry(t)
	assert.Equal(t,
		[]string{"home", "billing", "invoice", "requests", "notifications", "user", "profile"},
		reg.FeatureIDs())
}

func TestCatalogMainDestinations(t *testing.T) {
	reg := catalogRegistry(t)
	tests := []struct {
		role       domain.Role
		route      string
		resolution navigation.Resolution
	}{
		{domain.RoleClient, "billing/overview", navigation.ResolutionPriority},
		{domain.RoleAgent, "home/dashboard", navigation.ResolutionSingle},
		{domain.RoleAdmin, "user/directory", navigation.ResolutionSingle},
		{domain.RoleNone, "", navigation.ResolutionNone},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			main := reg.ResolveMainDestination(tt.role)
			assert.Equal(t, tt.route, main.Route)
			assert.Equal(t, tt.resolution, main.Resolution)
		})
	}
}

func TestCatalogVisibility(t *testing.T) {
	reg := catalogRegistry(t)

	reg.OnRoleChanged(domain.RoleAgent)
	snap := reg.Snapshot()
	assert.Equal(t, []string{
		"home/dashboard", "home/activity",
		"requests/queue", "requests/board",
		"notifications/inbox", "notifications/center",
		"profile/settings", "profile/password",
	}, snap.Routes())

	narrow := snap.Layout(360, navigation.DefaultWideBreakpoint)
	assert.Equal(t, navigation.SurfaceBottomBar, narrow.Surface)
	assert.Equal(t, []string{"home/dashboard", "requests/queue", "notifications/inbox"}, routes(narrow.Items))
	assert.Equal(t, []string{"profile/settings"}, routes(narrow.Drawer))

	reg.OnRoleChanged(domain.RoleAdmin)
	wide := reg.Snapshot().Layout(1024, navigation.DefaultWideBreakpoint)
	assert.Equal(t, navigation.SurfaceSideRail, wide.Surface)
	assert.Equal(t, []string{"user/roles", "notifications/center"}, routes(wide.Items))
	assert.Equal(t, []string{"user/audit", "profile/settings"}, routes(wide.Drawer))
}

func TestFromManifests(t *testing.T) {
	t.Run("converts roles and placements", func(t *testing.T) {
		providers, err := FromManifests([]config.FeatureManifest{{
			ID:    "reports",
			Roles: []string{" admin", "ADMIN", "agent"},
			Destinations: []config.DestinationManifest{
				{Route: "reports/summary", Title: "nav.reports", Placement: "SideRail", Order: 4},
				{Route: "reports/export", Placement: "drawer", Roles: []string{"admin"}},
			},
		}})
		require.NoError(t, err)
		require.Len(t, providers, 1)

		p := providers[0]
		assert.Equal(t, "reports", p.FeatureID())
		assert.False(t, p.IsMainDestination())
		assert.Equal(t, []domain.Role{domain.RoleAgent, domain.RoleAdmin}, p.AllowedRoles().Slice())
		dests := p.Destinations()
		assert.Equal(t, navigation.PlacementSideRail, dests[0].Placement)
		assert.Empty(t, dests[0].AllowedRoles)
		assert.Equal(t, navigation.PlacementDrawer, dests[1].Placement)
		assert.True(t, dests[1].AllowedRoles.Contains(domain.RoleAdmin))
	})

	t.Run("rejects unknown roles and placements", func(t *testing.T) {
		_, err := FromManifests([]config.FeatureManifest{{ID: "x", Roles: []string{"root"}}})
		assert.ErrorContains(t, err, `feature "x"`)

		_, err = FromManifests([]config.FeatureManifest{{
			ID:           "y",
			Destinations: []config.DestinationManifest{{Route: "y/a", Placement: "toolbar"}},
		}})
		assert.ErrorContains(t, err, `destination "y/a"`)
	})
}

func routes(ds []navigation.Destination) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Route)
	}
	return out
}

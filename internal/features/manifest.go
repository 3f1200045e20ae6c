package features

import (
	"fmt"

	"navshell/internal/navigation"
	"navshell/internal/platform/config"
	"navshell/pkg/domain"
	"navshell/pkg/platform/strings"
)

// FromManifests converts configured feature manifests into providers.
// Duplicate ids are left for the registry to reject.
func FromManifests(manifests []config.FeatureManifest) ([]navigation.FeatureProvider, error) {
	providers := make([]navigation.FeatureProvider, 0, len(manifests))
	for _, m := range manifests {
		p, err := fromManifest(m)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", m.ID, err)
		}
		providers = append(providers, p)
	}
	return providers, nil
}

func fromManifest(m config.FeatureManifest) (navigation.StaticProvider, error) {
	roles, err := parseRoles(m.Roles)
	if err != nil {
		return navigation.StaticProvider{}, err
	}
	p := navigation.StaticProvider{ID: m.ID, Main: m.Main, Roles: roles}
	for _, d := range m.Destinations {
		placement, err := navigation.ParsePlacement(d.Placement)
		if err != nil {
			return navigation.StaticProvider{}, fmt.Errorf("destination %q: %w", d.Route, err)
		}
		destRoles, err := parseRoles(d.Roles)
		if err != nil {
			return navigation.StaticProvider{}, fmt.Errorf("destination %q: %w", d.Route, err)
		}
		p.Dests = append(p.Dests, navigation.Destination{
			Route:        d.Route,
			Title:        d.Title,
			Icon:         d.Icon,
			Placement:    placement,
			AllowedRoles: destRoles,
			Order:        d.Order,
		})
	}
	return p, nil
}

func parseRoles(names []string) (domain.RoleSet, error) {
	names = strings.DedupeAndTrimUpper(names)
	roles := make([]domain.Role, 0, len(names))
	for _, name := range names {
		role, err := domain.ParseRole(name)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return domain.NewRoleSet(roles...), nil
}

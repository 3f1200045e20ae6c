package navigation

import "navshell/pkg/domain"

// FeatureProvider is implemented by every feature module that contributes
// destinations. The registry depends on nothing else about a feature.
type FeatureProvider interface {
	// FeatureID must be non-empty and unique within a registry.
	FeatureID() string
	// IsMainDestination marks the provider as a candidate home screen.
	IsMainDestination() bool
	// AllowedRoles is inherited by destinations that declare no roles.
	AllowedRoles() domain.RoleSet
	// Destinations returns the provider's screens in declaration order.
	Destinations() []Destination
}

// StaticProvider is a FeatureProvider backed by plain values. Feature
// packages and YAML manifests both build these.
type StaticProvider struct {
	ID    string
	Main  bool
	Roles domain.RoleSet
	Dests []Destination
}

func (p StaticProvider) FeatureID() string            { return p.ID }
func (p StaticProvider) IsMainDestination() bool      { return p.Main }
func (p StaticProvider) AllowedRoles() domain.RoleSet { return p.Roles }
func (p StaticProvider) Destinations() []Destination  { return p.Dests }

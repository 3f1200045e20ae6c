package navigation

import (
	"sort"

	"navshell/pkg/domain"
)

// Snapshot is the derived visible state of a registry: a pure function of
// the registered providers and the current role. Revision increases by one
// for every published snapshot of a registry.
//
// Destinations are in registration order. Snapshots share descriptor data
// with the registry and must be treated as read-only.
type Snapshot struct {
	Role         domain.Role
	Revision     uint64
	Destinations []Destination
}

// Routes lists the visible routes in registration order.
func (s Snapshot) Routes() []string {
	routes := make([]string, 0, len(s.Destinations))
	for _, d := range s.Destinations {
		routes = append(routes, d.Route)
	}
	return routes
}

// ByPlacement returns the destinations of one placement sorted by Order.
// Equal orders keep registration order.
func (s Snapshot) ByPlacement(p Placement) []Destination {
	var out []Destination
	for _, d := range s.Destinations {
		if d.Placement == p {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

// Partition groups every visible destination by placement, each bucket
// sorted as ByPlacement sorts it.
func (s Snapshot) Partition() map[Placement][]Destination {
	out := make(map[Placement][]Destination, 4)
	for _, p := range []Placement{PlacementBottomBar, PlacementSideRail, PlacementDrawer, PlacementHidden} {
		if ds := s.ByPlacement(p); len(ds) > 0 {
			out[p] = ds
		}
	}
	return out
}

package navigation

import (
	"math"
	"sort"

	"navshell/pkg/domain"
)

// PriorityTable ranks feature ids for main-destination tie-breaks. Lower
// ranks win; features missing from the table rank after every listed one.
type PriorityTable map[string]int

// Rank returns the feature's rank, or math.MaxInt when it is not listed.
func (t PriorityTable) Rank(featureID string) int {
	if rank, ok := t[featureID]; ok {
		return rank
	}
	return math.MaxInt
}

// Clone returns an independent copy.
func (t PriorityTable) Clone() PriorityTable {
	out := make(PriorityTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Resolution explains how a main destination was chosen.
type Resolution string

const (
	ResolutionNone     Resolution = "none"
	ResolutionSingle   Resolution = "single"
	ResolutionPriority Resolution = "priority"
	ResolutionFallback Resolution = "fallback"
)

// MainDestination is the outcome of ResolveMainDestination.
type MainDestination struct {
	Route      string
	FeatureID  string
	Resolution Resolution
}

// Found reports whether a route was resolved.
func (m MainDestination) Found() bool {
	return m.Route != ""
}

type accessible struct {
	featureID string
	main      bool
	first     Destination
}

// ResolveMainDestination picks the landing destination for role. It is
// evaluated on every call against the registered providers:
//
//   - no role, or no provider with a destination visible to role: nothing;
//   - one accessible provider flagged main: its first visible destination;
//   - several flagged main: the lowest priority rank wins, then
//     registration order;
//   - none flagged main: the first accessible provider in registration order.
//
// "First visible destination" is the lowest Order among the provider's
// destinations the role may see.
func (r *Registry) ResolveMainDestination(role domain.Role) MainDestination {
	md := r.resolve(role)
	if r.metrics != nil {
		r.metrics.IncrementResolved(string(md.Resolution))
	}
	return md
}

func (r *Registry) resolve(role domain.Role) MainDestination {
	if role.IsNil() {
		return MainDestination{Resolution: ResolutionNone}
	}

	r.mu.Lock()
	var acc []accessible
	for _, e := range r.entries {
		if d, ok := e.firstVisible(role); ok {
			acc = append(acc, accessible{featureID: e.featureID, main: e.main, first: d})
		}
	}
	priority := r.priority
	r.mu.Unlock()

	if len(acc) == 0 {
		return MainDestination{Resolution: ResolutionNone}
	}

	var candidates []accessible
	for _, a := range acc {
		if a.main {
			candidates = append(candidates, a)
		}
	}

	switch len(candidates) {
	case 0:
		return MainDestination{
			Route:      acc[0].first.Route,
			FeatureID:  acc[0].featureID,
			Resolution: ResolutionFallback,
		}
	case 1:
		return MainDestination{
			Route:      candidates[0].first.Route,
			FeatureID:  candidates[0].featureID,
			Resolution: ResolutionSingle,
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return priority.Rank(candidates[i].featureID) < priority.Rank(candidates[j].featureID)
	})
	return MainDestination{
		Route:      candidates[0].first.Route,
		FeatureID:  candidates[0].featureID,
		Resolution: ResolutionPriority,
	}
}

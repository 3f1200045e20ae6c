package navigation

import (
	"fmt"
	"strings"

	"navshell/pkg/domain"
)

// Placement names the surface category a destination may appear on.
type Placement string

const (
	PlacementBottomBar Placement = "bottom_bar"
	PlacementSideRail  Placement = "side_rail"
	PlacementDrawer    Placement = "drawer"
	PlacementHidden    Placement = "hidden"
)

// ParsePlacement accepts the snake_case names used in manifests and the
// CamelCase names used in docs ("BottomBar").
func ParsePlacement(s string) (Placement, error) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	switch norm {
	case "bottombar":
		return PlacementBottomBar, nil
	case "siderail":
		return PlacementSideRail, nil
	case "drawer":
		return PlacementDrawer, nil
	case "hidden", "":
		return PlacementHidden, nil
	}
	return "", fmt.Errorf("unknown placement: %q", s)
}

// Destination describes one navigable screen.
//
// Title is an opaque reference to localized text; the registry never
// resolves it. AllowedRoles is an explicit opt-in set: a destination whose
// set is empty (after inheriting its provider's roles) is never visible.
type Destination struct {
	Route        string
	Title        string
	Icon         string
	Placement    Placement
	AllowedRoles domain.RoleSet
	Order        int
}

// VisibleTo reports whether role may see the destination.
func (d Destination) VisibleTo(role domain.Role) bool {
	return d.AllowedRoles.Contains(role)
}

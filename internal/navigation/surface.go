package navigation

// Surface is the navigation bar an app shell renders for a viewport.
type Surface string

const (
	SurfaceBottomBar Surface = "bottom_bar"
	SurfaceSideRail  Surface = "side_rail"
)

// DefaultWideBreakpoint is the width (dp) from which the side rail replaces
// the bottom bar.
const DefaultWideBreakpoint = 600

// SelectSurface picks exactly one bar for the viewport width.
func SelectSurface(width, breakpoint int) Surface {
	if width >= breakpoint {
		return SurfaceSideRail
	}
	return SurfaceBottomBar
}

// Layout is what one viewport state renders. Items are the bar entries;
// Drawer entries are listed separately because the drawer is available in
// both viewport states. Hidden destinations appear nowhere.
type Layout struct {
	Surface Surface
	Items   []Destination
	Drawer  []Destination
}

// Layout computes the surface assignment of s for a viewport width.
func (s Snapshot) Layout(width, breakpoint int) Layout {
	surface := SelectSurface(width, breakpoint)
	placement := PlacementBottomBar
	if surface == SurfaceSideRail {
		placement = PlacementSideRail
	}
	return Layout{
		Surface: surface,
		Items:   s.ByPlacement(placement),
		Drawer:  s.ByPlacement(PlacementDrawer),
	}
}

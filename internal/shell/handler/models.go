package handler

import "navshell/internal/navigation"

// DestinationResponse is the wire form of a visible destination.
type DestinationResponse struct {
	Route     string `json:"route"`
	Title     string `json:"title"`
	Icon      string `json:"icon,omitempty"`
	Placement string `json:"placement"`
	Order     int    `json:"order"`
}

// DestinationsResponse is returned by GET /nav/destinations.
type DestinationsResponse struct {
	Role         string                `json:"role"`
	Revision     uint64                `json:"revision"`
	Destinations []DestinationResponse `json:"destinations"`
}

// MainResponse is returned by GET /nav/main.
type MainResponse struct {
	Route      string `json:"route,omitempty"`
	FeatureID  string `json:"feature_id,omitempty"`
	Resolution string `json:"resolution"`
}

// LayoutResponse is returned by GET /nav/layout and pushed by
// GET /nav/stream.
type LayoutResponse struct {
	Role     string                `json:"role"`
	Revision uint64                `json:"revision"`
	Width    int                   `json:"width"`
	Surface  string                `json:"surface"`
	Items    []DestinationResponse `json:"items"`
	Drawer   []DestinationResponse `json:"drawer"`
	Main     string                `json:"main,omitempty"`
}

func toDestinations(ds []navigation.Destination) []DestinationResponse {
	out := make([]DestinationResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, DestinationResponse{
			Route:     d.Route,
			Title:     d.Title,
			Icon:      d.Icon,
			Placement: string(d.Placement),
			Order:     d.Order,
		})
	}
	return out
}

func toLayout(snap navigation.Snapshot, width, breakpoint int, main navigation.MainDestination) LayoutResponse {
	layout := snap.Layout(width, breakpoint)
	return LayoutResponse{
		Role:     snap.Role.String(),
		Revision: snap.Revision,
		Width:    width,
		Surface:  string(layout.Surface),
		Items:    toDestinations(layout.Items),
		Drawer:   toDestinations(layout.Drawer),
		Main:     main.Route,
	}
}

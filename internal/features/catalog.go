// Package features declares the navigation contributed by each feature
// module of the app. Every feature is a navigation.StaticProvider; the
// catalog lists them in registration order.
package features

import (
	"navshell/internal/navigation"
	"navshell/pkg/domain"
)

var (
	allRoles    = domain.NewRoleSet(domain.AllRoles...)
	clientRole  = domain.NewRoleSet(domain.RoleClient)
	agentRole   = domain.NewRoleSet(domain.RoleAgent)
	adminRole   = domain.NewRoleSet(domain.RoleAdmin)
	clientAgent = domain.NewRoleSet(domain.RoleClient, domain.RoleAgent)
	clientAdmin = domain.NewRoleSet(domain.RoleClient, domain.RoleAdmin)
)

// Catalog returns the built-in providers in registration order.
func Catalog() []navigation.FeatureProvider {
	return []navigation.FeatureProvider{
		Home(),
		Billing(),
		Invoice(),
		Requests(),
		Notifications(),
		User(),
		Profile(),
	}
}

// Home is the dashboard for clients and field agents.
func Home() navigation.StaticProvider {
	return navigation.StaticProvider{
		ID:    "home",
		Main:  true,
		Roles: clientAgent,
		Dests: []navigation.Destination{
			{Route: "home/dashboard", Title: "nav.home", Icon: "home", Placement: navigation.PlacementBottomBar, Order: 0},
			{Route: "home/activity", Title: "nav.home.activity", Icon: "timeline", Placement: navigation.PlacementSideRail, Order: 0},
		},
	}
}

// Billing covers bills and payments for clients.
func Billing() navigation.StaticProvider {
	return navigation.StaticProvider{
		ID:    "billing",
		Main:  true,
		Roles: clientRole,
		Dests: []navigation.Destination{
			{Route: "billing/overview", Title: "nav.billing", Icon: "receipt", Placement: navigation.PlacementBottomBar, Order: 1},
			{Route: "billing/payments", Title: "nav.billing.payments", Icon: "payments", Placement: navigation.PlacementSideRail, Order: 1},
			{Route: "billing/history", Title: "nav.billing.history", Icon: "history", Placement: navigation.PlacementDrawer, Order: 5},
		},
	}
}

// Invoice lists invoices. Admins reach it for support cases.
func Invoice() navigation.StaticProvider {
	return navigation.StaticProvider{
		ID:    "invoice",
		Roles: clientAdmin,
		Dests: []navigation.Destination{
			{Route: "invoice/list", Title: "nav.invoices", Icon: "description", Placement: navigation.PlacementBottomBar, Order: 2},
			{Route: "invoice/detail", Title: "nav.invoices.detail", Placement: navigation.PlacementHidden},
		},
	}
}

// Requests is service-request ticketing. Clients file requests; agents
// work the queue. The provider itself grants no role.
func Requests() navigation.StaticProvider {
	return navigation.StaticProvider{
		ID: "requests",
		Dests: []navigation.Destination{
			{Route: "requests/new", Title: "nav.requests.new", Icon: "add_circle", Placement: navigation.PlacementBottomBar, AllowedRoles: clientRole, Order: 3},
			{Route: "requests/mine", Title: "nav.requests.mine", Icon: "list", Placement: navigation.PlacementDrawer, AllowedRoles: clientRole, Order: 3},
			{Route: "requests/queue", Title: "nav.requests.queue", Icon: "inbox", Placement: navigation.PlacementBottomBar, AllowedRoles: agentRole, Order: 1},
			{Route: "requests/board", Title: "nav.requests.board", Icon: "view_kanban", Placement: navigation.PlacementSideRail, AllowedRoles: agentRole, Order: 1},
		},
	}
}

func Notifications() navigation.StaticProvider {
	return navigation.StaticProvider{
		ID:    "notifications",
		Roles: allRoles,
		Dests: []navigation.Destination{
			{Route: "notifications/inbox", Title: "nav.notifications", Icon: "notifications", Placement: navigation.PlacementBottomBar, Order: 9},
			{Route: "notifications/center", Title: "nav.notifications", Icon: "notifications", Placement: navigation.PlacementSideRail, Order: 9},
		},
	}
}

// User is account administration.
func User() navigation.StaticProvider {
	return navigation.StaticProvider{
		ID:    "user",
		Main:  true,
		Roles: adminRole,
		Dests: []navigation.Destination{
			{Route: "user/directory", Title: "nav.users", Icon: "group", Placement: navigation.PlacementBottomBar, Order: 0},
			{Route: "user/roles", Title: "nav.users.roles", Icon: "admin_panel_settings", Placement: navigation.PlacementSideRail, Order: 0},
			{Route: "user/audit", Title: "nav.users.audit", Icon: "policy", Placement: navigation.PlacementDrawer, Order: 2},
		},
	}
}

// Profile holds settings reachable from the drawer and the password
// change screen, which is only ever navigated to directly.
func Profile() navigation.StaticProvider {
	return navigation.StaticProvider{
		ID:    "profile",
		Roles: allRoles,
		Dests: []navigation.Destination{
			{Route: "profile/settings", Title: "nav.profile", Icon: "person", Placement: navigation.PlacementDrawer, Order: 10},
			{Route: "profile/password", Title: "nav.profile.password", Placement: navigation.PlacementHidden},
		},
	}
}

// Package auth carries the authorization gate, session tokens and request
// identity. The gate is the single source of truth for which role reaches
// which view; no handler does its own role branching.
package auth

import "ptaregistry.org/internal/registry"

// View names one of the six dashboard modules.
type View string

const (
	ViewDashboard    View = "dashboard"
	ViewRegistration View = "registration"
	ViewSearch       View = "search"
	ViewPrinting     View = "printing"
	ViewReports      View = "reports"
	ViewUsers        View = "users"
)

// viewAccess is the static role table. CLERK deliberately has no reports
// access and VIEWER no registration or printing access.
var viewAccess = map[View]map[registry.Role]bool{
	ViewDashboard:    {registry.RoleAdmin: true, registry.RoleClerk: true, registry.RoleViewer: true},
	ViewRegistration: {registry.RoleAdmin: true, registry.RoleClerk: true},
	ViewSearch:       {registry.RoleAdmin: true, registry.RoleClerk: true, registry.RoleViewer: true},
	ViewPrinting:     {registry.RoleAdmin: true, registry.RoleClerk: true},
	ViewReports:      {registry.RoleAdmin: true, registry.RoleViewer: true},
	ViewUsers:        {registry.RoleAdmin: true},
}

// CanAccess reports whether the role may reach the view. Unknown views are
// denied for every role.
func CanAccess(role registry.Role, view View) bool {
	return viewAccess[view][role]
}

// CanDelete reports whether the role may fire irreversible deletes. This is
// gated independently of view access: a clerk can reach search but never
// sees delete controls there.
func CanDelete(role registry.Role) bool {
	return role == registry.RoleAdmin
}

// KnownView reports whether the view name exists at all.
func KnownView(view View) bool {
	_, ok := viewAccess[view]
	return ok
}

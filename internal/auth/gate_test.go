package auth

import (
	"testing"

	"ptaregistry.org/internal/registry"
)

func TestCanAccess(t *testing.T) {
	cases := []struct {
		role registry.Role
		view View
		want bool
	}{
		{registry.RoleAdmin, ViewDashboard, true},
		{registry.RoleAdmin, ViewRegistration, true},
		{registry.RoleAdmin, ViewSearch, true},
		{registry.RoleAdmin, ViewPrinting, true},
		{registry.RoleAdmin, ViewReports, true},
		{registry.RoleAdmin, ViewUsers, true},

		{registry.RoleClerk, ViewDashboard, true},
		{registry.RoleClerk, ViewRegistration, true},
		{registry.RoleClerk, ViewSearch, true},
		{registry.RoleClerk, ViewPrinting, true},
		{registry.RoleClerk, ViewReports, false},
		{registry.RoleClerk, ViewUsers, false},

		{registry.RoleViewer, ViewDashboard, true},
		{registry.RoleViewer, ViewRegistration, false},
		{registry.RoleViewer, ViewSearch, true},
		{registry.RoleViewer, ViewPrinting, false},
		{registry.RoleViewer, ViewReports, true},
		{registry.RoleViewer, ViewUsers, false},
	}
	for _, tc := range cases {
		if got := CanAccess(tc.role, tc.view); got != tc.want {
			t.Fatalf("CanAccess(%s, %s) = %v, want %v", tc.role, tc.view, got, tc.want)
		}
	}
}

func TestCanAccessUnknown(t *testing.T) {
	if CanAccess(registry.RoleAdmin, View("billing")) {
		t.Fatal("unknown view must be denied even for admin")
	}
	if CanAccess(registry.Role("SUPERUSER"), ViewDashboard) {
		t.Fatal("unknown role must be denied")
	}
}

func TestCanDelete(t *testing.T) {
	if !CanDelete(registry.RoleAdmin) {
		t.Fatal("admin must be able to delete")
	}
	if CanDelete(registry.RoleClerk) || CanDelete(registry.RoleViewer) {
		t.Fatal("only admin may delete")
	}
}

func TestKnownView(t *testing.T) {
	for _, v := range []View{ViewDashboard, ViewRegistration, ViewSearch, ViewPrinting, ViewReports, ViewUsers} {
		if !KnownView(v) {
			t.Fatalf("view %s should be known", v)
		}
	}
	if KnownView(View("billing")) {
		t.Fatal("unexpected view recognized")
	}
}

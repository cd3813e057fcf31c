package rbac

import "testing"

func TestRolePermissions(t *testing.T) {
	cases := []struct {
		role     Role
		action   Action
		resource string
		want     bool
	}{
		{RoleViewer, ActionRead, "users", true},
		{RoleViewer, ActionMutate, "users", false},
		{RoleSupport, ActionRead, "payments", true},
		{RoleSupport, ActionMutate, "complaints", true},
		{RoleSupport, ActionMutate, "users", false},
		{RoleAdmin, ActionMutate, "users", true},
		{RoleAdmin, ActionMutate, "settings", false},
		{RoleAdmin, ActionRead, "settings", true},
		{RoleAdmin, ActionAdmin, "settings", false},
		{RoleSuperadmin, ActionMutate, "settings", true},
		{RoleSuperadmin, ActionAdmin, "settings", true},
		{Role("ghost"), ActionRead, "users", false},
	}
	for _, tc := range cases {
		if got := Can(tc.role, tc.action, tc.resource); got != tc.want {
			t.Errorf("Can(%s, %s, %s) = %v, want %v", tc.role, tc.action, tc.resource, got, tc.want)
		}
	}
}

func TestNormalizeFallsBackToViewer(t *testing.T) {
	if got := Normalize("superadmin"); got != RoleSuperadmin {
		t.Fatalf("expected superadmin, got %s", got)
	}
	if got := Normalize("root"); got != RoleViewer {
		t.Fatalf("unknown role should normalize to viewer, got %s", got)
	}
}

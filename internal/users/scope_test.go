package users

import "testing"

func strPtr(s string) *string { return &s }

func TestScopeForRolesDefaultsToNational(t *testing.T) {
	scope, err := ScopeForRoles([]string{"Admin", "Editor"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scope.Kind != ScopeNational {
		t.Fatalf("expected national scope, got %v", scope.Kind)
	}
}

func TestScopeForRolesBroadestWins(t *testing.T) {
	scope, err := ScopeForRoles([]string{RoleSuburb, RoleNational, RoleCity}, strPtr("loc-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scope.Kind != ScopeNational {
		t.Fatalf("expected national scope, got %v", scope.Kind)
	}
	if scope.LocationID != "" {
		t.Fatalf("national scope must not carry a location, got %s", scope.LocationID)
	}
}

func TestScopeForRolesCity(t *testing.T) {
	scope, err := ScopeForRoles([]string{RoleCity, RoleSuburb}, strPtr("loc-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scope.Kind != ScopeCity || scope.LocationID != "loc-1" {
		t.Fatalf("expected city scope at loc-1, got %+v", scope)
	}
}

func TestScopeForRolesSuburb(t *testing.T) {
	scope, err := ScopeForRoles([]string{RoleSuburb}, strPtr("loc-2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scope.Kind != ScopeSuburb || scope.LocationID != "loc-2" {
		t.Fatalf("expected suburb scope at loc-2, got %+v", scope)
	}
}

func TestScopeForRolesGeographicRoleWithoutLocation(t *testing.T) {
	if _, err := ScopeForRoles([]string{RoleCity}, nil); err == nil {
		t.Fatal("expected error for city role without location")
	}
	if _, err := ScopeForRoles([]string{RoleSuburb}, nil); err == nil {
		t.Fatal("expected error for suburb role without location")
	}
}

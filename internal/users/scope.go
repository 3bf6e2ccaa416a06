package users

import "errors"

// ScopeKind selects how far a user listing may see across the location
// hierarchy.
type ScopeKind int

const (
	// ScopeNational applies no location filter.
	ScopeNational ScopeKind = iota
	// ScopeCity covers the requester's own location and its children.
	ScopeCity
	// ScopeSuburb covers the requester's own location only.
	ScopeSuburb
)

// Geographic role names that widen or narrow the listing scope.
const (
	RoleNational = "National"
	RoleCity     = "City"
	RoleSuburb   = "Suburb"
)

// ScopeFilter is the resolved, compiler-checked listing predicate. It is
// computed freshly per request from the requester's roles and own location,
// never cached.
type ScopeFilter struct {
	Kind       ScopeKind
	LocationID string
}

var errScopeWithoutLocation = errors.New("geographic role assigned but user has no location")

// ScopeForRoles resolves the filter for a requester. Broader scopes win when
// several geographic roles are held; a requester with no geographic role sees
// everything, matching the pre-scoping behavior.
func ScopeForRoles(roles []string, locationID *string) (ScopeFilter, error) {
	has := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		has[r] = struct{}{}
	}
	if _, ok := has[RoleNational]; ok {
		return ScopeFilter{Kind: ScopeNational}, nil
	}
	if _, ok := has[RoleCity]; ok {
		if locationID == nil {
			return ScopeFilter{}, errScopeWithoutLocation
		}
		return ScopeFilter{Kind: ScopeCity, LocationID: *locationID}, nil
	}
	if _, ok := has[RoleSuburb]; ok {
		if locationID == nil {
			return ScopeFilter{}, errScopeWithoutLocation
		}
		return ScopeFilter{Kind: ScopeSuburb, LocationID: *locationID}, nil
	}
	return ScopeFilter{Kind: ScopeNational}, nil
}

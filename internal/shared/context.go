package shared

import "context"

// Principal carries the authenticated identity and the claims snapshot taken
// from its token. Roles and Permissions reflect the grants at token issuance,
// not necessarily the current database state.
type Principal struct {
	ID          string
	Roles       []string
	Permissions []string
}

// HasAny reports whether the principal holds at least one of the actions.
func (p *Principal) HasAny(actions ...string) bool {
	if p == nil {
		return false
	}
	set := make(map[string]struct{}, len(p.Permissions))
	for _, a := range p.Permissions {
		set[a] = struct{}{}
	}
	for _, a := range actions {
		if _, ok := set[a]; ok {
			return true
		}
	}
	return false
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

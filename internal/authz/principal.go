package authz

import "context"

// Principal is the acting identity for a request, as supplied by the external
// authentication layer. Credentials are never parsed here; an absent or empty
// principal means the request is anonymous.
type Principal struct {
	UserID      string
	TenantID    int64
	Roles       []string
	Permissions []string
}

// IsAnonymous reports whether the principal carries no authenticated user.
func (p Principal) IsAnonymous() bool {
	return p.UserID == "" || p.UserID == AnonymousUserID
}

type principalKey struct{}

// WithPrincipal returns a context carrying p as the ambient principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext retrieves the ambient principal. The second return is
// false when the request never passed through principal resolution.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

package auth

import "context"

// Principal is the signed-in user as seen by handlers and guards.
type Principal struct {
	UserID      uint
	Name        string
	Email       string
	Role        string
	SessionID   string
	Permissions map[string]bool
}

// Can reports whether the principal holds perm.
func (p *Principal) Can(perm string) bool {
	return p != nil && p.Permissions[perm]
}

// SessionResolver turns verified claims into a principal, checking that the
// session row is live and the user is allowed in.
type SessionResolver interface {
	Resolve(ctx context.Context, claims *Claims) (*Principal, error)
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal, or nil for anonymous requests.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}

package identity

import (
	"context"
	"errors"
)

// ErrIdentityRequired is returned by RequireFromContext when no identity
// could be resolved for the request.
var ErrIdentityRequired = errors.New("no resolvable identity for request")

// unexported, collision-proof context keys
type userContextKeyType struct{}
type principalContextKeyType struct{}

var (
	userKey      = userContextKeyType{}
	principalKey = principalContextKeyType{}
)

// WithUser stores the resolved identity in the context. The auth middleware
// resolves once per request; every later consumer shares that single result.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// FromContext is the optional resolution entry point: the identity and
// whether one was resolved.
func FromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userKey).(*User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// RequireFromContext is the mandatory resolution entry point.
func RequireFromContext(ctx context.Context) (*User, error) {
	user, ok := FromContext(ctx)
	if !ok {
		return nil, ErrIdentityRequired
	}
	return user, nil
}

// WithPrincipal stores the request's authentication context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the request's authentication context, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

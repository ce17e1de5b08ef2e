package auth

import (
	"context"
)

var userCtxKey = &contextKey{"user"}
var identityCtxKey = &contextKey{"identity"}

type contextKey struct {
	name string
}

// WithContext sets the User in the given context
func WithContext(r context.Context, user *User) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the user from the context.
func FromContext(ctx context.Context) (*User, bool) {
	if ctx == nil {
		return nil, false
	}
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok && raw != nil
}

// WithIdentityContext sets the ExternalIdentity in the given context
func WithIdentityContext(r context.Context, identity ExternalIdentity) context.Context {
	return context.WithValue(r, identityCtxKey, identity)
}

// IdentityFromContext returns the identity the user was provisioned from
func IdentityFromContext(ctx context.Context) (ExternalIdentity, bool) {
	if ctx == nil {
		return ExternalIdentity{}, false
	}
	raw, ok := ctx.Value(identityCtxKey).(ExternalIdentity)
	return raw, ok
}

// ContextEnricher stores identity and user in the standard context so
// code below the router can reach them.
func ContextEnricher(c context.Context, identity ExternalIdentity, user *User) context.Context {
	return WithContext(WithIdentityContext(c, identity), user)
}

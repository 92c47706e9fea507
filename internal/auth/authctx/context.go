// Package authctx propagates the authenticated identity through the
// request context.
//
// Authentication is soft-fail: an anonymous request simply has no identity
// in its context. Handlers behind the RequireUser gate may assume one is
// present; everything else must check.
package authctx

import (
	"context"

	"github.com/kbukum/notekeeper/internal/user"
)

// Identity is the authentication result attached to a request: the
// resolved principal and the validated access token it arrived with.
type Identity struct {
	User  *user.User
	Token string
}

// contextKey is an unexported type to prevent collisions with other packages.
type contextKey struct{}

var identityKey = contextKey{}

// Set stores the identity in the context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// Get retrieves the identity from the context. The second return is false
// for anonymous requests.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	if !ok || id == nil || id.User == nil {
		return nil, false
	}
	return id, true
}

// MustGet retrieves the identity or panics. Use only behind the
// authorization gate, which guarantees an identity exists.
func MustGet(ctx context.Context) *Identity {
	id, ok := Get(ctx)
	if !ok {
		panic("authctx: no identity in context")
	}
	return id
}

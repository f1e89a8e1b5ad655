// Package auth carries the authenticated identity through request contexts.
// The session guard resolves the session once and hands handlers an explicit
// per-request value instead of ambient session state.
package auth

import "context"

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated staff identity for one request. Nothing
// beyond the username is tracked; there are no authorization levels.
type Identity struct {
	Username string
}

// WithIdentity stores the identity in the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext returns the identity and whether one is present.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

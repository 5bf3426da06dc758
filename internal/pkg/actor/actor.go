// Package actor carries the authenticated username through a request context.
package actor

import "context"

type contextKey string

const usernameKey = contextKey("actor.username")

// WithUsername returns a copy of ctx that records username as the acting user.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// Username returns the acting user recorded in ctx, if any.
func Username(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(usernameKey).(string)
	return u, ok && u != ""
}

// Package auth carries the verified caller identity through context.
//
// Tools never accept a user id as input: the acting user is always
// re-derived from the authenticated context so no cross-user mutation
// path exists.
package auth

import (
	"context"
	"errors"
)

// ErrUnauthenticated is returned when no verified identity is present.
// Non-retryable client error: callers must fail fast, before any data access.
var ErrUnauthenticated = errors.New("unauthenticated: no verified user identity")

type ctxKey struct{}

// WithUser returns a context carrying the verified user id.
// Set by the transport layer after token verification, never by tools.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserID extracts the verified user id from ctx.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Require returns the verified user id or ErrUnauthenticated.
func Require(ctx context.Context) (string, error) {
	id, ok := UserID(ctx)
	if !ok {
		return "", ErrUnauthenticated
	}
	return id, nil
}

// Package actor carries the acting member's ID through a request context so
// the storage layer can stamp audit columns without business logic touching
// them.
package actor

import "context"

type contextKey struct{}

// WithMember returns a context carrying the acting member's ID.
func WithMember(ctx context.Context, memberID uint) context.Context {
	return context.WithValue(ctx, contextKey{}, memberID)
}

// MemberFrom extracts the acting member's ID from the context.
// The second return value is false when no actor is attached
// (e.g. system bootstrap or tests).
func MemberFrom(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(contextKey{}).(uint)
	return id, ok
}

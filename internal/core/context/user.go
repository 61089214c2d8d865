// Package context carries request-scoped identity and trace information.
// Workflow operations receive the acting user id as an explicit parameter;
// this package only serves the HTTP boundary and logging.
package context

import (
	"context"

	"stockhouse/internal/core/id"
)

// UserContext holds the authenticated user for the current request.
type UserContext struct {
	UserID id.ID
	Email  string
	Role   string
}

// TraceContext holds request correlation identifiers.
type TraceContext struct {
	RequestID string
	TraceID   string
}

type userKey struct{}
type traceKey struct{}

// WithUser stores the authenticated user in context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// GetUser returns the authenticated user or nil.
func GetUser(ctx context.Context) *UserContext {
	if u, ok := ctx.Value(userKey{}).(*UserContext); ok {
		return u
	}
	return nil
}

// WithTrace stores trace identifiers in context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceKey{}, trace)
}

// GetTrace returns trace identifiers or nil.
func GetTrace(ctx context.Context) *TraceContext {
	if t, ok := ctx.Value(traceKey{}).(*TraceContext); ok {
		return t
	}
	return nil
}

package tool

import "context"

// UpdateFunc receives progress messages emitted while a tool runs, so the
// REPL can show what the navigator is doing between LLM calls.
type UpdateFunc func(ctx context.Context, message string)

type contextKey struct{}

// WithUpdate returns a context carrying the given UpdateFunc.
func WithUpdate(ctx context.Context, fn UpdateFunc) context.Context {
	return context.WithValue(ctx, contextKey{}, fn)
}

// Update posts a progress message to the UpdateFunc in ctx, if any.
func Update(ctx context.Context, message string) {
	if fn, ok := ctx.Value(contextKey{}).(UpdateFunc); ok {
		fn(ctx, message)
	}
}

// Package ctxutil carries request-scoped metadata through context. It has no
// internal dependencies so any layer may import it.
package ctxutil

import "context"

type actorKey struct{}

// WithActor tags the context with the actor recorded on audit-trail entries,
// e.g. "orchestrator" for pipeline writes or "operator" for CLI commands.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// Actor returns the actor tag, or "" when the context carries none.
func Actor(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok {
		return actor
	}
	return ""
}

package context

import (
	"context"

	"github.com/siportevent/siports/internal/session"
)

// Common context keys - use a struct to prevent conflicts
type contextKey struct {
	name string
}

var sessionKey = contextKey{"session"}

// ContextWithSession stores the signed in user's session (set by auth.RequireAuth)
func ContextWithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func ContextSession(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*session.Session)
	return s, ok && s != nil
}

package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession attaches the request's session so handlers and the CSRF
// check can reach it without threading it through every call.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext returns the session stored by the session middleware,
// or nil outside of it.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

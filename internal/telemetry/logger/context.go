package logger

import "context"

type ctxKey int

const (
	loggerKey ctxKey = iota
	sessionKey
)

// WithLogger returns a context carrying l.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// WithSessionID tags log records made through FromContext with the
// interactive shell session.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey, id)
}

// FromContext returns the logger carried by ctx, or fallback when there
// is none, with the session ID of ctx attached.
func FromContext(ctx context.Context, fallback Logger) Logger {
	l, ok := ctx.Value(loggerKey).(Logger)
	if !ok {
		l = fallback
	}
	if id, _ := ctx.Value(sessionKey).(string); id != "" {
		l = l.With("session_id", id)
	}
	return l
}

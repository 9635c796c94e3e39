package logging

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Attribute keys shared by every package.
const (
	FieldComponent     = "component"
	FieldCorrelationID = "correlation_id"
	FieldScopeID       = "scope_id"
	FieldActorID       = "actor_id"
	FieldCourt         = "court"
	FieldEventType     = "event_type"
	FieldError         = "error"
)

type contextKey int

const (
	correlationKey contextKey = iota
	scopeKey
)

// WithCorrelationID returns a context carrying id. An empty id is replaced by a fresh UUID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, correlationKey, id)
}

// CorrelationIDFromContext returns the correlation id attached to ctx.
func CorrelationIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(correlationKey).(string)
	return id, ok && id != ""
}

// WithScopeID attaches the chat scope to ctx for logging.
func WithScopeID(ctx context.Context, scopeID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, scopeKey, scopeID)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := CorrelationIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, id))
	}
	if scope, ok := ctx.Value(scopeKey).(string); ok && scope != "" {
		fields = append(fields, slog.String(FieldScopeID, scope))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, len(fields))
	for i, field := range fields {
		args[i] = field
	}
	return logger.With(args...)
}

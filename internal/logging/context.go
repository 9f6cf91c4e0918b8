package logging

import (
	"context"
	"log/slog"

	"vibecut/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRenderID is the standardized structured logging key for render job identifiers.
	FieldRenderID = "render_id"
	// FieldRequestID is the standardized structured logging key for HTTP request identifiers.
	FieldRequestID = "request_id"
	// FieldEventType classifies a log line for filtering (e.g. "clip_dropped").
	FieldEventType = "event_type"
	// FieldErrorHint carries the suggested next step for warnings and errors.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldDecisionType names the policy a decision log line reports on.
	FieldDecisionType = "decision_type"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.RenderIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRenderID, id))
	}
	if component, ok := services.ComponentFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldComponent, component))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRequestID, rid))
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
	return logger.With(Args(fields...)...)
}

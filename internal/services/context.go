package services

import "context"

type contextKey string

const (
	renderIDKey  contextKey = "render_id"
	componentKey contextKey = "component"
	requestIDKey contextKey = "request_id"
)

// WithRenderID annotates context with the render job identifier.
func WithRenderID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, renderIDKey, id)
}

// RenderIDFromContext extracts the render job identifier if present.
func RenderIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(renderIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithComponent annotates context with the pipeline component currently running.
func WithComponent(ctx context.Context, component string) context.Context {
	if component == "" {
		return ctx
	}
	return context.WithValue(ctx, componentKey, component)
}

// ComponentFromContext returns the component name if present.
func ComponentFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(componentKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

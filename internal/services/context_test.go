package services_test

import (
	"context"
	"testing"

	"vibecut/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRenderID(ctx, "render-1")
	ctx = services.WithComponent(ctx, "compiler")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.RenderIDFromContext(ctx); !ok || id != "render-1" {
		t.Fatalf("unexpected render id: %v %v", id, ok)
	}
	if component, ok := services.ComponentFromContext(ctx); !ok || component != "compiler" {
		t.Fatalf("unexpected component: %v %v", component, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithComponent(ctx, "")
	ctx = services.WithRenderID(ctx, "")
	if _, ok := services.ComponentFromContext(ctx); ok {
		t.Fatal("expected no component value")
	}
	if _, ok := services.RenderIDFromContext(ctx); ok {
		t.Fatal("expected no render id value")
	}
}

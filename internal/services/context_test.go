package services_test

import (
	"context"
	"testing"

	"phrasesync/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithSessionID(ctx, "session-1")
	ctx = services.WithScript(ctx, "example")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.SessionIDFromContext(ctx); !ok || id != "session-1" {
		t.Fatalf("unexpected session id: %v %v", id, ok)
	}
	if name, ok := services.ScriptFromContext(ctx); !ok || name != "example" {
		t.Fatalf("unexpected script: %v %v", name, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithScript(ctx, "")
	ctx = services.WithSessionID(ctx, "")
	if _, ok := services.ScriptFromContext(ctx); ok {
		t.Fatal("expected no script value")
	}
	if _, ok := services.SessionIDFromContext(ctx); ok {
		t.Fatal("expected no session value")
	}
}

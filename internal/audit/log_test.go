package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"clierp.org/internal/auth"
	"clierp.org/internal/obs"
)

func TestLogEvent(t *testing.T) {
	logger := obs.Logger()
	original := logger.Writer()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(original)

	ctx := context.Background()
	ctx = WithCorrelationID(ctx, "corr-123")
	ctx = auth.ContextWithIdentity(ctx, auth.Identity{ID: 42, Username: "admin", Role: auth.RoleAdmin})

	if err := LogEvent(ctx, "inventory.stock.adjust", map[string]any{"product_id": 7}); err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}

	line := buf.String()
	if line == "" {
		t.Fatal("expected log output")
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log not valid JSON: %v", err)
	}
	if entry["type"] != "audit" {
		t.Fatalf("unexpected type: %v", entry["type"])
	}
	if entry["action"] != "inventory.stock.adjust" {
		t.Fatalf("unexpected action: %v", entry["action"])
	}
	if entry["correlation_id"] != "corr-123" {
		t.Fatalf("unexpected correlation id: %v", entry["correlation_id"])
	}
	if entry["actor"] != "admin" || entry["actor_role"] != "admin" {
		t.Fatalf("actor missing: %v", entry)
	}
	fields, ok := entry["fields"].(map[string]any)
	if !ok || fields["product_id"] != float64(7) {
		t.Fatalf("fields missing or incorrect: %v", entry["fields"])
	}
}

func TestWithCorrelationIDGeneratesWhenEmpty(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "")
	if CorrelationIDFromContext(ctx) == "" {
		t.Fatal("expected generated correlation id")
	}
}

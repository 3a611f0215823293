// Package audit emits append-only JSON audit lines for privileged actions.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"clierp.org/internal/auth"
	"clierp.org/internal/ids"
	"clierp.org/internal/obs"
)

type ctxKey string

const correlationIDKey ctxKey = "audit_correlation_id"

// WithCorrelationID attaches a correlation identifier for audit logging.
// An empty id generates a fresh one.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	id = strings.TrimSpace(id)
	if id == "" {
		id = ids.New()
	}
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext returns the correlation id if one was attached.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(correlationIDKey).(string); ok {
		return v
	}
	return ""
}

// LogEvent writes an audit entry enriched with the acting identity and
// correlation id from the context.
func LogEvent(ctx context.Context, action string, fields map[string]any) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return errors.New("audit action is required")
	}
	entry := map[string]any{
		"ts":     time.Now().UTC().Format(time.RFC3339Nano),
		"type":   "audit",
		"action": action,
	}
	if cid := CorrelationIDFromContext(ctx); cid != "" {
		entry["correlation_id"] = cid
	}
	if identity, ok := auth.IdentityFromContext(ctx); ok {
		entry["actor_id"] = identity.ID
		entry["actor"] = identity.Username
		entry["actor_role"] = identity.Role.String()
	}
	if len(fields) > 0 {
		copied := make(map[string]any, len(fields))
		for k, v := range fields {
			copied[k] = v
		}
		entry["fields"] = copied
	} else {
		entry["fields"] = map[string]any{}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	obs.Logger().Println(string(data))
	return nil
}

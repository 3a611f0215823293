// Package event implements the in-process domain event bus. Writes publish
// facts after commit; independently registered handlers consume them without
// coupling side effects to the originating operation.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Event types published by the business modules.
const (
	TypeStockLevelChanged     = "inventory.stock_level_changed"
	TypeLowStockAlert         = "inventory.low_stock_alert"
	TypePurchaseOrderApproved = "purchase.order_approved"
)

// Event is an immutable fact announced after a state change.
type Event struct {
	Type          string
	EntityID      string
	CorrelationID uuid.UUID
	OccurredAt    time.Time
	Payload       map[string]any
}

// New builds an event with a fresh correlation id and timestamp.
func New(eventType, entityID string, payload map[string]any) Event {
	return Event{
		Type:          eventType,
		EntityID:      entityID,
		CorrelationID: uuid.New(),
		OccurredAt:    time.Now().UTC(),
		Payload:       payload,
	}
}

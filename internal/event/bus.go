package event

import (
	"context"
	"sync"

	"clierp.org/internal/obs"
)

// Handler consumes published events.
type Handler interface {
	Name() string
	CanHandle(eventType string) bool
	Handle(ctx context.Context, evt Event) error
}

// Bus fan-outs events to handlers registered under the event's type tag.
// It is constructed explicitly and injected; there is no hidden global.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// RegisterHandler subscribes a handler under one or more event types.
// Handlers sharing a type are invoked in registration order.
func (b *Bus) RegisterHandler(eventTypes []string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range eventTypes {
		b.handlers[t] = append(b.handlers[t], h)
	}
}

// Publish delivers the event to every matching handler. A handler failure is
// logged and does not prevent delivery to the rest; Publish reports success
// once every handler has been attempted.
func (b *Bus) Publish(ctx context.Context, evt Event) error {
	b.mu.RLock()
	subscribed := append([]Handler(nil), b.handlers[evt.Type]...)
	b.mu.RUnlock()

	obs.CountEvent(evt.Type)
	for _, h := range subscribed {
		if !h.CanHandle(evt.Type) {
			continue
		}
		if err := h.Handle(ctx, evt); err != nil {
			obs.CountHandlerFailure(evt.Type)
			obs.Error("event handler failed", map[string]any{
				"handler": h.Name(),
				"type":    evt.Type,
				"entity":  evt.EntityID,
				"error":   err.Error(),
			})
		}
	}
	return nil
}

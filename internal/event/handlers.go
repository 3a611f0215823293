package event

import (
	"context"

	"clierp.org/internal/obs"
)

// LowStockAlertHandler logs low-stock alerts so the purchasing team can act.
type LowStockAlertHandler struct{}

func (LowStockAlertHandler) Name() string { return "low_stock_alert" }

func (LowStockAlertHandler) CanHandle(eventType string) bool {
	return eventType == TypeLowStockAlert
}

func (LowStockAlertHandler) Handle(ctx context.Context, evt Event) error {
	obs.Warn("low stock alert", map[string]any{
		"product_id":    evt.EntityID,
		"current_level": evt.Payload["current_level"],
		"min_level":     evt.Payload["min_level"],
		"product_name":  evt.Payload["product_name"],
	})
	return nil
}

// PurchaseOrderNotifier announces approved purchase orders.
type PurchaseOrderNotifier struct{}

func (PurchaseOrderNotifier) Name() string { return "purchase_order_notifier" }

func (PurchaseOrderNotifier) CanHandle(eventType string) bool {
	return eventType == TypePurchaseOrderApproved
}

func (PurchaseOrderNotifier) Handle(ctx context.Context, evt Event) error {
	obs.Info("purchase order approved", map[string]any{
		"order_id":     evt.EntityID,
		"po_number":    evt.Payload["po_number"],
		"total_amount": evt.Payload["total_amount"],
		"approved_by":  evt.Payload["approved_by"],
	})
	return nil
}

// NewDefaultBus returns a bus with the built-in handlers registered.
func NewDefaultBus() *Bus {
	bus := NewBus()
	bus.RegisterHandler([]string{TypeLowStockAlert}, LowStockAlertHandler{})
	bus.RegisterHandler([]string{TypePurchaseOrderApproved}, PurchaseOrderNotifier{})
	return bus
}

// Package inventory manages products, stock levels and purchase orders.
package inventory

import "time"

// Product is a stocked item. Version backs the optimistic lock on stock
// updates; amounts are integer cents.
type Product struct {
	ID           int64
	SKU          string
	Name         string
	PriceCents   int64
	CurrentStock int
	MinStock     int
	Version      int
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LowStock reports whether the product sits at or below its minimum level.
func (p Product) LowStock() bool { return p.CurrentStock <= p.MinStock }

// StockMovement is the audit row written alongside every stock adjustment.
type StockMovement struct {
	ID            string
	ProductID     int64
	Delta         int
	ReferenceType string
	ReferenceID   int64
	Notes         string
	MovedBy       *int64
	CreatedAt     time.Time
}

// Purchase order statuses.
const (
	POStatusPending  = "pending"
	POStatusApproved = "approved"
	POStatusReceived = "received"
	POStatusCanceled = "canceled"
)

// PurchaseOrder tracks an order against a supplier.
type PurchaseOrder struct {
	ID               int64
	PONumber         string
	SupplierID       int64
	TotalAmountCents int64
	Status           string
	ApprovedBy       *int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

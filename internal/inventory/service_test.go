package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"clierp.org/internal/auth"
	"clierp.org/internal/erperr"
	"clierp.org/internal/event"
	"clierp.org/internal/pagination"
)

type capturingHandler struct {
	types []string
	seen  []event.Event
}

func (h *capturingHandler) Name() string { return "capture" }

func (h *capturingHandler) CanHandle(eventType string) bool {
	for _, t := range h.types {
		if t == eventType {
			return true
		}
	}
	return false
}

func (h *capturingHandler) Handle(ctx context.Context, evt event.Event) error {
	h.seen = append(h.seen, evt)
	return nil
}

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock, *capturingHandler) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	capture := &capturingHandler{types: []string{
		event.TypeStockLevelChanged,
		event.TypeLowStockAlert,
		event.TypePurchaseOrderApproved,
	}}
	bus := event.NewBus()
	bus.RegisterHandler(capture.types, capture)
	return NewService(db, bus), mock, capture
}

func TestAdjustStockCommitsAndPublishes(t *testing.T) {
	svc, mock, capture := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select sku, name, current_stock, min_stock, version from products").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"sku", "name", "current_stock", "min_stock", "version"}).
			AddRow("WID-1", "Widget", 50, 10, 3))
	mock.ExpectExec("update products set current_stock").
		WithArgs(-5, int64(7), 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("insert into stock_movements").
		WithArgs(sqlmock.AnyArg(), int64(7), -5, "sale", int64(99), "", int64(42)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	ctx := auth.ContextWithIdentity(context.Background(), auth.Identity{
		ID: 42, Username: "clerk", Role: auth.RoleEmployee,
	})
	p, err := svc.AdjustStock(ctx, AdjustStockInput{
		ProductID:     7,
		Delta:         -5,
		ReferenceType: "sale",
		ReferenceID:   99,
	})
	if err != nil {
		t.Fatalf("adjust stock: %v", err)
	}
	if p.CurrentStock != 45 || p.Version != 4 {
		t.Fatalf("unexpected product state: stock=%d version=%d", p.CurrentStock, p.Version)
	}
	if len(capture.seen) != 1 {
		t.Fatalf("expected 1 event, got %d", len(capture.seen))
	}
	evt := capture.seen[0]
	if evt.Type != event.TypeStockLevelChanged || evt.EntityID != "7" {
		t.Fatalf("unexpected event %s for %s", evt.Type, evt.EntityID)
	}
	if evt.Payload["new_level"] != 45 {
		t.Fatalf("unexpected new_level %v", evt.Payload["new_level"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAdjustStockBelowMinPublishesLowStockAlert(t *testing.T) {
	svc, mock, capture := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select sku, name, current_stock, min_stock, version from products").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"sku", "name", "current_stock", "min_stock", "version"}).
			AddRow("BLT-9", "Bolt", 12, 10, 1))
	mock.ExpectExec("update products set current_stock").
		WithArgs(-4, int64(3), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("insert into stock_movements").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if _, err := svc.AdjustStock(context.Background(), AdjustStockInput{ProductID: 3, Delta: -4}); err != nil {
		t.Fatalf("adjust stock: %v", err)
	}
	if len(capture.seen) != 2 {
		t.Fatalf("expected 2 events, got %d", len(capture.seen))
	}
	alert := capture.seen[1]
	if alert.Type != event.TypeLowStockAlert {
		t.Fatalf("second event is %s, want low stock alert", alert.Type)
	}
	if alert.Payload["current_level"] != 8 || alert.Payload["min_level"] != 10 {
		t.Fatalf("unexpected alert payload %v", alert.Payload)
	}
}

func TestAdjustStockStaleVersionRollsBack(t *testing.T) {
	svc, mock, capture := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select sku, name, current_stock, min_stock, version from products").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"sku", "name", "current_stock", "min_stock", "version"}).
			AddRow("WID-1", "Widget", 50, 10, 4))
	mock.ExpectExec("update products set current_stock").
		WithArgs(10, int64(7), 3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.AdjustStock(context.Background(), AdjustStockInput{
		ProductID:       7,
		Delta:           10,
		ExpectedVersion: 3,
	})
	if !errors.Is(err, erperr.ErrConcurrency) {
		t.Fatalf("expected concurrency error, got %v", err)
	}
	if len(capture.seen) != 0 {
		t.Fatalf("no events expected after rollback, got %d", len(capture.seen))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAdjustStockInsufficientStock(t *testing.T) {
	svc, mock, capture := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select sku, name, current_stock, min_stock, version from products").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"sku", "name", "current_stock", "min_stock", "version"}).
			AddRow("WID-1", "Widget", 3, 10, 1))
	mock.ExpectRollback()

	_, err := svc.AdjustStock(context.Background(), AdjustStockInput{ProductID: 7, Delta: -5})
	if !errors.Is(err, erperr.ErrBusiness) {
		t.Fatalf("expected business rule error, got %v", err)
	}
	if len(capture.seen) != 0 {
		t.Fatalf("no events expected, got %d", len(capture.seen))
	}
}

func TestAdjustStockZeroDelta(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.AdjustStock(context.Background(), AdjustStockInput{ProductID: 1}); !errors.Is(err, erperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestApprovePurchaseOrderPublishes(t *testing.T) {
	svc, mock, capture := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select id, po_number, supplier_id, total_amount_cents, status from purchase_orders").
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "po_number", "supplier_id", "total_amount_cents", "status"}).
			AddRow(12, "PO-XYZ", 4, 150000, POStatusPending))
	mock.ExpectExec("update purchase_orders set status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ctx := auth.ContextWithIdentity(context.Background(), auth.Identity{
		ID: 2, Username: "boss", Role: auth.RoleManager,
	})
	po, err := svc.ApprovePurchaseOrder(ctx, 12)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if po.Status != POStatusApproved || po.ApprovedBy == nil || *po.ApprovedBy != 2 {
		t.Fatalf("unexpected order state: %+v", po)
	}
	if len(capture.seen) != 1 || capture.seen[0].Type != event.TypePurchaseOrderApproved {
		t.Fatalf("expected one approval event, got %v", capture.seen)
	}
	if capture.seen[0].Payload["approved_by"] != "boss" {
		t.Fatalf("unexpected approver %v", capture.seen[0].Payload["approved_by"])
	}
}

func TestApprovePurchaseOrderRejectsNonPending(t *testing.T) {
	svc, mock, capture := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select id, po_number, supplier_id, total_amount_cents, status from purchase_orders").
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "po_number", "supplier_id", "total_amount_cents", "status"}).
			AddRow(12, "PO-XYZ", 4, 150000, POStatusApproved))
	mock.ExpectRollback()

	_, err := svc.ApprovePurchaseOrder(context.Background(), 12)
	if !errors.Is(err, erperr.ErrBusiness) {
		t.Fatalf("expected business rule error, got %v", err)
	}
	if len(capture.seen) != 0 {
		t.Fatalf("no events expected, got %d", len(capture.seen))
	}
}

func TestCreateProduct(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery("insert into products").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(41))

	p, err := svc.CreateProduct(context.Background(), CreateProductInput{
		SKU: "WID-1", Name: "Widget", PriceCents: 599, InitialStock: 100, MinStock: 10,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if p.ID != 41 || p.Version != 1 || !p.Active {
		t.Fatalf("unexpected product %+v", p)
	}
}

func TestCreateProductValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.CreateProduct(context.Background(), CreateProductInput{Name: "x"}); !errors.Is(err, erperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.CreateProduct(context.Background(), CreateProductInput{SKU: "a", Name: "x", PriceCents: -1}); !errors.Is(err, erperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListProducts(t *testing.T) {
	svc, mock, _ := newTestService(t)

	now := time.Now()
	mock.ExpectQuery(`select count\(\*\) from products`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("select id, sku, name, price_cents").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "sku", "name", "price_cents", "current_stock", "min_stock",
			"version", "active", "created_at", "updated_at"}).
			AddRow(1, "A-1", "Alpha", 100, 5, 1, 1, true, now, now).
			AddRow(2, "B-2", "Beta", 200, 8, 2, 1, true, now, now))

	res, err := svc.ListProducts(context.Background(), pagination.Params{Page: 1, PerPage: 20})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Items) != 2 || res.Total != 2 || res.TotalPages != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

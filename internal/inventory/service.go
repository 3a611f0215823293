package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"clierp.org/internal/auth"
	"clierp.org/internal/dbtx"
	"clierp.org/internal/erperr"
	"clierp.org/internal/event"
	"clierp.org/internal/ids"
	"clierp.org/internal/pagination"
)

// Service runs inventory operations against the database and publishes
// domain events after each committed change.
type Service struct {
	db  *sql.DB
	bus *event.Bus
}

func NewService(db *sql.DB, bus *event.Bus) *Service {
	return &Service{db: db, bus: bus}
}

// CreateProductInput carries the fields for a new product.
type CreateProductInput struct {
	SKU          string
	Name         string
	PriceCents   int64
	InitialStock int
	MinStock     int
}

func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (*Product, error) {
	if strings.TrimSpace(in.SKU) == "" || strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: sku and name are required", erperr.ErrValidation)
	}
	if in.PriceCents < 0 || in.InitialStock < 0 || in.MinStock < 0 {
		return nil, fmt.Errorf("%w: negative amounts are not allowed", erperr.ErrValidation)
	}
	p := &Product{
		SKU:          strings.TrimSpace(in.SKU),
		Name:         strings.TrimSpace(in.Name),
		PriceCents:   in.PriceCents,
		CurrentStock: in.InitialStock,
		MinStock:     in.MinStock,
		Version:      1,
		Active:       true,
	}
	err := s.db.QueryRowContext(ctx,
		`insert into products (sku, name, price_cents, current_stock, min_stock, version, active)
		 values ($1, $2, $3, $4, $5, 1, true) returning id`,
		p.SKU, p.Name, p.PriceCents, p.CurrentStock, p.MinStock,
	).Scan(&p.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: create product: %v", erperr.ErrDatabase, err)
	}
	return p, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := s.db.QueryRowContext(ctx,
		`select id, sku, name, price_cents, current_stock, min_stock, version, active, created_at, updated_at
		 from products where id = $1`, id,
	).Scan(&p.ID, &p.SKU, &p.Name, &p.PriceCents, &p.CurrentStock, &p.MinStock,
		&p.Version, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: product %d", erperr.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get product: %v", erperr.ErrDatabase, err)
	}
	return &p, nil
}

func (s *Service) ListProducts(ctx context.Context, params pagination.Params) (pagination.Result[Product], error) {
	params = params.Normalize()
	var zero pagination.Result[Product]

	var total int
	if err := s.db.QueryRowContext(ctx,
		`select count(*) from products where active = true`).Scan(&total); err != nil {
		return zero, fmt.Errorf("%w: count products: %v", erperr.ErrDatabase, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`select id, sku, name, price_cents, current_stock, min_stock, version, active, created_at, updated_at
		 from products where active = true order by id limit $1 offset $2`,
		params.PerPage, params.Offset())
	if err != nil {
		return zero, fmt.Errorf("%w: list products: %v", erperr.ErrDatabase, err)
	}
	defer rows.Close()

	var items []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.PriceCents, &p.CurrentStock,
			&p.MinStock, &p.Version, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return zero, fmt.Errorf("%w: scan product: %v", erperr.ErrDatabase, err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return zero, fmt.Errorf("%w: list products: %v", erperr.ErrDatabase, err)
	}
	return pagination.NewResult(items, total, params), nil
}

// StockUpdateOperation applies a stock delta with an optimistic version
// check. It is the first operation of every stock adjustment unit of work.
type StockUpdateOperation struct {
	ProductID       int64
	Delta           int
	ExpectedVersion int
}

func (op StockUpdateOperation) Apply(ctx context.Context, tx *sql.Tx) error {
	return dbtx.ExecVersioned(ctx, tx,
		`update products set current_stock = current_stock + $1, version = version + 1, updated_at = now()
		 where id = $2 and version = $3`,
		op.Delta, op.ProductID, op.ExpectedVersion)
}

// AdjustStockInput describes one stock adjustment. ExpectedVersion of zero
// means "whatever version the row has right now".
type AdjustStockInput struct {
	ProductID       int64
	Delta           int
	ReferenceType   string
	ReferenceID     int64
	Notes           string
	ExpectedVersion int
}

// AdjustStock applies the delta and its movement audit row in one
// transaction. The movement records the acting user from the context
// identity when present. Events are published only after the commit
// succeeds.
func (s *Service) AdjustStock(ctx context.Context, in AdjustStockInput) (*Product, error) {
	if in.Delta == 0 {
		return nil, fmt.Errorf("%w: stock delta must be non-zero", erperr.ErrValidation)
	}
	var movedBy *int64
	if id, ok := auth.IdentityFromContext(ctx); ok {
		movedBy = &id.ID
	}

	var after Product
	err := dbtx.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		var cur Product
		err := tx.QueryRowContext(ctx,
			`select sku, name, current_stock, min_stock, version from products where id = $1 for update`,
			in.ProductID,
		).Scan(&cur.SKU, &cur.Name, &cur.CurrentStock, &cur.MinStock, &cur.Version)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: product %d", erperr.ErrNotFound, in.ProductID)
		}
		if err != nil {
			return fmt.Errorf("%w: load product: %v", erperr.ErrDatabase, err)
		}

		newLevel := cur.CurrentStock + in.Delta
		if newLevel < 0 {
			return fmt.Errorf("%w: insufficient stock for product %d (have %d, delta %d)",
				erperr.ErrBusiness, in.ProductID, cur.CurrentStock, in.Delta)
		}
		version := in.ExpectedVersion
		if version == 0 {
			version = cur.Version
		}

		uow := dbtx.NewUnitOfWork()
		uow.Add(StockUpdateOperation{ProductID: in.ProductID, Delta: in.Delta, ExpectedVersion: version})
		uow.Add(dbtx.OperationFunc(func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx,
				`insert into stock_movements (id, product_id, delta, reference_type, reference_id, notes, moved_by)
				 values ($1, $2, $3, $4, $5, $6, $7)`,
				ids.New(), in.ProductID, in.Delta, in.ReferenceType, in.ReferenceID, in.Notes, movedBy)
			if err != nil {
				return fmt.Errorf("%w: record stock movement: %v", erperr.ErrDatabase, err)
			}
			return nil
		}))
		if err := uow.Execute(ctx, tx); err != nil {
			return err
		}

		after = cur
		after.ID = in.ProductID
		after.CurrentStock = newLevel
		after.Version = version + 1
		return nil
	})
	if err != nil {
		return nil, err
	}

	entityID := strconv.FormatInt(in.ProductID, 10)
	s.bus.Publish(ctx, event.New(event.TypeStockLevelChanged, entityID, map[string]any{
		"delta":          in.Delta,
		"new_level":      after.CurrentStock,
		"reference_type": in.ReferenceType,
	}))
	if after.LowStock() {
		s.bus.Publish(ctx, event.New(event.TypeLowStockAlert, entityID, map[string]any{
			"product_name":  after.Name,
			"current_level": after.CurrentStock,
			"min_level":     after.MinStock,
		}))
	}
	return &after, nil
}

func (s *Service) CreatePurchaseOrder(ctx context.Context, supplierID, totalAmountCents int64) (*PurchaseOrder, error) {
	if totalAmountCents <= 0 {
		return nil, fmt.Errorf("%w: order amount must be positive", erperr.ErrValidation)
	}
	po := &PurchaseOrder{
		PONumber:         "PO-" + ids.New(),
		SupplierID:       supplierID,
		TotalAmountCents: totalAmountCents,
		Status:           POStatusPending,
	}
	err := s.db.QueryRowContext(ctx,
		`insert into purchase_orders (po_number, supplier_id, total_amount_cents, status)
		 values ($1, $2, $3, $4) returning id`,
		po.PONumber, po.SupplierID, po.TotalAmountCents, po.Status,
	).Scan(&po.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: create purchase order: %v", erperr.ErrDatabase, err)
	}
	return po, nil
}

// ApprovePurchaseOrder moves a pending order to approved and announces it.
// The approver is taken from the context identity when present.
func (s *Service) ApprovePurchaseOrder(ctx context.Context, orderID int64) (*PurchaseOrder, error) {
	var approverID *int64
	var approverName string
	if id, ok := auth.IdentityFromContext(ctx); ok {
		approverID = &id.ID
		approverName = id.Username
	}

	var po PurchaseOrder
	err := dbtx.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`select id, po_number, supplier_id, total_amount_cents, status from purchase_orders where id = $1 for update`,
			orderID,
		).Scan(&po.ID, &po.PONumber, &po.SupplierID, &po.TotalAmountCents, &po.Status)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: purchase order %d", erperr.ErrNotFound, orderID)
		}
		if err != nil {
			return fmt.Errorf("%w: load purchase order: %v", erperr.ErrDatabase, err)
		}
		if po.Status != POStatusPending {
			return fmt.Errorf("%w: purchase order %s is %s, only pending orders can be approved",
				erperr.ErrBusiness, po.PONumber, po.Status)
		}
		if _, err := tx.ExecContext(ctx,
			`update purchase_orders set status = $1, approved_by = $2, updated_at = now() where id = $3`,
			POStatusApproved, approverID, orderID); err != nil {
			return fmt.Errorf("%w: approve purchase order: %v", erperr.ErrDatabase, err)
		}
		po.Status = POStatusApproved
		po.ApprovedBy = approverID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, event.New(event.TypePurchaseOrderApproved, strconv.FormatInt(po.ID, 10), map[string]any{
		"po_number":    po.PONumber,
		"total_amount": po.TotalAmountCents,
		"approved_by":  approverName,
	}))
	return &po, nil
}

// Stats is a coarse inventory summary for the CLI dashboard.
type Stats struct {
	ProductCount    int
	TotalValueCents int64
	LowStockCount   int
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`select count(*),
		        coalesce(sum(current_stock * price_cents), 0),
		        count(*) filter (where current_stock <= min_stock)
		 from products where active = true`,
	).Scan(&st.ProductCount, &st.TotalValueCents, &st.LowStockCount)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: inventory stats: %v", erperr.ErrDatabase, err)
	}
	return st, nil
}

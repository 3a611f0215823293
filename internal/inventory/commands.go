package inventory

import (
	"context"
	"fmt"
	"io"

	"clierp.org/internal/auth"
	"clierp.org/internal/command"
	"clierp.org/internal/pagination"
)

// Commands exposes the inventory operations through the dispatcher.
// Human-readable output goes to out.
func Commands(svc *Service, out io.Writer) []command.Command {
	return []command.Command{
		command.New("inv.create-product", "register a new product",
			func(ctx context.Context, req command.Request) error {
				r, err := command.As[command.CreateProductRequest](req)
				if err != nil {
					return err
				}
				p, err := svc.CreateProduct(ctx, CreateProductInput{
					SKU:          r.SKU,
					Name:         r.Name,
					PriceCents:   r.Price,
					InitialStock: r.InitialStock,
					MinStock:     r.MinStock,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "product %d created: %s (%s)\n", p.ID, p.Name, p.SKU)
				return nil
			}, command.RequireRole(auth.RoleSupervisor)),

		command.New("inv.adjust-stock", "apply a stock delta with audit trail",
			func(ctx context.Context, req command.Request) error {
				r, err := command.As[command.AdjustStockRequest](req)
				if err != nil {
					return err
				}
				p, err := svc.AdjustStock(ctx, AdjustStockInput{
					ProductID:       r.ProductID,
					Delta:           r.Delta,
					ReferenceType:   r.ReferenceType,
					ReferenceID:     r.ReferenceID,
					Notes:           r.Notes,
					ExpectedVersion: r.ExpectedVersion,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "product %d stock is now %d\n", p.ID, p.CurrentStock)
				return nil
			}, command.RequireRole(auth.RoleEmployee)),

		command.New("inv.show", "show one product",
			func(ctx context.Context, req command.Request) error {
				r, err := command.As[command.ProductRequest](req)
				if err != nil {
					return err
				}
				p, err := svc.GetProduct(ctx, r.ProductID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d\t%s\t%s\tstock=%d min=%d price=%d\n",
					p.ID, p.SKU, p.Name, p.CurrentStock, p.MinStock, p.PriceCents)
				return nil
			}),

		command.New("inv.list", "list active products",
			func(ctx context.Context, req command.Request) error {
				r, err := command.As[command.ListRequest](req)
				if err != nil {
					return err
				}
				res, err := svc.ListProducts(ctx, pagination.Params{Page: r.Page, PerPage: r.PerPage})
				if err != nil {
					return err
				}
				for _, p := range res.Items {
					fmt.Fprintf(out, "%d\t%s\t%s\tstock=%d\n", p.ID, p.SKU, p.Name, p.CurrentStock)
				}
				fmt.Fprintf(out, "page %d/%d (%d products)\n", res.Page, res.TotalPages, res.Total)
				return nil
			}),

		command.New("inv.po-create", "open a purchase order",
			func(ctx context.Context, req command.Request) error {
				r, err := command.As[command.CreatePurchaseOrderRequest](req)
				if err != nil {
					return err
				}
				po, err := svc.CreatePurchaseOrder(ctx, r.SupplierID, r.TotalAmount)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "purchase order %s created (id %d)\n", po.PONumber, po.ID)
				return nil
			}, command.RequireRole(auth.RoleSupervisor)),

		command.New("inv.po-approve", "approve a pending purchase order",
			func(ctx context.Context, req command.Request) error {
				r, err := command.As[command.ApprovePurchaseOrderRequest](req)
				if err != nil {
					return err
				}
				po, err := svc.ApprovePurchaseOrder(ctx, r.OrderID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "purchase order %s approved\n", po.PONumber)
				return nil
			}, command.RequireRole(auth.RoleManager)),

		command.New("inv.stats", "inventory summary",
			func(ctx context.Context, req command.Request) error {
				st, err := svc.Stats(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "products=%d total_value=%d low_stock=%d\n",
					st.ProductCount, st.TotalValueCents, st.LowStockCount)
				return nil
			}),
	}
}

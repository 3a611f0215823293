package crm

import (
	"context"
	"fmt"
	"io"

	"clierp.org/internal/command"
	"clierp.org/internal/pagination"
)

// Commands exposes the customer operations through the dispatcher.
func Commands(svc *Service, out io.Writer) []command.Command {
	return []command.Command{
		command.New("crm.create-customer", "register a customer as a lead",
			func(ctx context.Context, req command.Request) error {
				r, err := command.As[command.CreateCustomerRequest](req)
				if err != nil {
					return err
				}
				c, err := svc.CreateCustomer(ctx, CreateCustomerInput{
					Name: r.Name, Email: r.Email, Phone: r.Phone,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "customer %d created: %s\n", c.ID, c.Name)
				return nil
			}),

		command.New("crm.list", "list customers with optional filters",
			func(ctx context.Context, req command.Request) error {
				r, err := command.As[command.ListRequest](req)
				if err != nil {
					return err
				}
				res, err := svc.ListCustomers(ctx,
					ListFilter{Status: r.Status, Query: r.Query},
					pagination.Params{Page: r.Page, PerPage: r.PerPage})
				if err != nil {
					return err
				}
				for _, c := range res.Items {
					fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", c.ID, c.Name, c.Email, c.Status)
				}
				fmt.Fprintf(out, "page %d/%d (%d customers)\n", res.Page, res.TotalPages, res.Total)
				return nil
			}),

		command.New("crm.stats", "customer base summary",
			func(ctx context.Context, req command.Request) error {
				st, err := svc.Stats(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "total=%d leads=%d active=%d inactive=%d\n",
					st.Total, st.Leads, st.Active, st.Inactive)
				return nil
			}),
	}
}

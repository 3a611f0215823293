package hr

import (
	"context"
	"fmt"
	"io"

	"clierp.org/internal/auth"
	"clierp.org/internal/command"
	"clierp.org/internal/pagination"
)

// Commands exposes the personnel operations through the dispatcher.
func Commands(svc *Service, out io.Writer) []command.Command {
	return []command.Command{
		command.New("hr.create-employee", "register an employee",
			func(ctx context.Context, req command.Request) error {
				r, err := command.As[command.CreateEmployeeRequest](req)
				if err != nil {
					return err
				}
				e, err := svc.CreateEmployee(ctx, CreateEmployeeInput{
					Name:         r.Name,
					Email:        r.Email,
					Position:     r.Position,
					SalaryCents:  r.Salary,
					DepartmentID: r.DepartmentID,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "employee %d created: %s\n", e.ID, e.Name)
				return nil
			}, command.RequireRole(auth.RoleManager)),

		command.New("hr.assign-department", "move an employee into a department",
			func(ctx context.Context, req command.Request) error {
				r, err := command.As[command.AssignDepartmentRequest](req)
				if err != nil {
					return err
				}
				if err := svc.AssignDepartment(ctx, r.EmployeeID, r.DepartmentID); err != nil {
					return err
				}
				fmt.Fprintf(out, "employee %d assigned to department %d\n", r.EmployeeID, r.DepartmentID)
				return nil
			}, command.RequireRole(auth.RoleManager)),

		command.New("hr.create-department", "register a department",
			func(ctx context.Context, req command.Request) error {
				r, err := command.As[command.CreateDepartmentRequest](req)
				if err != nil {
					return err
				}
				d, err := svc.CreateDepartment(ctx, r.Name)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "department %d created: %s\n", d.ID, d.Name)
				return nil
			}, command.RequireRole(auth.RoleManager)),

		command.New("hr.list", "list employees",
			func(ctx context.Context, req command.Request) error {
				r, err := command.As[command.ListRequest](req)
				if err != nil {
					return err
				}
				res, err := svc.ListEmployees(ctx, pagination.Params{Page: r.Page, PerPage: r.PerPage})
				if err != nil {
					return err
				}
				for _, e := range res.Items {
					dept := "-"
					if e.DepartmentID != nil {
						dept = fmt.Sprintf("%d", *e.DepartmentID)
					}
					fmt.Fprintf(out, "%d\t%s\t%s\tdept=%s\t%s\n", e.ID, e.Name, e.Position, dept, e.Status)
				}
				fmt.Fprintf(out, "page %d/%d (%d employees)\n", res.Page, res.TotalPages, res.Total)
				return nil
			}),

		command.New("hr.departments", "list departments",
			func(ctx context.Context, req command.Request) error {
				depts, err := svc.ListDepartments(ctx)
				if err != nil {
					return err
				}
				for _, d := range depts {
					fmt.Fprintf(out, "%d\t%s\n", d.ID, d.Name)
				}
				return nil
			}),
	}
}

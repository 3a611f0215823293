package main

import (
	"context"
	"fmt"
	"io"

	"clierp.org/internal/auth"
	"clierp.org/internal/command"
	"clierp.org/internal/erperr"
	"clierp.org/internal/migrate"
	"clierp.org/internal/session"
	"clierp.org/internal/workflow"
)

// migrateCommands exposes schema bookkeeping to the main CLI. Applying and
// rolling back migrations stays with the migrate binary.
func migrateCommands(mgr *migrate.Manager, out io.Writer) []command.Command {
	return []command.Command{
		command.New("system.migrate-status", "list applied schema migrations",
			func(ctx context.Context, req command.Request) error {
				applied, err := mgr.Status(ctx)
				if err != nil {
					return err
				}
				if len(applied) == 0 {
					fmt.Fprintln(out, "no migrations applied")
					return nil
				}
				for _, name := range applied {
					fmt.Fprintln(out, name)
				}
				return nil
			}),
	}
}

// authCommands covers login, logout, whoami and credential administration.
func authCommands(svc *auth.Service, sessions *session.Manager, out io.Writer) []command.Command {
	return []command.Command{
		command.New("auth.login", "authenticate and cache a session token",
			func(ctx context.Context, req command.Request) error {
				r, err := command.As[command.LoginRequest](req)
				if err != nil {
					return err
				}
				identity, err := svc.Authenticate(ctx, r.Username, r.Password)
				if err != nil {
					return err
				}
				token, err := svc.GenerateToken(identity)
				if err != nil {
					return err
				}
				if err := sessions.Save(token); err != nil {
					return err
				}
				fmt.Fprintf(out, "logged in as %s (%s)\n", identity.Username, identity.Role)
				return nil
			}, command.AllowAnonymous()),

		command.New("auth.logout", "discard the cached session",
			func(ctx context.Context, req command.Request) error {
				if err := sessions.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(out, "logged out")
				return nil
			}, command.AllowAnonymous()),

		command.New("auth.whoami", "show the authenticated identity",
			func(ctx context.Context, req command.Request) error {
				identity, ok := auth.IdentityFromContext(ctx)
				if !ok {
					return fmt.Errorf("%w: not logged in", erperr.ErrAuthentication)
				}
				fmt.Fprintf(out, "%s (%s) role=%s\n", identity.Username, identity.Email, identity.Role)
				return nil
			}),

		command.New("auth.create-user", "create a credential record",
			func(ctx context.Context, req command.Request) error {
				r, err := command.As[command.CreateUserRequest](req)
				if err != nil {
					return err
				}
				u, err := svc.CreateUser(ctx, r.Username, r.Email, r.Password, r.Role, r.EmployeeID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "user %d created: %s role=%s\n", u.ID, u.Username, u.Role)
				return nil
			}, command.RequireRole(auth.RoleAdmin)),

		command.New("auth.set-role", "change a user's role",
			func(ctx context.Context, req command.Request) error {
				r, err := command.As[command.SetRoleRequest](req)
				if err != nil {
					return err
				}
				if err := svc.SetRole(ctx, r.UserID, r.Role); err != nil {
					return err
				}
				fmt.Fprintf(out, "user %d role set to %s\n", r.UserID, r.Role)
				return nil
			}, command.RequireRole(auth.RoleAdmin)),

		command.New("auth.deactivate", "deactivate a credential record",
			func(ctx context.Context, req command.Request) error {
				r, err := command.As[command.DeactivateUserRequest](req)
				if err != nil {
					return err
				}
				if err := svc.Deactivate(ctx, r.UserID); err != nil {
					return err
				}
				fmt.Fprintf(out, "user %d deactivated\n", r.UserID)
				return nil
			}, command.RequireRole(auth.RoleAdmin)),

		command.New("auth.users", "list credential records",
			func(ctx context.Context, req command.Request) error {
				users, err := svc.ListUsers(ctx)
				if err != nil {
					return err
				}
				for _, u := range users {
					state := "active"
					if !u.Active {
						state = "inactive"
					}
					fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, u.Role, state)
				}
				return nil
			}, command.RequireRole(auth.RoleManager)),
	}
}

// systemCommands covers workflow control and registry introspection.
func systemCommands(engine *workflow.Engine, out io.Writer) []command.Command {
	return []command.Command{
		command.New("system.workflows", "list workflow definitions and their state",
			func(ctx context.Context, req command.Request) error {
				for _, wf := range engine.List() {
					fmt.Fprintf(out, "%s\t%s\tstep %d/%d\t%s\n",
						wf.ID, wf.Name, wf.CurrentStep, len(wf.Steps), wf.Status)
				}
				return nil
			}),

		command.New("system.workflow-status", "show one workflow's progress",
			func(ctx context.Context, req command.Request) error {
				r, err := command.As[command.WorkflowRequest](req)
				if err != nil {
					return err
				}
				wf, err := engine.Status(r.WorkflowID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s (%s)\n", wf.Name, wf.Status)
				for i, step := range wf.Steps {
					marker := " "
					switch {
					case i < wf.CurrentStep:
						marker = "x"
					case i == wf.CurrentStep && wf.Status == workflow.StatusActive:
						marker = ">"
					}
					fmt.Fprintf(out, " [%s] %s\n", marker, step.Name)
				}
				return nil
			}),

		command.New("system.workflow-run", "start a workflow and execute its steps",
			func(ctx context.Context, req command.Request) error {
				r, err := command.As[command.RunWorkflowRequest](req)
				if err != nil {
					return err
				}
				var actor *auth.Identity
				if identity, ok := auth.IdentityFromContext(ctx); ok {
					actor = &identity
				}
				wfCtx := workflow.NewContext(actor)
				for k, v := range r.Data {
					wfCtx.Data[k] = coerceValue(v)
				}
				if _, err := engine.Start(r.WorkflowID, wfCtx); err != nil {
					return err
				}
				for {
					more, err := engine.ExecuteNextStep(r.WorkflowID, wfCtx)
					if err != nil {
						return err
					}
					if !more {
						break
					}
					wf, err := engine.Status(r.WorkflowID)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "completed step %d/%d\n", wf.CurrentStep, len(wf.Steps))
				}
				fmt.Fprintf(out, "workflow %s completed\n", r.WorkflowID)
				return nil
			}, command.RequireRole(auth.RoleManager)),

		command.New("system.workflow-pause", "pause a workflow",
			func(ctx context.Context, req command.Request) error {
				r, err := command.As[command.WorkflowRequest](req)
				if err != nil {
					return err
				}
				return engine.Pause(r.WorkflowID)
			}, command.RequireRole(auth.RoleManager)),

		command.New("system.workflow-resume", "resume a paused workflow",
			func(ctx context.Context, req command.Request) error {
				r, err := command.As[command.WorkflowRequest](req)
				if err != nil {
					return err
				}
				return engine.Resume(r.WorkflowID)
			}, command.RequireRole(auth.RoleManager)),

		command.New("system.workflow-fail", "abandon a workflow after an unrecoverable step error",
			func(ctx context.Context, req command.Request) error {
				r, err := command.As[command.WorkflowRequest](req)
				if err != nil {
					return err
				}
				return engine.Fail(r.WorkflowID)
			}, command.RequireRole(auth.RoleManager)),
	}
}

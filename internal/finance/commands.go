package finance

import (
	"context"
	"fmt"
	"io"

	"clierp.org/internal/auth"
	"clierp.org/internal/command"
)

// Commands exposes the finance operations through the dispatcher.
func Commands(svc Service, out io.Writer) []command.Command {
	return []command.Command{
		command.New("fin.create-account", "open an account with an initial balance",
			func(ctx context.Context, req command.Request) error {
				r, err := command.As[command.CreateAccountRequest](req)
				if err != nil {
					return err
				}
				acc, err := svc.CreateAccount(ctx, Money{Currency: r.Currency, Amount: r.InitialAmount})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "account %s created\n", acc.ID)
				return nil
			}, command.RequireRole(auth.RoleManager)),

		command.New("fin.balance", "show an account balance",
			func(ctx context.Context, req command.Request) error {
				r, err := command.As[command.AccountRequest](req)
				if err != nil {
					return err
				}
				bal, err := svc.GetBalance(ctx, r.AccountID, r.Currency)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s %d %s\n", r.AccountID, bal.Amount, bal.Currency)
				return nil
			}),

		command.New("fin.transfer", "move funds between accounts",
			func(ctx context.Context, req command.Request) error {
				r, err := command.As[command.TransferRequest](req)
				if err != nil {
					return err
				}
				tx, err := svc.Transfer(ctx, r.FromAccountID, r.ToAccountID,
					Money{Currency: r.Currency, Amount: r.Amount}, r.IdempotencyKey)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "transfer %s committed (seq %d)\n", tx.ID, tx.Sequence)
				return nil
			}, command.RequireRole(auth.RoleSupervisor)),

		command.New("fin.transactions", "list committed transactions",
			func(ctx context.Context, req command.Request) error {
				r, err := command.As[command.ListRequest](req)
				if err != nil {
					return err
				}
				limit := r.PerPage
				txs, _, err := svc.ListTransactions(ctx, limit, 0)
				if err != nil {
					return err
				}
				for _, tx := range txs {
					fmt.Fprintf(out, "%d\t%s\t%s -> %s\t%d %s\n",
						tx.Sequence, tx.ID, tx.FromAccountID, tx.ToAccountID, tx.Amount, tx.Currency)
				}
				return nil
			}, command.RequireRole(auth.RoleAuditor)),
	}
}

package main

import (
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"clierp.org/internal/auth"
	"clierp.org/internal/command"
)

// parseArgs resolves "verb subcommand [flags]" into a registered command
// name and its typed request.
func parseArgs(a *app, args []string) (string, command.Request, error) {
	verb := args[0]
	if len(args) < 2 {
		return "", nil, errUsage("usage: clierp %s <subcommand> [flags]", verb)
	}
	sub := args[1]
	rest := args[2:]

	switch verb {
	case "auth":
		return parseAuth(sub, rest)
	case "hr":
		return parseHR(sub, rest)
	case "fin":
		return parseFin(sub, rest)
	case "inv":
		return parseInv(sub, rest)
	case "crm":
		return parseCRM(sub, rest)
	case "system":
		return parseSystem(sub, rest)
	default:
		return "", nil, errUsage("unknown command group %q", verb)
	}
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	return fs
}

func parseAuth(sub string, args []string) (string, command.Request, error) {
	switch sub {
	case "login":
		fs := newFlagSet("auth login")
		username := fs.String("username", "", "username")
		password := fs.String("password", "", "password")
		if err := fs.Parse(args); err != nil {
			return "", nil, err
		}
		return "auth.login", command.LoginRequest{Username: *username, Password: *password}, nil
	case "logout":
		return "auth.logout", command.None{}, nil
	case "whoami":
		return "auth.whoami", command.None{}, nil
	case "create-user":
		fs := newFlagSet("auth create-user")
		username := fs.String("username", "", "username")
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "initial password")
		role := fs.String("role", string(auth.RoleEmployee), "role name")
		employeeID := fs.Int64("employee", 0, "linked employee id")
		if err := fs.Parse(args); err != nil {
			return "", nil, err
		}
		parsedRole, err := auth.ParseRole(*role)
		if err != nil {
			return "", nil, err
		}
		req := command.CreateUserRequest{
			Username: *username, Email: *email, Password: *password, Role: parsedRole,
		}
		if *employeeID > 0 {
			req.EmployeeID = employeeID
		}
		return "auth.create-user", req, nil
	case "set-role":
		fs := newFlagSet("auth set-role")
		userID := fs.Int64("user", 0, "user id")
		role := fs.String("role", "", "role name")
		if err := fs.Parse(args); err != nil {
			return "", nil, err
		}
		parsedRole, err := auth.ParseRole(*role)
		if err != nil {
			return "", nil, err
		}
		return "auth.set-role", command.SetRoleRequest{UserID: *userID, Role: parsedRole}, nil
	case "deactivate":
		fs := newFlagSet("auth deactivate")
		userID := fs.Int64("user", 0, "user id")
		if err := fs.Parse(args); err != nil {
			return "", nil, err
		}
		return "auth.deactivate", command.DeactivateUserRequest{UserID: *userID}, nil
	case "users":
		return "auth.users", command.None{}, nil
	default:
		return "", nil, errUsage("unknown auth subcommand %q", sub)
	}
}

func parseHR(sub string, args []string) (string, command.Request, error) {
	switch sub {
	case "create-employee":
		fs := newFlagSet("hr create-employee")
		name := fs.String("name", "", "full name")
		email := fs.String("email", "", "email address")
		position := fs.String("position", "", "job title")
		salary := fs.Int64("salary", 0, "monthly salary in cents")
		department := fs.Int64("department", 0, "department id")
		if err := fs.Parse(args); err != nil {
			return "", nil, err
		}
		req := command.CreateEmployeeRequest{
			Name: *name, Email: *email, Position: *position, Salary: *salary,
		}
		if *department > 0 {
			req.DepartmentID = department
		}
		return "hr.create-employee", req, nil
	case "assign-department":
		fs := newFlagSet("hr assign-department")
		employee := fs.Int64("employee", 0, "employee id")
		department := fs.Int64("department", 0, "department id")
		if err := fs.Parse(args); err != nil {
			return "", nil, err
		}
		return "hr.assign-department", command.AssignDepartmentRequest{
			EmployeeID: *employee, DepartmentID: *department,
		}, nil
	case "create-department":
		fs := newFlagSet("hr create-department")
		name := fs.String("name", "", "department name")
		if err := fs.Parse(args); err != nil {
			return "", nil, err
		}
		return "hr.create-department", command.CreateDepartmentRequest{Name: *name}, nil
	case "list":
		req, err := parseList("hr list", args)
		return "hr.list", req, err
	case "departments":
		return "hr.departments", command.None{}, nil
	default:
		return "", nil, errUsage("unknown hr subcommand %q", sub)
	}
}

func parseFin(sub string, args []string) (string, command.Request, error) {
	switch sub {
	case "create-account":
		fs := newFlagSet("fin create-account")
		currency := fs.String("currency", "USD", "currency code")
		amount := fs.Int64("amount", 0, "initial amount in cents")
		if err := fs.Parse(args); err != nil {
			return "", nil, err
		}
		return "fin.create-account", command.CreateAccountRequest{
			Currency: *currency, InitialAmount: *amount,
		}, nil
	case "balance":
		fs := newFlagSet("fin balance")
		account := fs.String("account", "", "account id")
		currency := fs.String("currency", "USD", "currency code")
		if err := fs.Parse(args); err != nil {
			return "", nil, err
		}
		return "fin.balance", command.AccountRequest{AccountID: *account, Currency: *currency}, nil
	case "transfer":
		fs := newFlagSet("fin transfer")
		from := fs.String("from", "", "source account id")
		to := fs.String("to", "", "destination account id")
		currency := fs.String("currency", "USD", "currency code")
		amount := fs.Int64("amount", 0, "amount in cents")
		key := fs.String("key", "", "idempotency key")
		if err := fs.Parse(args); err != nil {
			return "", nil, err
		}
		return "fin.transfer", command.TransferRequest{
			FromAccountID: *from, ToAccountID: *to, Currency: *currency,
			Amount: *amount, IdempotencyKey: *key,
		}, nil
	case "transactions":
		req, err := parseList("fin transactions", args)
		return "fin.transactions", req, err
	default:
		return "", nil, errUsage("unknown fin subcommand %q", sub)
	}
}

func parseInv(sub string, args []string) (string, command.Request, error) {
	switch sub {
	case "create-product":
		fs := newFlagSet("inv create-product")
		sku := fs.String("sku", "", "stock keeping unit")
		name := fs.String("name", "", "product name")
		price := fs.Int64("price", 0, "unit price in cents")
		stock := fs.Int("stock", 0, "initial stock level")
		minStock := fs.Int("min-stock", 0, "minimum stock level")
		if err := fs.Parse(args); err != nil {
			return "", nil, err
		}
		return "inv.create-product", command.CreateProductRequest{
			SKU: *sku, Name: *name, Price: *price, InitialStock: *stock, MinStock: *minStock,
		}, nil
	case "adjust-stock":
		fs := newFlagSet("inv adjust-stock")
		product := fs.Int64("product", 0, "product id")
		delta := fs.Int("delta", 0, "stock delta, negative to remove")
		refType := fs.String("ref-type", "manual", "movement reference type")
		refID := fs.Int64("ref-id", 0, "movement reference id")
		notes := fs.String("notes", "", "movement notes")
		expectVersion := fs.Int("expect-version", 0, "expected product version")
		if err := fs.Parse(args); err != nil {
			return "", nil, err
		}
		return "inv.adjust-stock", command.AdjustStockRequest{
			ProductID: *product, Delta: *delta, ReferenceType: *refType,
			ReferenceID: *refID, Notes: *notes, ExpectedVersion: *expectVersion,
		}, nil
	case "show":
		fs := newFlagSet("inv show")
		product := fs.Int64("product", 0, "product id")
		if err := fs.Parse(args); err != nil {
			return "", nil, err
		}
		return "inv.show", command.ProductRequest{ProductID: *product}, nil
	case "list":
		req, err := parseList("inv list", args)
		return "inv.list", req, err
	case "po-create":
		fs := newFlagSet("inv po-create")
		supplier := fs.Int64("supplier", 0, "supplier id")
		amount := fs.Int64("amount", 0, "order total in cents")
		if err := fs.Parse(args); err != nil {
			return "", nil, err
		}
		return "inv.po-create", command.CreatePurchaseOrderRequest{
			SupplierID: *supplier, TotalAmount: *amount,
		}, nil
	case "po-approve":
		fs := newFlagSet("inv po-approve")
		order := fs.Int64("order", 0, "purchase order id")
		if err := fs.Parse(args); err != nil {
			return "", nil, err
		}
		return "inv.po-approve", command.ApprovePurchaseOrderRequest{OrderID: *order}, nil
	case "stats":
		return "inv.stats", command.None{}, nil
	default:
		return "", nil, errUsage("unknown inv subcommand %q", sub)
	}
}

func parseCRM(sub string, args []string) (string, command.Request, error) {
	switch sub {
	case "create-customer":
		fs := newFlagSet("crm create-customer")
		name := fs.String("name", "", "customer name")
		email := fs.String("email", "", "email address")
		phone := fs.String("phone", "", "phone number")
		if err := fs.Parse(args); err != nil {
			return "", nil, err
		}
		return "crm.create-customer", command.CreateCustomerRequest{
			Name: *name, Email: *email, Phone: *phone,
		}, nil
	case "list":
		req, err := parseList("crm list", args)
		return "crm.list", req, err
	case "stats":
		return "crm.stats", command.None{}, nil
	default:
		return "", nil, errUsage("unknown crm subcommand %q", sub)
	}
}

func parseSystem(sub string, args []string) (string, command.Request, error) {
	switch sub {
	case "workflows":
		return "system.workflows", command.None{}, nil
	case "migrate-status":
		return "system.migrate-status", command.None{}, nil
	case "workflow-status", "workflow-pause", "workflow-resume", "workflow-fail":
		if len(args) < 1 {
			return "", nil, errUsage("usage: clierp system %s <workflow-id>", sub)
		}
		return "system." + sub, command.WorkflowRequest{WorkflowID: args[0]}, nil
	case "workflow-run":
		if len(args) < 1 {
			return "", nil, errUsage("usage: clierp system workflow-run <workflow-id> [--data k=v]")
		}
		fs := newFlagSet("system workflow-run")
		data := fs.StringArray("data", nil, "seed data entries as key=value")
		if err := fs.Parse(args[1:]); err != nil {
			return "", nil, err
		}
		seed := make(map[string]string, len(*data))
		for _, kv := range *data {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return "", nil, errUsage("bad --data entry %q, want key=value", kv)
			}
			seed[k] = v
		}
		return "system.workflow-run", command.RunWorkflowRequest{
			WorkflowID: args[0], Data: seed,
		}, nil
	default:
		return "", nil, errUsage("unknown system subcommand %q", sub)
	}
}

func parseList(name string, args []string) (command.Request, error) {
	fs := newFlagSet(name)
	page := fs.Int("page", 1, "page number")
	perPage := fs.Int("per-page", 20, "items per page")
	status := fs.String("status", "", "status filter")
	query := fs.String("query", "", "text filter")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return command.ListRequest{
		Page: *page, PerPage: *perPage, Status: *status, Query: *query,
	}, nil
}

// coerceValue turns CLI seed data into the type step actions expect.
func coerceValue(v string) any {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}

package command

import "clierp.org/internal/auth"

// Request is the closed set of argument shapes commands accept. The CLI
// layer resolves flags into one of these before dispatch, so handlers never
// inspect untyped values.
type Request interface{ isRequest() }

type base struct{}

func (base) isRequest() {}

// None is the request for commands that take no arguments.
type None struct{ base }

// LoginRequest carries credentials for auth login.
type LoginRequest struct {
	base
	Username string
	Password string
}

// CreateUserRequest creates a credential record.
type CreateUserRequest struct {
	base
	Username   string
	Email      string
	Password   string
	Role       auth.Role
	EmployeeID *int64
}

// SetRoleRequest changes a user's role.
type SetRoleRequest struct {
	base
	UserID int64
	Role   auth.Role
}

// DeactivateUserRequest marks a credential record inactive.
type DeactivateUserRequest struct {
	base
	UserID int64
}

// ListRequest is the shared shape for paginated, filterable listings.
type ListRequest struct {
	base
	Page    int
	PerPage int
	Status  string
	Query   string
}

// CreateProductRequest registers a product.
type CreateProductRequest struct {
	base
	SKU          string
	Name         string
	Price        int64
	InitialStock int
	MinStock     int
}

// AdjustStockRequest applies a stock delta with its audit trail.
type AdjustStockRequest struct {
	base
	ProductID       int64
	Delta           int
	ReferenceType   string
	ReferenceID     int64
	Notes           string
	ExpectedVersion int
}

// ProductRequest addresses a single product.
type ProductRequest struct {
	base
	ProductID int64
}

// CreatePurchaseOrderRequest opens a purchase order.
type CreatePurchaseOrderRequest struct {
	base
	SupplierID  int64
	TotalAmount int64
}

// ApprovePurchaseOrderRequest approves a pending purchase order.
type ApprovePurchaseOrderRequest struct {
	base
	OrderID int64
}

// CreateAccountRequest opens a finance account with an initial balance.
type CreateAccountRequest struct {
	base
	Currency      string
	InitialAmount int64
}

// AccountRequest addresses a single account.
type AccountRequest struct {
	base
	AccountID string
	Currency  string
}

// TransferRequest moves funds between two accounts.
type TransferRequest struct {
	base
	FromAccountID  string
	ToAccountID    string
	Currency       string
	Amount         int64
	IdempotencyKey string
}

// CreateEmployeeRequest registers an employee.
type CreateEmployeeRequest struct {
	base
	Name         string
	Email        string
	Position     string
	Salary       int64
	DepartmentID *int64
}

// AssignDepartmentRequest moves an employee into a department.
type AssignDepartmentRequest struct {
	base
	EmployeeID   int64
	DepartmentID int64
}

// CreateDepartmentRequest registers a department.
type CreateDepartmentRequest struct {
	base
	Name string
}

// CreateCustomerRequest registers a customer.
type CreateCustomerRequest struct {
	base
	Name  string
	Email string
	Phone string
}

// WorkflowRequest addresses a workflow instance.
type WorkflowRequest struct {
	base
	WorkflowID string
}

// RunWorkflowRequest starts a workflow and drives its steps to completion
// with the given seed data.
type RunWorkflowRequest struct {
	base
	WorkflowID string
	Data       map[string]string
}

package hr

import (
	"context"
	"errors"
	"testing"

	"clierp.org/internal/auth"
	"clierp.org/internal/erperr"
	"clierp.org/internal/finance"
	"clierp.org/internal/workflow"
)

func newTestStack(t *testing.T) (*Service, *auth.Service, *finance.InMemory, *workflow.Engine) {
	t.Helper()
	hrSvc := NewService(NewMemoryStore())
	authSvc, err := auth.NewService(auth.NewMemoryStore(), "test-secret", auth.WithBcryptCost(4))
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	finSvc := finance.NewInMemory()

	engine := workflow.NewEngine()
	for _, wf := range workflow.DefaultWorkflows() {
		engine.RegisterWorkflow(wf)
	}
	for _, a := range Actions(hrSvc, authSvc, finSvc) {
		engine.RegisterAction(a)
	}
	return hrSvc, authSvc, finSvc, engine
}

func manager() *auth.Identity {
	return &auth.Identity{ID: 1, Username: "mgr", Role: auth.RoleManager}
}

func admin() *auth.Identity {
	return &auth.Identity{ID: 2, Username: "root", Role: auth.RoleAdmin}
}

func TestOnboardingWorkflowEndToEnd(t *testing.T) {
	hrSvc, authSvc, _, engine := newTestStack(t)
	ctx := context.Background()

	dep, err := hrSvc.CreateDepartment(ctx, "Engineering")
	if err != nil {
		t.Fatalf("create department: %v", err)
	}

	wfCtx := workflow.NewContext(manager())
	wfCtx.Data["employee_name"] = "Dana Fox"
	wfCtx.Data["employee_email"] = "dana@clierp.local"
	wfCtx.Data["position"] = "Engineer"
	wfCtx.Data["salary_cents"] = int64(500000)
	wfCtx.Data["department_id"] = dep.ID
	wfCtx.Data["initial_password"] = "welcome-1"

	if _, err := engine.Start(workflow.WorkflowEmployeeOnboarding, wfCtx); err != nil {
		t.Fatalf("start: %v", err)
	}

	// create record + assign department run as manager
	for i := 0; i < 2; i++ {
		if _, err := engine.ExecuteNextStep(workflow.WorkflowEmployeeOnboarding, wfCtx); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	empID, ok := wfCtx.Data["employee_id"].(int64)
	if !ok {
		t.Fatalf("employee_id not recorded: %v", wfCtx.Data["employee_id"])
	}
	e, err := hrSvc.GetEmployee(ctx, empID)
	if err != nil {
		t.Fatalf("get employee: %v", err)
	}
	if e.DepartmentID == nil || *e.DepartmentID != dep.ID {
		t.Fatalf("department not assigned: %+v", e)
	}

	// the account step needs admin; manager is refused without advancing
	if _, err := engine.ExecuteNextStep(workflow.WorkflowEmployeeOnboarding, wfCtx); !errors.Is(err, erperr.ErrAuthorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}

	wfCtx.Identity = admin()
	if _, err := engine.ExecuteNextStep(workflow.WorkflowEmployeeOnboarding, wfCtx); err != nil {
		t.Fatalf("create user account: %v", err)
	}
	if _, ok := wfCtx.Data["user_id"].(int64); !ok {
		t.Fatalf("user_id not recorded")
	}
	if _, err := authSvc.Authenticate(ctx, "dana", "welcome-1"); err != nil {
		t.Fatalf("provisioned account cannot log in: %v", err)
	}

	wfCtx.Identity = manager()
	if more, err := engine.ExecuteNextStep(workflow.WorkflowEmployeeOnboarding, wfCtx); err != nil || !more {
		t.Fatalf("setup payroll: more=%v err=%v", more, err)
	}
	if _, ok := wfCtx.Data["payout_account_id"].(string); !ok {
		t.Fatalf("payout account not recorded")
	}

	if more, err := engine.ExecuteNextStep(workflow.WorkflowEmployeeOnboarding, wfCtx); err != nil || more {
		t.Fatalf("expected completion, more=%v err=%v", more, err)
	}
	wf, err := engine.Status(workflow.WorkflowEmployeeOnboarding)
	if err != nil || wf.Status != workflow.StatusCompleted {
		t.Fatalf("workflow not completed: %v %v", wf.Status, err)
	}
}

func TestPayrollWorkflowTransfersApprovedTotal(t *testing.T) {
	hrSvc, _, finSvc, engine := newTestStack(t)
	ctx := context.Background()

	for _, in := range []CreateEmployeeInput{
		{Name: "A", SalaryCents: 300000},
		{Name: "B", SalaryCents: 200000},
	} {
		if _, err := hrSvc.CreateEmployee(ctx, in); err != nil {
			t.Fatalf("create employee: %v", err)
		}
	}
	src, _ := finSvc.CreateAccount(ctx, finance.Money{Currency: "USD", Amount: 1000000})
	dst, _ := finSvc.CreateAccount(ctx, finance.Money{Currency: "USD", Amount: 0})

	wfCtx := workflow.NewContext(admin())
	wfCtx.Data["payroll_source_account"] = src.ID
	wfCtx.Data["payroll_dest_account"] = dst.ID
	wfCtx.Data["payroll_run_id"] = "2026-09"

	if _, err := engine.Start(workflow.WorkflowMonthlyPayroll, wfCtx); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 4; i++ {
		if more, err := engine.ExecuteNextStep(workflow.WorkflowMonthlyPayroll, wfCtx); err != nil || !more {
			t.Fatalf("step %d: more=%v err=%v", i, more, err)
		}
	}

	if total := wfCtx.Data["payroll_total_cents"]; total != int64(500000) {
		t.Fatalf("unexpected payroll total %v", total)
	}
	bal, _ := finSvc.GetBalance(ctx, dst.ID, "USD")
	if bal.Amount != 500000 {
		t.Fatalf("payroll not transferred, dest balance %d", bal.Amount)
	}
	if _, ok := wfCtx.Data["payroll_tx_id"].(string); !ok {
		t.Fatalf("payroll transaction id not recorded")
	}
}

func TestProcessPaymentsBlockedWithoutApproval(t *testing.T) {
	_, _, finSvc, _ := newTestStack(t)
	action := &ProcessPaymentsAction{Finance: finSvc}

	wfCtx := workflow.NewContext(admin())
	wfCtx.Data["payroll_source_account"] = "src"
	wfCtx.Data["payroll_dest_account"] = "dst"
	if action.CanExecute(wfCtx) {
		t.Fatalf("payments must not be executable before review")
	}
	wfCtx.Data["payroll_approved"] = true
	if !action.CanExecute(wfCtx) {
		t.Fatalf("payments should be executable after review")
	}
}

func TestAssignDepartmentUnknownTargets(t *testing.T) {
	hrSvc, _, _, _ := newTestStack(t)
	ctx := context.Background()
	if err := hrSvc.AssignDepartment(ctx, 99, 1); !errors.Is(err, erperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

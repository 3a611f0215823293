package hr

import (
	"context"
	"fmt"
	"strings"

	"clierp.org/internal/auth"
	"clierp.org/internal/erperr"
	"clierp.org/internal/finance"
	"clierp.org/internal/obs"
	"clierp.org/internal/workflow"
)

// Step actions for the onboarding and payroll workflows. Each action is
// bound to its step by name and reads/writes the shared workflow data map.
//
// Data keys used across steps:
//
//	employee_name, employee_email, position, salary_cents  (onboarding input)
//	employee_id, department_id, user_id                    (onboarding output)
//	payroll_source_account, payroll_dest_account           (payroll input)
//	payroll_run_id, working_days                           (payroll input)
//	attendance_days, payroll_total_cents, payroll_headcount
//	payroll_approved, payroll_tx_id                        (payroll output)

func dataInt64(wfCtx *workflow.Context, key string) (int64, bool) {
	switch v := wfCtx.Data[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

func dataString(wfCtx *workflow.Context, key string) (string, bool) {
	v, ok := wfCtx.Data[key].(string)
	return v, ok && v != ""
}

// CreateEmployeeRecordAction creates the personnel record from the
// onboarding input and stores the new employee id.
type CreateEmployeeRecordAction struct {
	HR *Service
}

func (a *CreateEmployeeRecordAction) Name() string { return workflow.StepCreateEmployeeRecord }

func (a *CreateEmployeeRecordAction) CanExecute(wfCtx *workflow.Context) bool {
	_, hasName := dataString(wfCtx, "employee_name")
	_, done := dataInt64(wfCtx, "employee_id")
	return hasName && !done
}

func (a *CreateEmployeeRecordAction) Execute(wfCtx *workflow.Context) error {
	name, _ := dataString(wfCtx, "employee_name")
	email, _ := dataString(wfCtx, "employee_email")
	position, _ := dataString(wfCtx, "position")
	salary, _ := dataInt64(wfCtx, "salary_cents")

	e, err := a.HR.CreateEmployee(context.Background(), CreateEmployeeInput{
		Name:        name,
		Email:       email,
		Position:    position,
		SalaryCents: salary,
	})
	if err != nil {
		return err
	}
	wfCtx.Data["employee_id"] = e.ID
	return nil
}

// AssignDepartmentAction moves the new employee into the requested
// department.
type AssignDepartmentAction struct {
	HR *Service
}

func (a *AssignDepartmentAction) Name() string { return workflow.StepAssignDepartment }

func (a *AssignDepartmentAction) CanExecute(wfCtx *workflow.Context) bool {
	_, hasEmp := dataInt64(wfCtx, "employee_id")
	_, hasDep := dataInt64(wfCtx, "department_id")
	return hasEmp && hasDep
}

func (a *AssignDepartmentAction) Execute(wfCtx *workflow.Context) error {
	empID, _ := dataInt64(wfCtx, "employee_id")
	depID, _ := dataInt64(wfCtx, "department_id")
	return a.HR.AssignDepartment(context.Background(), empID, depID)
}

// CreateUserAccountAction provisions the credential record linked to the
// employee. The username is derived from the email local part.
type CreateUserAccountAction struct {
	Auth *auth.Service
}

func (a *CreateUserAccountAction) Name() string { return workflow.StepCreateUserAccount }

func (a *CreateUserAccountAction) CanExecute(wfCtx *workflow.Context) bool {
	_, hasEmp := dataInt64(wfCtx, "employee_id")
	_, hasEmail := dataString(wfCtx, "employee_email")
	_, hasPassword := dataString(wfCtx, "initial_password")
	return hasEmp && hasEmail && hasPassword
}

func (a *CreateUserAccountAction) Execute(wfCtx *workflow.Context) error {
	empID, _ := dataInt64(wfCtx, "employee_id")
	email, _ := dataString(wfCtx, "employee_email")
	password, _ := dataString(wfCtx, "initial_password")

	username := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		username = email[:i]
	}
	u, err := a.Auth.CreateUser(context.Background(), username, email, password, auth.RoleEmployee, &empID)
	if err != nil {
		return err
	}
	wfCtx.Data["user_id"] = u.ID
	return nil
}

// SetupPayrollAction opens the employee's payout account so future payroll
// runs have a destination.
type SetupPayrollAction struct {
	Finance finance.Service
}

func (a *SetupPayrollAction) Name() string { return workflow.StepSetupPayroll }

func (a *SetupPayrollAction) CanExecute(wfCtx *workflow.Context) bool {
	_, hasEmp := dataInt64(wfCtx, "employee_id")
	return hasEmp
}

func (a *SetupPayrollAction) Execute(wfCtx *workflow.Context) error {
	acc, err := a.Finance.CreateAccount(context.Background(), finance.Money{Currency: "USD", Amount: 0})
	if err != nil {
		return err
	}
	wfCtx.Data["payout_account_id"] = acc.ID
	return nil
}

// CalculateAttendanceAction resolves the working days of the period.
type CalculateAttendanceAction struct{}

func (CalculateAttendanceAction) Name() string { return workflow.StepCalculateAttendance }

func (CalculateAttendanceAction) CanExecute(wfCtx *workflow.Context) bool { return true }

func (CalculateAttendanceAction) Execute(wfCtx *workflow.Context) error {
	days, ok := dataInt64(wfCtx, "working_days")
	if !ok {
		days = 22
	}
	wfCtx.Data["attendance_days"] = days
	return nil
}

// CalculatePayrollAction totals the active salaries for the run.
type CalculatePayrollAction struct {
	HR *Service
}

func (a *CalculatePayrollAction) Name() string { return workflow.StepCalculatePayroll }

func (a *CalculatePayrollAction) CanExecute(wfCtx *workflow.Context) bool {
	_, ok := dataInt64(wfCtx, "attendance_days")
	return ok
}

func (a *CalculatePayrollAction) Execute(wfCtx *workflow.Context) error {
	total, headcount, err := a.HR.TotalActiveSalary(context.Background())
	if err != nil {
		return err
	}
	wfCtx.Data["payroll_total_cents"] = total
	wfCtx.Data["payroll_headcount"] = headcount
	return nil
}

// ReviewPayrollAction records the reviewer's approval of the computed run.
type ReviewPayrollAction struct{}

func (ReviewPayrollAction) Name() string { return workflow.StepReviewPayroll }

func (ReviewPayrollAction) CanExecute(wfCtx *workflow.Context) bool {
	_, ok := dataInt64(wfCtx, "payroll_total_cents")
	return ok
}

func (ReviewPayrollAction) Execute(wfCtx *workflow.Context) error {
	wfCtx.Data["payroll_approved"] = true
	if wfCtx.Identity != nil {
		obs.Info("payroll reviewed", map[string]any{
			"reviewer": wfCtx.Identity.Username,
			"total":    wfCtx.Data["payroll_total_cents"],
		})
	}
	return nil
}

// ProcessPaymentsAction moves the approved total from the company account
// to the payroll clearing account, idempotent per run id.
type ProcessPaymentsAction struct {
	Finance finance.Service
}

func (a *ProcessPaymentsAction) Name() string { return workflow.StepProcessPayments }

func (a *ProcessPaymentsAction) CanExecute(wfCtx *workflow.Context) bool {
	approved, _ := wfCtx.Data["payroll_approved"].(bool)
	_, hasSrc := dataString(wfCtx, "payroll_source_account")
	_, hasDst := dataString(wfCtx, "payroll_dest_account")
	return approved && hasSrc && hasDst
}

func (a *ProcessPaymentsAction) Execute(wfCtx *workflow.Context) error {
	total, ok := dataInt64(wfCtx, "payroll_total_cents")
	if !ok || total <= 0 {
		return fmt.Errorf("%w: payroll total is not computed", erperr.ErrInternal)
	}
	src, _ := dataString(wfCtx, "payroll_source_account")
	dst, _ := dataString(wfCtx, "payroll_dest_account")
	runID, _ := dataString(wfCtx, "payroll_run_id")

	tx, err := a.Finance.Transfer(context.Background(), src, dst,
		finance.Money{Currency: "USD", Amount: total}, runID)
	if err != nil {
		return err
	}
	wfCtx.Data["payroll_tx_id"] = tx.ID
	return nil
}

// Actions returns every step action wired to its services, ready for
// engine registration.
func Actions(hrSvc *Service, authSvc *auth.Service, finSvc finance.Service) []workflow.Action {
	return []workflow.Action{
		&CreateEmployeeRecordAction{HR: hrSvc},
		&AssignDepartmentAction{HR: hrSvc},
		&CreateUserAccountAction{Auth: authSvc},
		&SetupPayrollAction{Finance: finSvc},
		CalculateAttendanceAction{},
		&CalculatePayrollAction{HR: hrSvc},
		ReviewPayrollAction{},
		&ProcessPaymentsAction{Finance: finSvc},
	}
}

package workflow

import "clierp.org/internal/auth"

// Workflow and step identifiers for the shipped process definitions.
const (
	WorkflowEmployeeOnboarding = "employee_onboarding"
	WorkflowMonthlyPayroll     = "monthly_payroll"

	StepCreateEmployeeRecord = "create_employee_record"
	StepAssignDepartment     = "assign_department"
	StepCreateUserAccount    = "create_user_account"
	StepSetupPayroll         = "setup_payroll"
	StepCalculateAttendance  = "calculate_attendance"
	StepCalculatePayroll     = "calculate_payroll"
	StepReviewPayroll        = "review_payroll"
	StepProcessPayments      = "process_payments"
)

// DefaultWorkflows returns the canonical process definitions shipped with
// the system: employee onboarding and monthly payroll processing.
func DefaultWorkflows() []*Workflow {
	return []*Workflow{
		{
			ID:          WorkflowEmployeeOnboarding,
			Name:        "Employee Onboarding",
			Description: "Standard employee onboarding process",
			Status:      StatusDraft,
			Steps: []Step{
				{
					ID:           StepCreateEmployeeRecord,
					Name:         "Create Employee Record",
					Description:  "Create basic employee information",
					RequiredRole: requireRole(auth.RoleManager),
				},
				{
					ID:           StepAssignDepartment,
					Name:         "Assign Department",
					Description:  "Assign employee to department",
					RequiredRole: requireRole(auth.RoleManager),
				},
				{
					ID:           StepCreateUserAccount,
					Name:         "Create User Account",
					Description:  "Create system user account",
					RequiredRole: requireRole(auth.RoleAdmin),
				},
				{
					ID:           StepSetupPayroll,
					Name:         "Setup Payroll",
					Description:  "Configure payroll settings",
					RequiredRole: requireRole(auth.RoleManager),
				},
			},
		},
		{
			ID:          WorkflowMonthlyPayroll,
			Name:        "Monthly Payroll Processing",
			Description: "Monthly payroll calculation and processing",
			Status:      StatusDraft,
			Steps: []Step{
				{
					ID:           StepCalculateAttendance,
					Name:         "Calculate Attendance",
					Description:  "Calculate monthly attendance for all employees",
					RequiredRole: requireRole(auth.RoleManager),
					AutoExecute:  true,
				},
				{
					ID:           StepCalculatePayroll,
					Name:         "Calculate Payroll",
					Description:  "Calculate monthly payroll",
					RequiredRole: requireRole(auth.RoleManager),
					AutoExecute:  true,
				},
				{
					ID:           StepReviewPayroll,
					Name:         "Review Payroll",
					Description:  "Review and approve payroll calculations",
					RequiredRole: requireRole(auth.RoleAdmin),
				},
				{
					ID:           StepProcessPayments,
					Name:         "Process Payments",
					Description:  "Process salary payments",
					RequiredRole: requireRole(auth.RoleAdmin),
				},
			},
		},
	}
}

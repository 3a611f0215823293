// Package hr manages employees and departments and provides the step
// actions behind the onboarding and payroll workflows.
package hr

import "time"

// Employee statuses.
const (
	StatusActive     = "active"
	StatusTerminated = "terminated"
)

// Employee is a personnel record. Salary is integer cents per month.
type Employee struct {
	ID           int64
	Name         string
	Email        string
	Position     string
	SalaryCents  int64
	DepartmentID *int64
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Department struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

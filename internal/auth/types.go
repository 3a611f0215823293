package auth

import "time"

// User is a stored credential record. Records are never physically deleted;
// deactivation (Active=false) is the terminal state.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	EmployeeID   *int64
	Active       bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is an authenticated subject as carried through command dispatch
// and workflow execution.
type Identity struct {
	ID         int64
	Username   string
	Email      string
	Role       Role
	EmployeeID *int64
}

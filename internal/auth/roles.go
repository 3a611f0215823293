package auth

import (
	"fmt"
	"strings"

	"clierp.org/internal/erperr"
)

// Role is one of the fixed, linearly ordered privilege levels.
type Role string

const (
	RoleAuditor    Role = "auditor"
	RoleEmployee   Role = "employee"
	RoleSupervisor Role = "supervisor"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
)

var roleRanks = map[Role]int{
	RoleAuditor:    1,
	RoleEmployee:   2,
	RoleSupervisor: 3,
	RoleManager:    4,
	RoleAdmin:      5,
}

// Roles lists all roles from lowest to highest privilege.
func Roles() []Role {
	return []Role{RoleAuditor, RoleEmployee, RoleSupervisor, RoleManager, RoleAdmin}
}

// ParseRole normalizes and validates a role name.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(strings.ToLower(s)))
	if _, ok := roleRanks[r]; !ok {
		return "", fmt.Errorf("%w: unknown role %q", erperr.ErrValidation, s)
	}
	return r, nil
}

// Rank returns the privilege rank; unknown roles rank below every valid one.
func (r Role) Rank() int {
	return roleRanks[r]
}

// Meets reports whether the role satisfies the required minimum role.
// The check holds iff rank(r) >= rank(required).
func (r Role) Meets(required Role) bool {
	return roleRanks[r] >= roleRanks[required]
}

func (r Role) String() string { return string(r) }

// Package workflow drives named multi-step business processes with
// role-gated, optionally automated steps.
package workflow

import (
	"clierp.org/internal/auth"
)

// Status is the lifecycle state of a workflow instance.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Step is one stage of a workflow. RequiredRole, when set, gates execution
// through the role hierarchy; AutoExecute marks steps a scheduler may run
// without operator confirmation.
type Step struct {
	ID           string
	Name         string
	Description  string
	RequiredRole *auth.Role
	AutoExecute  bool
}

// Workflow is a named, ordered sequence of steps with persisted progress.
// CurrentStep is always within [0, len(Steps)]; reaching len(Steps) means
// the workflow completed.
type Workflow struct {
	ID          string
	Name        string
	Description string
	Steps       []Step
	CurrentStep int
	Status      Status
}

// Context carries the acting identity and shared data across step actions.
type Context struct {
	Identity *auth.Identity
	Data     map[string]any
}

// NewContext builds a context for the given identity.
func NewContext(identity *auth.Identity) *Context {
	return &Context{Identity: identity, Data: make(map[string]any)}
}

// Action is a pluggable executable bound to a step by its identifier.
type Action interface {
	Name() string
	CanExecute(wfCtx *Context) bool
	Execute(wfCtx *Context) error
}

func requireRole(role auth.Role) *auth.Role { return &role }

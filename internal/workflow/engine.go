package workflow

import (
	"fmt"
	"sync"

	"clierp.org/internal/erperr"
	"clierp.org/internal/obs"
)

// Engine stores workflow instances and their registered step actions.
type Engine struct {
	mu        sync.Mutex
	workflows map[string]*Workflow
	actions   map[string]Action
}

// NewEngine constructs an empty Engine.
func NewEngine() *Engine {
	return &Engine{
		workflows: make(map[string]*Workflow),
		actions:   make(map[string]Action),
	}
}

// RegisterWorkflow stores a workflow keyed by its identity, overwriting any
// existing entry with the same id.
func (e *Engine) RegisterWorkflow(wf *Workflow) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := *wf
	cp.Steps = append([]Step(nil), wf.Steps...)
	e.workflows[wf.ID] = &cp
}

// RegisterAction associates an action with the step id matching its name.
func (e *Engine) RegisterAction(a Action) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.actions[a.Name()] = a
}

// Start activates a workflow and resets its cursor to the first step.
// Starting an already Active workflow restarts it from step 0; this is the
// documented restart semantic, not lost-progress protection.
func (e *Engine) Start(workflowID string, wfCtx *Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	wf, ok := e.workflows[workflowID]
	if !ok {
		return "", fmt.Errorf("%w: workflow %q", erperr.ErrNotFound, workflowID)
	}
	wf.Status = StatusActive
	wf.CurrentStep = 0
	obs.Info("workflow started", map[string]any{"workflow": wf.ID, "name": wf.Name})
	return wf.ID, nil
}

// ExecuteNextStep runs the step at the cursor. It returns true while more
// steps may remain and false exactly once, when the cursor has exhausted all
// steps and the workflow transitions to Completed. The cursor only advances
// on success.
func (e *Engine) ExecuteNextStep(workflowID string, wfCtx *Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	wf, ok := e.workflows[workflowID]
	if !ok {
		return false, fmt.Errorf("%w: workflow %q", erperr.ErrNotFound, workflowID)
	}

	if wf.CurrentStep >= len(wf.Steps) {
		wf.Status = StatusCompleted
		obs.Info("workflow completed", map[string]any{"workflow": wf.ID, "name": wf.Name})
		obs.CountWorkflowStep(wf.ID, "completed")
		return false, nil
	}

	step := wf.Steps[wf.CurrentStep]

	if step.RequiredRole != nil {
		if wfCtx == nil || wfCtx.Identity == nil {
			obs.CountWorkflowStep(wf.ID, "denied")
			return false, fmt.Errorf("%w: authentication required for step %q", erperr.ErrAuthentication, step.Name)
		}
		if !wfCtx.Identity.Role.Meets(*step.RequiredRole) {
			obs.CountWorkflowStep(wf.ID, "denied")
			return false, fmt.Errorf("%w: step %q requires role %s", erperr.ErrAuthorization, step.Name, *step.RequiredRole)
		}
	}

	if action, ok := e.actions[step.ID]; ok {
		if !action.CanExecute(wfCtx) {
			obs.CountWorkflowStep(wf.ID, "blocked")
			return false, fmt.Errorf("%w: cannot execute step %q at this time", erperr.ErrInternal, step.Name)
		}
		if err := action.Execute(wfCtx); err != nil {
			obs.CountWorkflowStep(wf.ID, "failed")
			return false, err
		}
		obs.Info("workflow step executed", map[string]any{
			"workflow": wf.ID,
			"step":     step.ID,
		})
	}

	wf.CurrentStep++
	obs.CountWorkflowStep(wf.ID, "ok")
	return true, nil
}

// Fail marks a workflow as terminally failed.
func (e *Engine) Fail(workflowID string) error {
	return e.setStatus(workflowID, StatusFailed, "workflow failed")
}

// Pause suspends a workflow. No transition guard is applied; pausing a
// Completed or Failed workflow is accepted as-is.
func (e *Engine) Pause(workflowID string) error {
	return e.setStatus(workflowID, StatusPaused, "workflow paused")
}

// Resume reactivates a workflow. Like Pause, the transition is unguarded.
func (e *Engine) Resume(workflowID string) error {
	return e.setStatus(workflowID, StatusActive, "workflow resumed")
}

// Status returns a snapshot of a workflow instance.
func (e *Engine) Status(workflowID string) (Workflow, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	wf, ok := e.workflows[workflowID]
	if !ok {
		return Workflow{}, fmt.Errorf("%w: workflow %q", erperr.ErrNotFound, workflowID)
	}
	cp := *wf
	cp.Steps = append([]Step(nil), wf.Steps...)
	return cp, nil
}

// List returns snapshots of every registered workflow.
func (e *Engine) List() []Workflow {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Workflow, 0, len(e.workflows))
	for _, wf := range e.workflows {
		cp := *wf
		cp.Steps = append([]Step(nil), wf.Steps...)
		out = append(out, cp)
	}
	return out
}

func (e *Engine) setStatus(workflowID string, status Status, msg string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	wf, ok := e.workflows[workflowID]
	if !ok {
		return fmt.Errorf("%w: workflow %q", erperr.ErrNotFound, workflowID)
	}
	wf.Status = status
	obs.Info(msg, map[string]any{"workflow": wf.ID, "name": wf.Name})
	return nil
}

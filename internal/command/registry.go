package command

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"clierp.org/internal/audit"
	"clierp.org/internal/auth"
	"clierp.org/internal/erperr"
	"clierp.org/internal/obs"
)

// Registry holds named commands and dispatches them with authentication and
// role checks applied.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
	strict   bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithStrictRoles makes the dispatcher reject calls below the required role.
// The default is permissive: the requirement is logged but not enforced,
// matching the historical behavior of the command layer.
func WithStrictRoles() RegistryOption {
	return func(r *Registry) { r.strict = true }
}

// NewRegistry constructs an empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{commands: make(map[string]Command)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register associates a command with its name. Re-registration under the
// same name replaces the previous command, keeping startup idempotent.
func (r *Registry) Register(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[cmd.Name()] = cmd
}

// RegisterAll registers a batch of commands.
func (r *Registry) RegisterAll(cmds ...Command) {
	for _, cmd := range cmds {
		r.Register(cmd)
	}
}

// Get returns a command by name.
func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	return cmd, ok
}

// List returns registered commands sorted by name.
func (r *Registry) List() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Dispatch runs the named command after checking authentication and role
// requirements. The handler's result is returned unchanged.
func (r *Registry) Dispatch(ctx context.Context, name string, req Request) error {
	cmd, ok := r.Get(name)
	if !ok {
		obs.CountCommand(name, "unknown")
		return fmt.Errorf("%w: command %q", erperr.ErrNotFound, name)
	}

	identity, authenticated := auth.IdentityFromContext(ctx)
	if cmd.RequiresAuth() && !authenticated {
		obs.CountCommand(name, "denied")
		return fmt.Errorf("%w: authentication required", erperr.ErrAuthentication)
	}

	if required, hasRole := cmd.RequiredRole(); hasRole && authenticated {
		if !identity.Role.Meets(required) {
			if r.strict {
				obs.CountCommand(name, "denied")
				return fmt.Errorf("%w: command %q requires role %s", erperr.ErrAuthorization, name, required)
			}
			obs.Warn("role requirement not met, executing anyway (permissive mode)", map[string]any{
				"command":  name,
				"required": required.String(),
				"actual":   identity.Role.String(),
			})
		}
	}

	err := cmd.Execute(ctx, req)
	status := "ok"
	if err != nil {
		status = "error"
	}
	obs.CountCommand(name, status)
	_ = audit.LogEvent(ctx, "command.dispatch", map[string]any{
		"command": name,
		"status":  status,
	})
	return err
}

// Package command implements the named command registry and the
// authenticated dispatcher in front of every service operation.
package command

import (
	"context"
	"fmt"

	"clierp.org/internal/auth"
	"clierp.org/internal/erperr"
)

// Command is one dispatchable operation. Authentication is required by
// default; a minimum role is optional metadata consulted by the dispatcher.
type Command interface {
	Name() string
	Description() string
	RequiresAuth() bool
	RequiredRole() (auth.Role, bool)
	Execute(ctx context.Context, req Request) error
}

// Handler is the executable part of a command.
type Handler func(ctx context.Context, req Request) error

type funcCommand struct {
	name        string
	description string
	anonymous   bool
	role        auth.Role
	hasRole     bool
	handler     Handler
}

// Option configures a command built with New.
type Option func(*funcCommand)

// AllowAnonymous lets the command run without an authenticated identity.
func AllowAnonymous() Option {
	return func(c *funcCommand) { c.anonymous = true }
}

// RequireRole declares the minimum role for the command.
func RequireRole(role auth.Role) Option {
	return func(c *funcCommand) {
		c.role = role
		c.hasRole = true
	}
}

// New builds a Command from a handler function.
func New(name, description string, handler Handler, opts ...Option) Command {
	c := &funcCommand{name: name, description: description, handler: handler}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *funcCommand) Name() string        { return c.name }
func (c *funcCommand) Description() string { return c.description }
func (c *funcCommand) RequiresAuth() bool  { return !c.anonymous }

func (c *funcCommand) RequiredRole() (auth.Role, bool) { return c.role, c.hasRole }

func (c *funcCommand) Execute(ctx context.Context, req Request) error {
	return c.handler(ctx, req)
}

// As resolves a dispatched request to its concrete shape. A mismatch is a
// validation failure, not a panic.
func As[T Request](req Request) (T, error) {
	v, ok := req.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: unexpected arguments %T", erperr.ErrValidation, req)
	}
	return v, nil
}

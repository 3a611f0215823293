// Command clierp is the ERP command line. It wires the credential service,
// command registry, workflow engine and event bus, resolves the cached
// session into an identity and dispatches exactly one command per run.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"clierp.org/internal/audit"
	"clierp.org/internal/auth"
	"clierp.org/internal/command"
	"clierp.org/internal/config"
	"clierp.org/internal/crm"
	"clierp.org/internal/event"
	"clierp.org/internal/finance"
	"clierp.org/internal/hr"
	"clierp.org/internal/inventory"
	"clierp.org/internal/migrate"
	"clierp.org/internal/obs"
	"clierp.org/internal/session"
	"clierp.org/internal/store/pg"
	"clierp.org/internal/workflow"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	cfg      config.Config
	registry *command.Registry
	sessions *session.Manager
	auth     *auth.Service
	engine   *workflow.Engine
	out      *os.File
}

func run(args []string) error {
	global := pflag.NewFlagSet("clierp", pflag.ContinueOnError)
	global.SetInterspersed(false)
	verbose := global.BoolP("verbose", "v", false, "enable debug logging")
	cfgPath := global.String("config", "", "path to a YAML config file")
	strict := global.Bool("strict-roles", false, "refuse commands instead of warning when the role requirement is not met")
	if err := global.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	obs.SetVerbose(*verbose)
	obs.Init()
	obs.InitBuildInfo(version)
	if cfg.UsingDefaultSecret() {
		obs.Warn("using the built-in JWT secret, set CLIERP_AUTH_SECRET in production", nil)
	}

	a, cleanup, err := buildApp(cfg, *strict)
	if err != nil {
		return err
	}
	defer cleanup()

	rest := global.Args()
	if len(rest) == 0 {
		printUsage(a)
		return nil
	}

	name, req, err := parseArgs(a, rest)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.Timeout)
	defer cancel()
	ctx = audit.WithCorrelationID(ctx, "")
	if identity, err := a.sessions.Current(ctx); err == nil && identity != nil {
		ctx = auth.ContextWithIdentity(ctx, *identity)
	}

	return a.registry.Dispatch(ctx, name, req)
}

// buildApp wires the service graph. Without a database DSN the credential,
// personnel and finance services fall back to in-memory stores; the
// inventory and CRM commands need the database and are not registered.
func buildApp(cfg config.Config, strict bool) (*app, func(), error) {
	cleanup := func() {}
	out := os.Stdout

	var userStore auth.UserStore
	var hrStore hr.Store
	var finSvc finance.Service
	var store *pg.Store

	if cfg.Database.DSN != "" {
		s, err := pg.Open(cfg.Database.DSN, cfg.Database.MaxConns, cfg.Database.Timeout)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { _ = s.Close() }
		store = s
		userStore = pg.NewUserStore(s)
		hrStore = pg.NewHRStore(s)
		finSvc = pg.NewFinanceStore(s)
	} else {
		obs.Debug("no database configured, using in-memory stores", nil)
		userStore = auth.NewMemoryStore()
		hrStore = hr.NewMemoryStore()
		finSvc = finance.NewInMemory()
	}

	authSvc, err := auth.NewService(userStore, cfg.Auth.JWTSecret,
		auth.WithTokenTTL(cfg.Auth.TokenTTL),
		auth.WithBcryptCost(cfg.Auth.BcryptCost),
		auth.WithLoginRateLimit(rate.Every(time.Second), 5),
	)
	if err != nil {
		return nil, cleanup, err
	}

	bootCtx, cancel := context.WithTimeout(context.Background(), cfg.Database.Timeout)
	defer cancel()
	if err := authSvc.CreateDefaultAdmin(bootCtx, cfg.Auth.AdminPassword); err != nil {
		return nil, cleanup, err
	}

	sessions := session.NewManager(authSvc, "")
	hrSvc := hr.NewService(hrStore)

	engine := workflow.NewEngine()
	for _, wf := range workflow.DefaultWorkflows() {
		engine.RegisterWorkflow(wf)
	}
	for _, act := range hr.Actions(hrSvc, authSvc, finSvc) {
		engine.RegisterAction(act)
	}

	var opts []command.RegistryOption
	if strict {
		opts = append(opts, command.WithStrictRoles())
	}
	registry := command.NewRegistry(opts...)
	registry.RegisterAll(authCommands(authSvc, sessions, out)...)
	registry.RegisterAll(hr.Commands(hrSvc, out)...)
	registry.RegisterAll(finance.Commands(finSvc, out)...)
	registry.RegisterAll(systemCommands(engine, out)...)

	if store != nil {
		bus := event.NewDefaultBus()
		invSvc := inventory.NewService(store.DB(), bus)
		registry.RegisterAll(inventory.Commands(invSvc, out)...)
		registry.RegisterAll(crm.Commands(crm.NewService(store.DB()), out)...)
		mgr := migrate.NewManager(store.DB(), "ops/migrations/sql", "ops/migrations/seeds")
		registry.RegisterAll(migrateCommands(mgr, out)...)
	}

	return &app{
		cfg:      cfg,
		registry: registry,
		sessions: sessions,
		auth:     authSvc,
		engine:   engine,
		out:      out,
	}, cleanup, nil
}

func printUsage(a *app) {
	fmt.Fprintln(a.out, "usage: clierp [--verbose] [--config path] [--strict-roles] <command> [args]")
	fmt.Fprintln(a.out, "")
	fmt.Fprintln(a.out, "commands:")
	for _, cmd := range a.registry.List() {
		fmt.Fprintf(a.out, "  %-24s %s\n", cmd.Name(), cmd.Description())
	}
}

func errUsage(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

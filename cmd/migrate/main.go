package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/pflag"

	"clierp.org/internal/migrate"
)

func main() {
	log.SetFlags(0)
	var (
		dsn            = pflag.String("dsn", os.Getenv("CLIERP_DB_DSN"), "PostgreSQL DSN")
		migrationsPath = pflag.String("migrations", "ops/migrations/sql", "Path to SQL migrations")
		seedsPath      = pflag.String("seeds", "ops/migrations/seeds", "Path to SQL seeds")
	)
	pflag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via --dsn or CLIERP_DB_DSN")
	}
	if pflag.NArg() == 0 {
		log.Fatal("usage: migrate [up|down|seed|status]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	mgr := migrate.NewManager(db, *migrationsPath, *seedsPath)

	switch pflag.Arg(0) {
	case "up":
		err = mgr.Up(ctx)
	case "down":
		err = mgr.Down(ctx)
	case "seed":
		err = mgr.Seed(ctx)
	case "status":
		var history []string
		history, err = mgr.Status(ctx)
		if err == nil {
			for _, item := range history {
				fmt.Println(item)
			}
		}
	default:
		log.Fatalf("unknown command %q", pflag.Arg(0))
	}
	if err != nil {
		log.Fatalf("migrate %s: %v", pflag.Arg(0), err)
	}
}

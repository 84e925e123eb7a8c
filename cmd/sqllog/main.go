// Command sqllog runs SQL statements through a logged connection and prints
// their results.
//
//	sqllog --driver sqlite3 --dsn app.db --param @id=1 "SELECT * FROM users WHERE id = @id"
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql" // Register mysql driver
	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx driver
	_ "github.com/mattn/go-sqlite3"    // Register sqlite3 driver
	"github.com/spf13/pflag"

	"github.com/kroma-labs/sqllog-go/internal/config"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

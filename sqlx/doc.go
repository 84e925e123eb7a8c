// Package sqlx opens jmoiron/sqlx databases on top of the sqllog driver
// wrapper, so Get, Select, NamedExec and transactions are logged as
// execution scopes without a separate API.
//
// # Quick Start
//
//	import sqllogsqlx "github.com/kroma-labs/sqllog-go/sqlx"
//
//	db, err := sqllogsqlx.Connect(ctx, "postgres", dsn, logger,
//	    sqllog.WithDBSystem("postgresql"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
// # Struct Scanning
//
//	type User struct {
//	    ID   int    `db:"id"`
//	    Name string `db:"name"`
//	}
//
//	var user User
//	err := db.GetContext(ctx, &user, "SELECT id, name FROM users WHERE id = $1", 1)
//
// The lines written for the query are those of the underlying statement:
//
//	>> Started: "Query - SELECT id, name FROM users WHERE id = $1\n-- $1: '1' (Type = Int64)\n"
//	<< Finished: "Query - SELECT id, name FROM users WHERE id = $1\n-- $1: '1' (Type = Int64)\n" Successfully, (2ms)
//
// # Named Queries
//
// Named queries are bound by sqlx before they reach the driver, so the
// logged command shows the rebound text and positional parameters.
//
//	_, err := db.NamedExecContext(ctx,
//	    "INSERT INTO users (name) VALUES (:name)",
//	    map[string]any{"name": "alice"},
//	)
package sqlx

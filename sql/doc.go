// Package sql wraps a database/sql driver so every statement, transaction
// and ping executed through a *sql.DB is logged as an execution scope, with
// an OpenTelemetry span and a duration metric next to the log lines.
//
// # Quick Start
//
//	import sqllogsql "github.com/kroma-labs/sqllog-go/sql"
//
//	logger := sqllog.NewZerologLogger(zerolog.New(os.Stderr))
//	db, err := sqllogsql.Open("pgx", dsn, logger,
//	    sqllog.WithDBSystem("postgresql"),
//	    sqllog.WithDBName("myapp"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	// Use like standard *sql.DB
//	rows, err := db.QueryContext(ctx, "SELECT * FROM users WHERE id = $1", 42)
//
// The query above produces:
//
//	>> Started: "Query - {Command}"  Command="SELECT * FROM users WHERE id = $1\n-- $1: '42' (Type = Int64)\n"
//	<< Finished: "Query - {Command}" Successfully, ({duration}ms)
//
// # Driver Registration
//
// For more control, register a wrapped driver:
//
//	sqllogsql.Register("sqlite3-logged", &sqlite3.SQLiteDriver{}, logger)
//	db, _ := sql.Open("sqlite3-logged", "file:app.db")
//
// # Levels
//
// Started lines and unsuccessful finished lines are written at info level.
// Successful finished lines are written at debug level.
//
// # Pool Metrics
//
// RecordPoolMetrics exposes *sql.DB pool statistics as observable gauges:
//
//	err := sqllogsql.RecordPoolMetrics(db, otel.GetMeterProvider().Meter("myapp"))
package sql

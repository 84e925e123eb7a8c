// Package sqllog decorates database commands and connections so that every
// execution is logged as a scope: a started line before the call and a
// finished line after it, stating whether the call succeeded and how long
// it took.
//
// # Quick Start
//
//	logger := sqllog.NewZerologLogger(zerolog.New(os.Stderr).With().Timestamp().Logger())
//
//	conn := sqllog.WrapConnection(sqllog.NewConnection("sqlite3", "file:app.db"), logger)
//	if err := conn.Open(ctx); err != nil {
//	    return err
//	}
//	defer conn.Close()
//
//	cmd := conn.CreateCommand()
//	cmd.SetText("SELECT name FROM users WHERE id = @id")
//	cmd.Parameters().Add(&sqllog.Parameter{Name: "@id", Value: int32(42)})
//
//	name, err := cmd.ExecuteScalarContext(ctx)
//
// The call above produces:
//
//	>> Started: "ExecuteScalar - {Command}"  Command="SELECT name FROM users WHERE id = @id\n-- @id: '42' (Type = Int32, IsNullable = false)\n"
//	<< Finished: "ExecuteScalar - {Command}" Successfully, (3ms)
//
// Every line carries the "source_context" and "connection_id" properties.
// Commands created from one decorated connection share its connection id.
//
// # Levels
//
// Started lines are written at info level. A finished line is written at
// debug level when the call succeeded and at info level otherwise, so an
// info-level logger shows only the failures next to their start.
//
// # Native Implementation
//
// NewConnection returns a Connection over any registered database/sql
// driver. The dialects of go-sql-driver/mysql, pgx and go-sqlite3 also report
// the data source, the current database and the server version.
//
// # Telemetry
//
// The decorators start an OpenTelemetry client span per execution and record
// the "db.client.operation.duration" histogram. Providers and attributes are
// set with Option values such as WithTracerProvider and WithDBSystem.
package sqllog

package sql

import (
	"context"
	"database/sql/driver"
)

// Compile-time interface checks.
var (
	_ driver.Stmt             = (*loggingStmt)(nil)
	_ driver.StmtExecContext  = (*loggingStmt)(nil)
	_ driver.StmtQueryContext = (*loggingStmt)(nil)
)

// loggingStmt wraps a prepared driver.Stmt. Preparing is not logged; each
// execution is.
type loggingStmt struct {
	stmt  driver.Stmt
	conn  *loggingConn
	query string
}

func newLoggingStmt(stmt driver.Stmt, conn *loggingConn, query string) *loggingStmt {
	return &loggingStmt{
		stmt:  stmt,
		conn:  conn,
		query: query,
	}
}

// Close implements driver.Stmt.
func (s *loggingStmt) Close() error {
	return s.stmt.Close()
}

// NumInput implements driver.Stmt.
func (s *loggingStmt) NumInput() int {
	return s.stmt.NumInput()
}

// Exec implements driver.Stmt.
// Deprecated: Use ExecContext instead. This exists for driver.Stmt interface compatibility.
func (s *loggingStmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), valueToNamedValue(args))
}

// Query implements driver.Stmt.
// Deprecated: Use QueryContext instead. This exists for driver.Stmt interface compatibility.
func (s *loggingStmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), valueToNamedValue(args))
}

// ExecContext implements driver.StmtExecContext.
func (s *loggingStmt) ExecContext(
	ctx context.Context,
	args []driver.NamedValue,
) (result driver.Result, err error) {
	exec := s.conn.cfg.beginStatement(ctx, s.conn.logger, "Exec", s.query, args)
	defer exec.end()

	if execer, ok := s.stmt.(driver.StmtExecContext); ok {
		result, err = execer.ExecContext(exec.ctx, args)
	} else {
		result, err = s.stmt.Exec(namedValueToValue(args)) //nolint:staticcheck // Fallback for older drivers
	}
	exec.finish(err)
	return result, err
}

// QueryContext implements driver.StmtQueryContext.
func (s *loggingStmt) QueryContext(
	ctx context.Context,
	args []driver.NamedValue,
) (rows driver.Rows, err error) {
	exec := s.conn.cfg.beginStatement(ctx, s.conn.logger, "Query", s.query, args)
	defer exec.end()

	if queryer, ok := s.stmt.(driver.StmtQueryContext); ok {
		rows, err = queryer.QueryContext(exec.ctx, args)
	} else {
		rows, err = s.stmt.Query(namedValueToValue(args)) //nolint:staticcheck // Fallback for older drivers
	}
	exec.finish(err)
	return rows, err
}

func valueToNamedValue(values []driver.Value) []driver.NamedValue {
	named := make([]driver.NamedValue, len(values))
	for i, v := range values {
		named[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return named
}

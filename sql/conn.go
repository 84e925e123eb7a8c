package sql

import (
	"context"
	"database/sql"
	"database/sql/driver"

	"github.com/google/uuid"

	"github.com/kroma-labs/sqllog-go/sqllog"
)

// Compile-time interface checks.
var (
	_ driver.Conn               = (*loggingConn)(nil)
	_ driver.ConnPrepareContext = (*loggingConn)(nil)
	_ driver.ConnBeginTx        = (*loggingConn)(nil)
	_ driver.ExecerContext      = (*loggingConn)(nil)
	_ driver.QueryerContext     = (*loggingConn)(nil)
	_ driver.Pinger             = (*loggingConn)(nil)
	_ driver.SessionResetter    = (*loggingConn)(nil)
	_ driver.Validator          = (*loggingConn)(nil)
	_ driver.NamedValueChecker  = (*loggingConn)(nil)
)

// loggingConn wraps a driver.Conn. Its logger carries a connection id shared
// by the statements and transactions it creates.
type loggingConn struct {
	conn   driver.Conn
	cfg    *config
	logger sqllog.Logger
}

func newLoggingConn(conn driver.Conn, cfg *config) *loggingConn {
	return &loggingConn{
		conn:   conn,
		cfg:    cfg,
		logger: cfg.logger.With(sqllog.ConnectionIDKey, uuid.NewString()),
	}
}

// Prepare implements driver.Conn.
func (c *loggingConn) Prepare(query string) (driver.Stmt, error) {
	stmt, err := c.conn.Prepare(query)
	if err != nil {
		return nil, err
	}
	return newLoggingStmt(stmt, c, query), nil
}

// Close implements driver.Conn.
func (c *loggingConn) Close() error {
	return c.conn.Close()
}

// Begin implements driver.Conn.
// Deprecated: Use BeginTx instead. This exists for driver.Conn interface compatibility.
func (c *loggingConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// PrepareContext implements driver.ConnPrepareContext.
func (c *loggingConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	var stmt driver.Stmt
	var err error

	if preparer, ok := c.conn.(driver.ConnPrepareContext); ok {
		stmt, err = preparer.PrepareContext(ctx, query)
	} else {
		stmt, err = c.conn.Prepare(query)
	}

	if err != nil {
		return nil, err
	}
	return newLoggingStmt(stmt, c, query), nil
}

// BeginTx implements driver.ConnBeginTx.
func (c *loggingConn) BeginTx(ctx context.Context, opts driver.TxOptions) (tx driver.Tx, err error) {
	level := sql.IsolationLevel(opts.Isolation)
	exec := c.cfg.begin(ctx, c.logger, "BEGIN", "BeginTransaction - {IsolationLevel}", level.String())
	defer exec.end()

	if beginner, ok := c.conn.(driver.ConnBeginTx); ok {
		tx, err = beginner.BeginTx(exec.ctx, opts)
	} else {
		tx, err = c.conn.Begin() //nolint:staticcheck // Fallback for older drivers
	}
	exec.finish(err)

	if err != nil {
		return nil, err
	}
	return newLoggingTx(tx, c), nil
}

// ExecContext implements driver.ExecerContext.
func (c *loggingConn) ExecContext(
	ctx context.Context,
	query string,
	args []driver.NamedValue,
) (driver.Result, error) {
	execer, ok := c.conn.(driver.ExecerContext)
	if !ok {
		// Fallback: database/sql prepares and executes a statement
		return nil, driver.ErrSkip
	}

	exec := c.cfg.beginStatement(ctx, c.logger, "Exec", query, args)
	defer exec.end()

	result, err := execer.ExecContext(exec.ctx, query, args)
	exec.finish(err)
	return result, err
}

// QueryContext implements driver.QueryerContext.
func (c *loggingConn) QueryContext(
	ctx context.Context,
	query string,
	args []driver.NamedValue,
) (driver.Rows, error) {
	queryer, ok := c.conn.(driver.QueryerContext)
	if !ok {
		return nil, driver.ErrSkip
	}

	exec := c.cfg.beginStatement(ctx, c.logger, "Query", query, args)
	defer exec.end()

	rows, err := queryer.QueryContext(exec.ctx, query, args)
	exec.finish(err)
	return rows, err
}

// Ping implements driver.Pinger.
func (c *loggingConn) Ping(ctx context.Context) error {
	exec := c.cfg.begin(ctx, c.logger, "PING", "Ping")
	defer exec.end()

	var err error
	if pinger, ok := c.conn.(driver.Pinger); ok {
		err = pinger.Ping(exec.ctx)
	}
	exec.finish(err)
	return err
}

// ResetSession implements driver.SessionResetter.
func (c *loggingConn) ResetSession(ctx context.Context) error {
	if resetter, ok := c.conn.(driver.SessionResetter); ok {
		return resetter.ResetSession(ctx)
	}
	return nil
}

// IsValid implements driver.Validator.
func (c *loggingConn) IsValid() bool {
	if validator, ok := c.conn.(driver.Validator); ok {
		return validator.IsValid()
	}
	return true
}

// CheckNamedValue implements driver.NamedValueChecker.
func (c *loggingConn) CheckNamedValue(nv *driver.NamedValue) error {
	if checker, ok := c.conn.(driver.NamedValueChecker); ok {
		return checker.CheckNamedValue(nv)
	}
	return driver.ErrSkip
}

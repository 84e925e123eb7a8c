package sqllog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Compile-time interface check.
var _ Connection = (*NativeConnection)(nil)

// DefaultConnectionTimeout bounds Open when the caller's context has no
// earlier deadline.
const DefaultConnectionTimeout = 15 * time.Second

// NativeConnection is a Connection backed by one database/sql session.
//
// Open creates a *sqlx.DB for the driver and pins a single *sqlx.Conn, so
// session state such as the current database survives between commands.
// A NativeConnection is used by one goroutine at a time.
type NativeConnection struct {
	driverName string
	dsn        string
	timeout    time.Duration
	dialect    dialect

	db            *sqlx.DB
	conn          *sqlx.Conn
	state         ConnectionState
	dataSource    string
	database      string
	serverVersion string
}

// NewConnection returns a closed connection for a registered database/sql
// driver. Nothing is dialed until Open.
//
//	conn := sqllog.NewConnection("sqlite3", "file:app.db")
func NewConnection(driverName, dsn string) *NativeConnection {
	c := &NativeConnection{
		driverName: driverName,
		timeout:    DefaultConnectionTimeout,
		dialect:    dialectFor(driverName),
	}
	c.setDSN(dsn)
	return c
}

// WithConnectionTimeout sets the time Open may take; 0 disables the bound.
func (c *NativeConnection) WithConnectionTimeout(timeout time.Duration) *NativeConnection {
	c.timeout = timeout
	return c
}

func (c *NativeConnection) setDSN(dsn string) {
	c.dsn = dsn
	// An unparsable DSN leaves the descriptive fields empty; Open reports
	// the driver's own error.
	c.dataSource, c.database, _ = c.dialect.parseDSN(dsn)
}

// DriverName returns the database/sql driver the connection opens.
func (c *NativeConnection) DriverName() string {
	return c.driverName
}

func (c *NativeConnection) ConnectionString() string {
	return c.dsn
}

// SetConnectionString replaces the DSN. It fails with ErrConnectionOpen
// while the connection is open.
func (c *NativeConnection) SetConnectionString(dsn string) error {
	if c.state == StateOpen {
		return ErrConnectionOpen
	}
	c.setDSN(dsn)
	return nil
}

func (c *NativeConnection) ConnectionTimeout() time.Duration {
	return c.timeout
}

func (c *NativeConnection) Database() string {
	return c.database
}

func (c *NativeConnection) State() ConnectionState {
	return c.state
}

func (c *NativeConnection) DataSource() string {
	return c.dataSource
}

// ServerVersion returns the version reported by the server at Open, or ""
// when the driver has no version query.
func (c *NativeConnection) ServerVersion() string {
	return c.serverVersion
}

// Open connects and pins a session. A broken connection must be closed
// before it is opened again.
func (c *NativeConnection) Open(ctx context.Context) error {
	if c.state != StateClosed {
		return ErrConnectionOpen
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	db, err := sqlx.Open(c.driverName, c.dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	conn, err := db.Connx(ctx)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to connect: %w", err)
	}

	var version string
	if c.dialect.versionQuery != "" {
		if err := conn.QueryRowxContext(ctx, c.dialect.versionQuery).Scan(&version); err != nil {
			conn.Close()
			db.Close()
			return fmt.Errorf("failed to query server version: %w", err)
		}
	}

	c.db, c.conn = db, conn
	c.serverVersion = version
	c.state = StateOpen
	return nil
}

// Close releases the session. Closing a closed connection is a no-op.
func (c *NativeConnection) Close() error {
	if c.state == StateClosed {
		return nil
	}

	err := errors.Join(c.conn.Close(), c.db.Close())
	c.db, c.conn = nil, nil
	c.serverVersion = ""
	c.state = StateClosed
	// Reset the database a ChangeDatabase may have switched.
	c.setDSN(c.dsn)
	return err
}

// ChangeDatabase switches the session's current database. Drivers without
// a session-level switch return ErrChangeDatabaseUnsupported.
func (c *NativeConnection) ChangeDatabase(ctx context.Context, name string) error {
	if c.state != StateOpen {
		return ErrConnectionClosed
	}

	stmt, err := c.dialect.changeDatabase(name)
	if err != nil {
		return err
	}
	if _, err := c.conn.ExecContext(ctx, stmt); err != nil {
		c.markBroken(err)
		return err
	}

	c.database = name
	return nil
}

// BeginTransaction starts a transaction on the pinned session.
func (c *NativeConnection) BeginTransaction(ctx context.Context, level sql.IsolationLevel) (Transaction, error) {
	if c.state != StateOpen {
		return nil, ErrConnectionClosed
	}

	tx, err := c.conn.BeginTxx(ctx, &sql.TxOptions{Isolation: level})
	if err != nil {
		c.markBroken(err)
		return nil, err
	}
	return &NativeTransaction{tx: tx, conn: c, level: level}, nil
}

// CreateCommand returns a text command bound to this connection.
func (c *NativeConnection) CreateCommand() Command {
	return newNativeCommand(c)
}

// markBroken flags the session as unusable when the driver reports a dead
// connection.
func (c *NativeConnection) markBroken(err error) {
	if errors.Is(err, sql.ErrConnDone) {
		c.state = StateBroken
	}
}

// session returns the pinned connection for command execution.
func (c *NativeConnection) session() (*sqlx.Conn, error) {
	if c.state != StateOpen {
		return nil, ErrConnectionClosed
	}
	return c.conn, nil
}

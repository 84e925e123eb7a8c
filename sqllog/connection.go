package sqllog

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/kroma-labs/sqllog-go/internal/telemetry"
)

// Compile-time interface check.
var _ Connection = (*LoggingConnection)(nil)

// ConnectionIDKey is the property identifying a decorated connection's lines.
const ConnectionIDKey = "connection_id"

// LoggingConnection is a Connection whose commands are logged.
// Every member other than CreateCommand is forwarded unchanged.
type LoggingConnection struct {
	conn Connection
	// base is the logger as given, before the connection id is attached.
	base   Logger
	logger Logger
	cfg    *telemetry.Config
}

// WrapConnection returns conn instrumented with logger.
//
//	native := sqllog.NewConnection("mysql", dsn)
//	conn := sqllog.WrapConnection(native, sqllog.NewZerologLogger(log.Logger),
//	    sqllog.WithDBSystem("mysql"),
//	)
//	if err := conn.Open(ctx); err != nil {
//	    return err
//	}
//	defer conn.Close()
func WrapConnection(conn Connection, logger Logger, opts ...Option) *LoggingConnection {
	return newLoggingConnection(conn, logger, newConfig(opts...))
}

func newLoggingConnection(conn Connection, logger Logger, cfg *telemetry.Config) *LoggingConnection {
	return &LoggingConnection{
		conn:   conn,
		base:   logger,
		logger: logger.With(ConnectionIDKey, uuid.NewString()),
		cfg:    cfg,
	}
}

// Unwrap returns the wrapped connection.
func (c *LoggingConnection) Unwrap() Connection {
	return c.conn
}

func (c *LoggingConnection) ConnectionString() string {
	return c.conn.ConnectionString()
}

func (c *LoggingConnection) SetConnectionString(dsn string) error {
	return c.conn.SetConnectionString(dsn)
}

func (c *LoggingConnection) ConnectionTimeout() time.Duration {
	return c.conn.ConnectionTimeout()
}

func (c *LoggingConnection) Database() string {
	return c.conn.Database()
}

func (c *LoggingConnection) State() ConnectionState {
	return c.conn.State()
}

func (c *LoggingConnection) DataSource() string {
	return c.conn.DataSource()
}

func (c *LoggingConnection) ServerVersion() string {
	return c.conn.ServerVersion()
}

func (c *LoggingConnection) Open(ctx context.Context) error {
	return c.conn.Open(ctx)
}

func (c *LoggingConnection) Close() error {
	return c.conn.Close()
}

func (c *LoggingConnection) ChangeDatabase(ctx context.Context, name string) error {
	return c.conn.ChangeDatabase(ctx, name)
}

func (c *LoggingConnection) BeginTransaction(ctx context.Context, level sql.IsolationLevel) (Transaction, error) {
	return c.conn.BeginTransaction(ctx, level)
}

// CreateCommand creates a command on the wrapped connection and decorates it
// with a logger attributed to the command. The command reports c as its
// connection.
func (c *LoggingConnection) CreateCommand() Command {
	cmd := newLoggingCommand(c.conn.CreateCommand(), c.base, c.logger, c.cfg)
	cmd.conn = c
	return cmd
}

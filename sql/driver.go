package sql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/kroma-labs/sqllog-go/internal/telemetry"
	"github.com/kroma-labs/sqllog-go/sqllog"
)

// scope is the instrumentation scope name for OpenTelemetry.
const scope = "github.com/kroma-labs/sqllog-go/sql"

// driverContext is the source context of every logger used by the wrapper.
const driverContext = "sqllog.sql"

// Compile-time interface checks.
var (
	_ driver.Driver        = (*loggingDriver)(nil)
	_ driver.DriverContext = (*loggingDriver)(nil)
	_ driver.Connector     = (*loggingConnector)(nil)
	_ driver.Connector     = (*dsnConnector)(nil)
)

// config is shared by every connection a wrapped driver opens.
type config struct {
	logger    sqllog.Logger
	telemetry *telemetry.Config
}

func newConfig(logger sqllog.Logger, opts ...sqllog.Option) *config {
	return &config{
		logger:    logger.ForContext(driverContext),
		telemetry: telemetry.NewConfig(scope, opts...),
	}
}

// Open looks up the registered driver, wraps it and opens a *sql.DB on top.
// Nothing is registered with database/sql, so Open may be called any number
// of times with different loggers.
func Open(driverName, dsn string, logger sqllog.Logger, opts ...sqllog.Option) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	original := db.Driver()
	db.Close()

	return OpenDB(original, dsn, logger, opts...)
}

// OpenDB wraps d and opens a *sql.DB for dsn.
func OpenDB(d driver.Driver, dsn string, logger sqllog.Logger, opts ...sqllog.Option) (*sql.DB, error) {
	wrapped := newLoggingDriver(d, logger, opts...)

	connector, err := wrapped.OpenConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open connector: %w", err)
	}
	return sql.OpenDB(connector), nil
}

// WrapDriver wraps a driver.Driver with execution logging.
func WrapDriver(d driver.Driver, logger sqllog.Logger, opts ...sqllog.Option) driver.Driver {
	return newLoggingDriver(d, logger, opts...)
}

// Register registers a wrapped driver under name. Like sql.Register it
// panics when name is already taken.
func Register(name string, d driver.Driver, logger sqllog.Logger, opts ...sqllog.Option) {
	sql.Register(name, WrapDriver(d, logger, opts...))
}

type loggingDriver struct {
	driver driver.Driver
	cfg    *config
}

func newLoggingDriver(d driver.Driver, logger sqllog.Logger, opts ...sqllog.Option) *loggingDriver {
	return &loggingDriver{
		driver: d,
		cfg:    newConfig(logger, opts...),
	}
}

// Open implements driver.Driver.
func (d *loggingDriver) Open(name string) (driver.Conn, error) {
	conn, err := d.driver.Open(name)
	if err != nil {
		return nil, err
	}
	return newLoggingConn(conn, d.cfg), nil
}

// OpenConnector implements driver.DriverContext.
func (d *loggingDriver) OpenConnector(name string) (driver.Connector, error) {
	if dc, ok := d.driver.(driver.DriverContext); ok {
		connector, err := dc.OpenConnector(name)
		if err != nil {
			return nil, err
		}
		return &loggingConnector{connector: connector, driver: d}, nil
	}
	// Fallback for drivers that don't implement DriverContext
	return &dsnConnector{dsn: name, driver: d}, nil
}

type loggingConnector struct {
	connector driver.Connector
	driver    *loggingDriver
}

// Connect implements driver.Connector.
func (c *loggingConnector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := c.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return newLoggingConn(conn, c.driver.cfg), nil
}

// Driver implements driver.Connector.
func (c *loggingConnector) Driver() driver.Driver {
	return c.driver
}

// dsnConnector is a fallback connector for drivers that don't implement DriverContext.
type dsnConnector struct {
	dsn    string
	driver *loggingDriver
}

// Connect implements driver.Connector.
func (c *dsnConnector) Connect(_ context.Context) (driver.Conn, error) {
	return c.driver.Open(c.dsn)
}

// Driver implements driver.Connector.
func (c *dsnConnector) Driver() driver.Driver {
	return c.driver
}

package sqlx

import (
	"context"
	"database/sql/driver"
	"fmt"

	"github.com/jmoiron/sqlx"

	sqllogsql "github.com/kroma-labs/sqllog-go/sql"
	"github.com/kroma-labs/sqllog-go/sqllog"
)

// Open opens a *sqlx.DB whose statements are logged by the sqllog driver
// wrapper. Nothing is dialed until the first statement.
//
// Example:
//
//	db, err := sqllogsqlx.Open("postgres", dsn, logger,
//	    sqllog.WithDBSystem("postgresql"),
//	    sqllog.WithDBName("mydb"),
//	)
func Open(driverName, dsn string, logger sqllog.Logger, opts ...sqllog.Option) (*sqlx.DB, error) {
	db, err := sqllogsql.Open(driverName, dsn, logger, opts...)
	if err != nil {
		return nil, err
	}

	return sqlx.NewDb(db, driverName), nil
}

// Connect opens and verifies a database connection.
// It is equivalent to Open followed by Ping; the ping is logged too.
func Connect(ctx context.Context, driverName, dsn string, logger sqllog.Logger, opts ...sqllog.Option) (*sqlx.DB, error) {
	db, err := Open(driverName, dsn, logger, opts...)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// NewDB opens a logged *sqlx.DB over a driver instance instead of a
// registered driver name. driverName selects sqlx's bind style.
//
// Example:
//
//	db, err := sqllogsqlx.NewDB(&sqlite3.SQLiteDriver{}, "sqlite3", "file:app.db", logger)
func NewDB(d driver.Driver, driverName, dsn string, logger sqllog.Logger, opts ...sqllog.Option) (*sqlx.DB, error) {
	db, err := sqllogsql.OpenDB(d, dsn, logger, opts...)
	if err != nil {
		return nil, err
	}

	return sqlx.NewDb(db, driverName), nil
}

// MustConnect is like Connect but panics on error.
func MustConnect(ctx context.Context, driverName, dsn string, logger sqllog.Logger, opts ...sqllog.Option) *sqlx.DB {
	db, err := Connect(ctx, driverName, dsn, logger, opts...)
	if err != nil {
		panic(err)
	}
	return db
}

// MustOpen is like Open but panics on error.
func MustOpen(driverName, dsn string, logger sqllog.Logger, opts ...sqllog.Option) *sqlx.DB {
	db, err := Open(driverName, dsn, logger, opts...)
	if err != nil {
		panic(err)
	}
	return db
}

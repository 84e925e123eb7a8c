package sqllog

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

// dialect captures what the native implementation needs to know about a
// driver beyond database/sql.
type dialect struct {
	driverName string

	// versionQuery returns the server version as a single value.
	versionQuery string

	// namedParams is set when the driver accepts sql.NamedArg.
	namedParams bool

	// parseDSN extracts the data source and the initial database.
	parseDSN func(dsn string) (dataSource, database string, err error)

	// changeDatabase returns the statement switching the session to name.
	changeDatabase func(name string) (string, error)
}

func dialectFor(driverName string) dialect {
	d := dialect{
		driverName:     driverName,
		parseDSN:       func(string) (string, string, error) { return "", "", nil },
		changeDatabase: unsupportedChangeDatabase,
	}

	switch driverName {
	case "mysql":
		d.versionQuery = "SELECT VERSION()"
		d.parseDSN = parseMySQLDSN
		d.changeDatabase = func(name string) (string, error) {
			return "USE `" + strings.ReplaceAll(name, "`", "``") + "`", nil
		}
	case "pgx", "pgx/v5", "postgres", "postgresql":
		d.versionQuery = "SHOW server_version"
		d.parseDSN = parsePostgresDSN
	case "sqlite3", "sqlite":
		d.versionQuery = "SELECT sqlite_version()"
		d.namedParams = true
		d.parseDSN = parseSQLiteDSN
	}

	return d
}

func unsupportedChangeDatabase(string) (string, error) {
	return "", ErrChangeDatabaseUnsupported
}

func parseMySQLDSN(dsn string) (string, string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse mysql dsn: %w", err)
	}
	return cfg.Addr, cfg.DBName, nil
}

func parsePostgresDSN(dsn string) (string, string, error) {
	cfg, err := pgconn.ParseConfig(dsn)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse postgres dsn: %w", err)
	}
	return net.JoinHostPort(cfg.Host, strconv.Itoa(int(cfg.Port))), cfg.Database, nil
}

// parseSQLiteDSN reports the database file and the "main" schema.
func parseSQLiteDSN(dsn string) (string, string, error) {
	file := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(file, '?'); i >= 0 {
		file = file[:i]
	}
	return file, "main", nil
}

// procedureCall returns the statement calling procedure name with n
// arguments, in the driver's bind style.
func (d dialect) procedureCall(name string, n int) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
	return sqlx.Rebind(sqlx.BindType(d.driverName), "CALL "+name+"("+placeholders+")")
}

// tableDirect returns the statement selecting every row of table.
func (d dialect) tableDirect(table string) string {
	return "SELECT * FROM " + table
}

package sqllog

import (
	"context"
	"database/sql"
	"time"
)

// CommandType tells how a command's text is interpreted.
type CommandType int

const (
	// CommandTypeText runs the text as a SQL statement.
	CommandTypeText CommandType = iota
	// CommandTypeStoredProcedure calls the procedure named by the text with
	// the command's parameters.
	CommandTypeStoredProcedure
	// CommandTypeTableDirect selects every row of the table named by the text.
	CommandTypeTableDirect
)

// String implements fmt.Stringer.
func (t CommandType) String() string {
	switch t {
	case CommandTypeText:
		return "Text"
	case CommandTypeStoredProcedure:
		return "StoredProcedure"
	case CommandTypeTableDirect:
		return "TableDirect"
	default:
		return "Unknown"
	}
}

// CommandBehavior is a set of hints for ExecuteReader.
type CommandBehavior uint

const (
	BehaviorDefault      CommandBehavior = 0
	BehaviorSingleResult CommandBehavior = 1 << (iota - 1)
	BehaviorSchemaOnly
	BehaviorKeyInfo
	BehaviorSingleRow
	BehaviorSequentialAccess
	BehaviorCloseConnection
)

// Has reports whether all flags in f are set.
func (b CommandBehavior) Has(f CommandBehavior) bool {
	return b&f == f
}

// ConnectionState is the lifecycle state of a connection.
type ConnectionState int

const (
	StateClosed ConnectionState = iota
	StateOpen
	StateBroken
)

// String implements fmt.Stringer.
func (s ConnectionState) String() string {
	switch s {
	case StateClosed:
		return "Closed"
	case StateOpen:
		return "Open"
	case StateBroken:
		return "Broken"
	default:
		return "Unknown"
	}
}

// Reader iterates the rows produced by ExecuteReader.
// *sql.Rows and *sqlx.Rows satisfy it.
type Reader interface {
	Columns() ([]string, error)
	Next() bool
	NextResultSet() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// Command is a database command: text, parameters and execution.
//
// The Context variants of the execute operations honor the context's
// deadline and cancellation; the plain variants run with
// context.Background().
type Command interface {
	Text() string
	SetText(text string)
	Timeout() time.Duration
	SetTimeout(timeout time.Duration)
	Type() CommandType
	SetType(t CommandType)

	Parameters() *Parameters
	CreateParameter() *Parameter

	Transaction() Transaction
	SetTransaction(tx Transaction)
	Connection() Connection
	SetConnection(conn Connection)

	Prepare(ctx context.Context) error
	Cancel()

	ExecuteNonQuery() (int64, error)
	ExecuteNonQueryContext(ctx context.Context) (int64, error)
	ExecuteReader(behavior CommandBehavior) (Reader, error)
	ExecuteReaderContext(ctx context.Context, behavior CommandBehavior) (Reader, error)
	ExecuteScalar() (any, error)
	ExecuteScalarContext(ctx context.Context) (any, error)

	// Close releases the command's resources, such as a prepared statement.
	Close() error
}

// Connection is a single database session.
type Connection interface {
	ConnectionString() string
	SetConnectionString(dsn string) error
	ConnectionTimeout() time.Duration
	Database() string
	State() ConnectionState
	DataSource() string
	ServerVersion() string

	Open(ctx context.Context) error
	Close() error
	ChangeDatabase(ctx context.Context, name string) error
	BeginTransaction(ctx context.Context, level sql.IsolationLevel) (Transaction, error)
	CreateCommand() Command
}

// Transaction is a transaction started by a Connection.
type Transaction interface {
	Connection() Connection
	IsolationLevel() sql.IsolationLevel
	Commit() error
	Rollback() error
}

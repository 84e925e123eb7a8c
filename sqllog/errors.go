package sqllog

import "errors"

var (
	// ErrConnectionClosed is returned when a command runs on a closed connection.
	ErrConnectionClosed = errors.New("sqllog: connection is closed")

	// ErrConnectionOpen is returned by operations that need a closed connection.
	ErrConnectionOpen = errors.New("sqllog: connection is already open")

	// ErrNoConnection is returned when a command has no connection.
	ErrNoConnection = errors.New("sqllog: command has no connection")

	// ErrUnsupportedConnection is returned when a native command is bound to
	// a connection it cannot execute on.
	ErrUnsupportedConnection = errors.New("sqllog: unsupported connection type")

	// ErrUnsupportedTransaction is returned when a native command is bound to
	// a transaction it cannot execute in.
	ErrUnsupportedTransaction = errors.New("sqllog: unsupported transaction type")

	// ErrChangeDatabaseUnsupported is returned by ChangeDatabase on drivers
	// that cannot switch databases within a session.
	ErrChangeDatabaseUnsupported = errors.New("sqllog: change database is not supported by driver")

	// ErrUnknownDbType is returned when a parameter's type cannot be inferred.
	ErrUnknownDbType = errors.New("sqllog: no db type for value")
)

package sqllog

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// Compile-time interface check.
var _ Transaction = (*NativeTransaction)(nil)

// NativeTransaction is a Transaction started by a NativeConnection.
type NativeTransaction struct {
	tx    *sqlx.Tx
	conn  *NativeConnection
	level sql.IsolationLevel
}

func (t *NativeTransaction) Connection() Connection {
	return t.conn
}

func (t *NativeTransaction) IsolationLevel() sql.IsolationLevel {
	return t.level
}

func (t *NativeTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *NativeTransaction) Rollback() error {
	return t.tx.Rollback()
}

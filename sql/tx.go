package sql

import (
	"context"
	"database/sql/driver"
)

// Compile-time interface check.
var _ driver.Tx = (*loggingTx)(nil)

type loggingTx struct {
	tx   driver.Tx
	conn *loggingConn
}

func newLoggingTx(tx driver.Tx, conn *loggingConn) *loggingTx {
	return &loggingTx{
		tx:   tx,
		conn: conn,
	}
}

// Commit implements driver.Tx.
func (t *loggingTx) Commit() error {
	exec := t.conn.cfg.begin(context.Background(), t.conn.logger, "COMMIT", "Commit")
	defer exec.end()

	err := t.tx.Commit()
	exec.finish(err)
	return err
}

// Rollback implements driver.Tx.
func (t *loggingTx) Rollback() error {
	exec := t.conn.cfg.begin(context.Background(), t.conn.logger, "ROLLBACK", "Rollback")
	defer exec.end()

	err := t.tx.Rollback()
	exec.finish(err)
	return err
}

package sqllog

import (
	"errors"

	"github.com/jmoiron/sqlx"
)

// Compile-time interface check.
var _ Reader = (*commandReader)(nil)

// commandReader applies the CommandBehavior flags the native implementation
// honors on top of *sqlx.Rows. The embedded rows also expose sqlx's
// StructScan, MapScan and SliceScan.
type commandReader struct {
	*sqlx.Rows

	behavior  CommandBehavior
	release   func()
	closeConn func() error
	read      bool
	closed    bool
}

func newCommandReader(rows *sqlx.Rows, behavior CommandBehavior, release func(), closeConn func() error) *commandReader {
	return &commandReader{
		Rows:      rows,
		behavior:  behavior,
		release:   release,
		closeConn: closeConn,
	}
}

// Next advances to the next row. With BehaviorSingleRow only the first row
// is returned.
func (r *commandReader) Next() bool {
	if r.read && r.behavior.Has(BehaviorSingleRow) {
		return false
	}
	if !r.Rows.Next() {
		return false
	}
	r.read = true
	return true
}

// NextResultSet advances to the next result set. With BehaviorSingleResult
// or BehaviorSingleRow there is none.
func (r *commandReader) NextResultSet() bool {
	if r.behavior.Has(BehaviorSingleResult) || r.behavior.Has(BehaviorSingleRow) {
		return false
	}
	r.read = false
	return r.Rows.NextResultSet()
}

// Close closes the rows, ends the execution's context and, with
// BehaviorCloseConnection, closes the connection.
func (r *commandReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	err := r.Rows.Close()
	r.release()
	if r.closeConn != nil {
		err = errors.Join(err, r.closeConn())
	}
	return err
}

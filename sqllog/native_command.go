package sqllog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
)

// Compile-time interface check.
var _ Command = (*NativeCommand)(nil)

// DefaultCommandTimeout bounds each execution of a new command.
const DefaultCommandTimeout = 30 * time.Second

// NativeCommand is a Command executed through database/sql on the session
// of a NativeConnection.
//
// Parameters are bound positionally, or by name on drivers that accept
// sql.NamedArg. Output and InputOutput parameters are bound as sql.Out and
// receive the driver's value in Parameter.Value.
type NativeCommand struct {
	conn    Connection
	tx      Transaction
	text    string
	timeout time.Duration
	typ     CommandType
	params  Parameters

	prepared     *sqlx.Stmt
	preparedText string
	preparedOn   *sqlx.Conn

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewCommand returns a text command bound to conn, which may be nil.
func NewCommand(text string, conn Connection) *NativeCommand {
	return &NativeCommand{
		conn:    conn,
		text:    text,
		timeout: DefaultCommandTimeout,
	}
}

func newNativeCommand(conn *NativeConnection) *NativeCommand {
	return NewCommand("", conn)
}

func (c *NativeCommand) Text() string {
	return c.text
}

func (c *NativeCommand) SetText(text string) {
	c.text = text
}

// Timeout returns the per-execution timeout; 0 means none.
func (c *NativeCommand) Timeout() time.Duration {
	return c.timeout
}

func (c *NativeCommand) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

func (c *NativeCommand) Type() CommandType {
	return c.typ
}

func (c *NativeCommand) SetType(t CommandType) {
	c.typ = t
}

func (c *NativeCommand) Parameters() *Parameters {
	return &c.params
}

// CreateParameter returns a new input parameter. It is not added to the
// command; use Parameters().Add.
func (c *NativeCommand) CreateParameter() *Parameter {
	return &Parameter{}
}

func (c *NativeCommand) Transaction() Transaction {
	return c.tx
}

func (c *NativeCommand) SetTransaction(tx Transaction) {
	c.tx = tx
}

func (c *NativeCommand) Connection() Connection {
	return c.conn
}

func (c *NativeCommand) SetConnection(conn Connection) {
	c.conn = conn
}

// Prepare creates a prepared statement for the current text on the
// connection's session. It is reused until the text or type changes.
func (c *NativeCommand) Prepare(ctx context.Context) error {
	nc, err := nativeConnectionOf(c.conn)
	if err != nil {
		return err
	}
	session, err := nc.session()
	if err != nil {
		return err
	}

	query := c.statement(nc.dialect)
	stmt, err := session.PreparexContext(ctx, query)
	if err != nil {
		return err
	}

	c.releasePrepared()
	c.prepared, c.preparedText, c.preparedOn = stmt, query, session
	return nil
}

// Cancel aborts the execution in flight, if any. It may be called from
// another goroutine.
func (c *NativeCommand) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

// Close releases the prepared statement.
func (c *NativeCommand) Close() error {
	return c.releasePrepared()
}

func (c *NativeCommand) releasePrepared() error {
	if c.prepared == nil {
		return nil
	}
	err := c.prepared.Close()
	c.prepared, c.preparedText, c.preparedOn = nil, "", nil
	return err
}

func (c *NativeCommand) ExecuteNonQuery() (int64, error) {
	return c.ExecuteNonQueryContext(context.Background())
}

// ExecuteNonQueryContext runs the command and returns the affected row count.
func (c *NativeCommand) ExecuteNonQueryContext(ctx context.Context) (int64, error) {
	ctx, done := c.start(ctx)
	defer done()

	inv, err := c.invocation(ctx)
	if err != nil {
		return 0, err
	}

	res, err := inv.run.exec(ctx, inv.args)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (c *NativeCommand) ExecuteReader(behavior CommandBehavior) (Reader, error) {
	return c.ExecuteReaderContext(context.Background(), behavior)
}

// ExecuteReaderContext runs the command and returns its rows. The command's
// timeout keeps running until the reader is closed.
func (c *NativeCommand) ExecuteReaderContext(ctx context.Context, behavior CommandBehavior) (Reader, error) {
	ctx, done := c.start(ctx)

	inv, err := c.invocation(ctx)
	if err != nil {
		done()
		return nil, err
	}

	rows, err := inv.run.query(ctx, inv.args)
	if err != nil {
		done()
		return nil, err
	}

	var closeConn func() error
	if behavior.Has(BehaviorCloseConnection) {
		closeConn = inv.conn.Close
	}
	return newCommandReader(rows, behavior, done, closeConn), nil
}

func (c *NativeCommand) ExecuteScalar() (any, error) {
	return c.ExecuteScalarContext(context.Background())
}

// ExecuteScalarContext runs the command and returns the first column of the
// first row, or nil when there is no row.
func (c *NativeCommand) ExecuteScalarContext(ctx context.Context) (any, error) {
	ctx, done := c.start(ctx)
	defer done()

	inv, err := c.invocation(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := inv.run.query(ctx, inv.args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	cols, err := rows.Columns()
	if err != nil || len(cols) == 0 {
		return nil, err
	}

	values := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	return values[0], rows.Err()
}

// start derives the execution context and registers it for Cancel.
func (c *NativeCommand) start(ctx context.Context) (context.Context, context.CancelFunc) {
	var cancel context.CancelFunc
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	return ctx, func() {
		c.mu.Lock()
		c.cancel = nil
		c.mu.Unlock()
		cancel()
	}
}

// invocation is one resolved execution: where to run and with which args.
type invocation struct {
	conn *NativeConnection
	run  runner
	args []any
}

func (c *NativeCommand) invocation(ctx context.Context) (*invocation, error) {
	nc, err := nativeConnectionOf(c.conn)
	if err != nil {
		return nil, err
	}
	session, err := nc.session()
	if err != nil {
		return nil, err
	}

	var tx *sqlx.Tx
	if c.tx != nil {
		ntx, ok := c.tx.(*NativeTransaction)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedTransaction, c.tx)
		}
		tx = ntx.tx
	}

	inv := &invocation{conn: nc, args: c.args(nc.dialect)}
	query := c.statement(nc.dialect)

	switch {
	case c.prepared != nil && c.preparedText == query && c.preparedOn == session:
		stmt := c.prepared
		if tx != nil {
			stmt = tx.StmtxContext(ctx, stmt)
		}
		inv.run = stmtRunner{stmt: stmt}
	case tx != nil:
		inv.run = textRunner{q: tx, text: query}
	default:
		inv.run = textRunner{q: session, text: query}
	}

	return inv, nil
}

// statement returns the SQL executed for the command's type and text.
func (c *NativeCommand) statement(d dialect) string {
	switch c.typ {
	case CommandTypeStoredProcedure:
		return d.procedureCall(c.text, c.params.Len())
	case CommandTypeTableDirect:
		return d.tableDirect(c.text)
	default:
		return c.text
	}
}

// args converts the parameters to database/sql arguments.
func (c *NativeCommand) args(d dialect) []any {
	params := c.params.All()
	args := make([]any, 0, len(params))

	for _, p := range params {
		var v any = p.Value
		if p.Direction != Input {
			v = sql.Out{Dest: &p.Value, In: p.Direction == InputOutput}
		}
		if d.namedParams && p.Name != "" {
			v = sql.Named(p.bindName(), v)
		}
		args = append(args, v)
	}

	return args
}

// nativeConnectionOf unwraps decorators down to a *NativeConnection.
func nativeConnectionOf(conn Connection) (*NativeConnection, error) {
	for conn != nil {
		switch c := conn.(type) {
		case *NativeConnection:
			return c, nil
		case interface{ Unwrap() Connection }:
			conn = c.Unwrap()
		default:
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedConnection, conn)
		}
	}
	return nil, ErrNoConnection
}

// runner executes a resolved statement.
type runner interface {
	exec(ctx context.Context, args []any) (sql.Result, error)
	query(ctx context.Context, args []any) (*sqlx.Rows, error)
}

// queryExecer is satisfied by *sqlx.Conn and *sqlx.Tx.
type queryExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
}

type textRunner struct {
	q    queryExecer
	text string
}

func (r textRunner) exec(ctx context.Context, args []any) (sql.Result, error) {
	return r.q.ExecContext(ctx, r.text, args...)
}

func (r textRunner) query(ctx context.Context, args []any) (*sqlx.Rows, error) {
	return r.q.QueryxContext(ctx, r.text, args...)
}

type stmtRunner struct {
	stmt *sqlx.Stmt
}

func (r stmtRunner) exec(ctx context.Context, args []any) (sql.Result, error) {
	return r.stmt.ExecContext(ctx, args...)
}

func (r stmtRunner) query(ctx context.Context, args []any) (*sqlx.Rows, error) {
	return r.stmt.QueryxContext(ctx, args...)
}

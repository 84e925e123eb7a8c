package sqllog

import (
	"context"
	"fmt"
	"time"

	"github.com/kroma-labs/sqllog-go/internal/telemetry"
)

// Compile-time interface check.
var _ Command = (*LoggingCommand)(nil)

// commandContext is the source context of loggers handed to commands.
const commandContext = "sqllog.LoggingCommand"

// LoggingCommand is a Command that logs every execution of the command it
// wraps. Every other member is forwarded unchanged.
type LoggingCommand struct {
	cmd Command
	// base decorates connections attached through SetConnection.
	base   Logger
	logger Logger
	cfg    *telemetry.Config

	// conn is the decorated view handed out by Connection.
	conn *LoggingConnection
}

// WrapCommand returns cmd instrumented with logger.
//
//	cmd := sqllog.WrapCommand(native.CreateCommand(), logger)
//	cmd.SetText("SELECT 1")
//	v, err := cmd.ExecuteScalarContext(ctx)
func WrapCommand(cmd Command, logger Logger, opts ...Option) *LoggingCommand {
	return newLoggingCommand(cmd, logger, logger, newConfig(opts...))
}

// newLoggingCommand derives the command's logger from parent.
func newLoggingCommand(cmd Command, base, parent Logger, cfg *telemetry.Config) *LoggingCommand {
	return &LoggingCommand{
		cmd:    cmd,
		base:   base,
		logger: parent.ForContext(commandContext),
		cfg:    cfg,
	}
}

// Unwrap returns the wrapped command.
func (c *LoggingCommand) Unwrap() Command {
	return c.cmd
}

func (c *LoggingCommand) Text() string {
	return c.cmd.Text()
}

func (c *LoggingCommand) SetText(text string) {
	c.cmd.SetText(text)
}

func (c *LoggingCommand) Timeout() time.Duration {
	return c.cmd.Timeout()
}

func (c *LoggingCommand) SetTimeout(timeout time.Duration) {
	c.cmd.SetTimeout(timeout)
}

func (c *LoggingCommand) Type() CommandType {
	return c.cmd.Type()
}

func (c *LoggingCommand) SetType(t CommandType) {
	c.cmd.SetType(t)
}

func (c *LoggingCommand) Parameters() *Parameters {
	return c.cmd.Parameters()
}

func (c *LoggingCommand) CreateParameter() *Parameter {
	return c.cmd.CreateParameter()
}

func (c *LoggingCommand) Transaction() Transaction {
	return c.cmd.Transaction()
}

func (c *LoggingCommand) SetTransaction(tx Transaction) {
	c.cmd.SetTransaction(tx)
}

// Connection returns the decorated view of the wrapped command's connection.
func (c *LoggingCommand) Connection() Connection {
	native := c.cmd.Connection()
	if native == nil {
		return nil
	}
	if c.conn == nil || c.conn.conn != native {
		c.conn = newLoggingConnection(native, c.base, c.cfg)
	}
	return c.conn
}

// SetConnection attaches conn to the wrapped command. A native connection is
// decorated so that commands created from it are logged too; the wrapped
// command always receives the native connection.
func (c *LoggingCommand) SetConnection(conn Connection) {
	switch conn := conn.(type) {
	case nil:
		c.conn = nil
		c.cmd.SetConnection(nil)
	case *LoggingConnection:
		c.conn = conn
		c.cmd.SetConnection(conn.conn)
	default:
		c.conn = newLoggingConnection(conn, c.base, c.cfg)
		c.cmd.SetConnection(conn)
	}
}

func (c *LoggingCommand) Prepare(ctx context.Context) error {
	return c.cmd.Prepare(ctx)
}

func (c *LoggingCommand) Cancel() {
	c.cmd.Cancel()
}

func (c *LoggingCommand) Close() error {
	return c.cmd.Close()
}

// ExecuteNonQuery logs and forwards to the wrapped command.
func (c *LoggingCommand) ExecuteNonQuery() (int64, error) {
	exec := c.begin(context.Background(), "ExecuteNonQuery")
	defer exec.end()

	n, err := c.cmd.ExecuteNonQuery()
	exec.finish(err)
	return n, err
}

// ExecuteNonQueryContext logs and forwards to the wrapped command.
func (c *LoggingCommand) ExecuteNonQueryContext(ctx context.Context) (int64, error) {
	exec := c.begin(ctx, "ExecuteNonQuery")
	defer exec.end()

	n, err := c.cmd.ExecuteNonQueryContext(exec.ctx)
	exec.finish(err)
	return n, err
}

// ExecuteReader logs and forwards to the wrapped command.
func (c *LoggingCommand) ExecuteReader(behavior CommandBehavior) (Reader, error) {
	exec := c.begin(context.Background(), "ExecuteReader")
	defer exec.end()

	r, err := c.cmd.ExecuteReader(behavior)
	exec.finish(err)
	return r, err
}

// ExecuteReaderContext logs and forwards to the wrapped command.
func (c *LoggingCommand) ExecuteReaderContext(ctx context.Context, behavior CommandBehavior) (Reader, error) {
	exec := c.begin(ctx, "ExecuteReader")
	defer exec.end()

	r, err := c.cmd.ExecuteReaderContext(exec.ctx, behavior)
	exec.finish(err)
	return r, err
}

// ExecuteScalar logs and forwards to the wrapped command.
func (c *LoggingCommand) ExecuteScalar() (any, error) {
	exec := c.begin(context.Background(), "ExecuteScalar")
	defer exec.end()

	v, err := c.cmd.ExecuteScalar()
	exec.finish(err)
	return v, err
}

// ExecuteScalarContext logs and forwards to the wrapped command.
func (c *LoggingCommand) ExecuteScalarContext(ctx context.Context) (any, error) {
	exec := c.begin(ctx, "ExecuteScalar")
	defer exec.end()

	v, err := c.cmd.ExecuteScalarContext(exec.ctx)
	exec.finish(err)
	return v, err
}

// execution ties the log scope of one execute call to its span.
type execution struct {
	ctx   context.Context
	scope *Scope
	span  *telemetry.Span
}

func (c *LoggingCommand) begin(ctx context.Context, operation string) *execution {
	text := c.commandLog()

	ctx, span := c.cfg.Start(ctx, operation, c.statement())
	scope := NewScope(c.logger, operation+" - {Command}", text)

	return &execution{ctx: ctx, scope: scope, span: span}
}

// finish completes the scope when the wrapped call returned no error.
func (e *execution) finish(err error) {
	if err != nil {
		e.span.RecordError(err)
		return
	}
	e.scope.Complete()
}

func (e *execution) end() {
	elapsed := e.scope.Close()
	e.span.End(elapsed, e.scope.Completed())
}

// commandLog builds the logged command text. A failure never reaches the
// caller: it is logged and replaced by ErrorGettingCommand.
func (c *LoggingCommand) commandLog() (text string) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error(fmt.Errorf("%v", r), "Error getting command to log")
			text = ErrorGettingCommand
		}
	}()

	var params []*Parameter
	if ps := c.cmd.Parameters(); ps != nil {
		params = ps.All()
	}
	return FormatCommand(c.cmd.Text(), params)
}

// statement returns the command text for spans, or "" when unavailable.
func (c *LoggingCommand) statement() (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	return c.cmd.Text()
}

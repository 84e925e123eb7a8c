package sqllog

import (
	"context"
	"database/sql"
	"sync"
	"time"
)

type logEntry struct {
	level    Level
	template string
	args     []any
	err      error
	fields   map[string]any
}

// recordingLogger keeps every line written through it or its children.
type recordingLogger struct {
	mu      *sync.Mutex
	entries *[]logEntry
	fields  map[string]any
	min     Level
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{
		mu:      &sync.Mutex{},
		entries: &[]logEntry{},
		fields:  map[string]any{},
	}
}

func (l *recordingLogger) Log(level Level, template string, args ...any) {
	l.append(logEntry{level: level, template: template, args: args})
}

func (l *recordingLogger) Error(err error, template string, args ...any) {
	l.append(logEntry{level: ErrorLevel, template: template, args: args, err: err})
}

func (l *recordingLogger) append(e logEntry) {
	if !l.Enabled(e.level) {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	e.fields = l.fields
	*l.entries = append(*l.entries, e)
}

func (l *recordingLogger) Enabled(level Level) bool {
	return level >= l.min
}

func (l *recordingLogger) ForContext(name string) Logger {
	return l.With(SourceContextKey, name)
}

func (l *recordingLogger) With(key string, value any) Logger {
	fields := make(map[string]any, len(l.fields)+1)
	for k, v := range l.fields {
		fields[k] = v
	}
	fields[key] = value
	return &recordingLogger{mu: l.mu, entries: l.entries, fields: fields, min: l.min}
}

func (l *recordingLogger) all() []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]logEntry(nil), *l.entries...)
}

func (l *recordingLogger) templates() []string {
	entries := l.all()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.template
	}
	return out
}

// stubCommand is a scripted Command.
type stubCommand struct {
	text     string
	timeout  time.Duration
	typ      CommandType
	params   *Parameters
	tx       Transaction
	conn     Connection
	prepared bool
	canceled bool
	closed   bool

	// panicOnParameters makes Parameters panic.
	panicOnParameters bool

	rows   int64
	scalar any
	reader Reader
	err    error
	panic  any

	// gotCtx is the context the last Context execute received.
	gotCtx context.Context
}

func (c *stubCommand) Text() string { return c.text }
func (c *stubCommand) SetText(text string) { c.text = text }
func (c *stubCommand) Timeout() time.Duration { return c.timeout }
func (c *stubCommand) SetTimeout(d time.Duration) { c.timeout = d }
func (c *stubCommand) Type() CommandType { return c.typ }
func (c *stubCommand) SetType(t CommandType) { c.typ = t }
func (c *stubCommand) CreateParameter() *Parameter { return &Parameter{} }
func (c *stubCommand) Transaction() Transaction { return c.tx }
func (c *stubCommand) SetTransaction(t Transaction) { c.tx = t }
func (c *stubCommand) Connection() Connection { return c.conn }
func (c *stubCommand) SetConnection(cn Connection) { c.conn = cn }
func (c *stubCommand) Cancel() { c.canceled = true }

func (c *stubCommand) Parameters() *Parameters {
	if c.panicOnParameters {
		panic("parameters unavailable")
	}
	if c.params == nil {
		c.params = &Parameters{}
	}
	return c.params
}

func (c *stubCommand) Prepare(context.Context) error {
	c.prepared = true
	return c.err
}

func (c *stubCommand) Close() error {
	c.closed = true
	return nil
}

func (c *stubCommand) run() {
	if c.panic != nil {
		panic(c.panic)
	}
}

func (c *stubCommand) ExecuteNonQuery() (int64, error) {
	c.run()
	return c.rows, c.err
}

func (c *stubCommand) ExecuteNonQueryContext(ctx context.Context) (int64, error) {
	c.gotCtx = ctx
	c.run()
	return c.rows, c.err
}

func (c *stubCommand) ExecuteReader(CommandBehavior) (Reader, error) {
	c.run()
	return c.reader, c.err
}

func (c *stubCommand) ExecuteReaderContext(ctx context.Context, _ CommandBehavior) (Reader, error) {
	c.gotCtx = ctx
	c.run()
	return c.reader, c.err
}

func (c *stubCommand) ExecuteScalar() (any, error) {
	c.run()
	return c.scalar, c.err
}

func (c *stubCommand) ExecuteScalarContext(ctx context.Context) (any, error) {
	c.gotCtx = ctx
	c.run()
	return c.scalar, c.err
}

// stubConnection is a scripted Connection whose commands are stubCommands.
type stubConnection struct {
	dsn      string
	database string
	state    ConnectionState
	err      error
	tx       *stubTransaction
}

func (c *stubConnection) ConnectionString() string { return c.dsn }
func (c *stubConnection) SetConnectionString(dsn string) error {
	c.dsn = dsn
	return c.err
}
func (c *stubConnection) ConnectionTimeout() time.Duration { return time.Second }
func (c *stubConnection) Database() string { return c.database }
func (c *stubConnection) State() ConnectionState { return c.state }
func (c *stubConnection) DataSource() string { return "stub-host" }
func (c *stubConnection) ServerVersion() string { return "1.0" }

func (c *stubConnection) Open(context.Context) error {
	c.state = StateOpen
	return c.err
}

func (c *stubConnection) Close() error {
	c.state = StateClosed
	return c.err
}

func (c *stubConnection) ChangeDatabase(_ context.Context, name string) error {
	c.database = name
	return c.err
}

func (c *stubConnection) BeginTransaction(_ context.Context, level sql.IsolationLevel) (Transaction, error) {
	c.tx = &stubTransaction{conn: c, level: level}
	return c.tx, c.err
}

func (c *stubConnection) CreateCommand() Command {
	return &stubCommand{conn: c}
}

type stubTransaction struct {
	conn       Connection
	level      sql.IsolationLevel
	committed  bool
	rolledBack bool
}

func (t *stubTransaction) Connection() Connection { return t.conn }
func (t *stubTransaction) IsolationLevel() sql.IsolationLevel { return t.level }
func (t *stubTransaction) Commit() error {
	t.committed = true
	return nil
}
func (t *stubTransaction) Rollback() error {
	t.rolledBack = true
	return nil
}

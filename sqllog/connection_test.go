package sqllog

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestLoggingConnection_Passthrough(t *testing.T) {
	native := &stubConnection{dsn: "a", database: "app"}
	logger := newRecordingLogger()
	conn := WrapConnection(native, logger)

	assert.Same(t, native, conn.Unwrap())
	assert.Equal(t, "a", conn.ConnectionString())
	require.NoError(t, conn.SetConnectionString("b"))
	assert.Equal(t, "b", native.dsn)
	assert.Equal(t, time.Second, conn.ConnectionTimeout())
	assert.Equal(t, "stub-host", conn.DataSource())
	assert.Equal(t, "1.0", conn.ServerVersion())

	require.NoError(t, conn.Open(context.Background()))
	assert.Equal(t, StateOpen, conn.State())

	require.NoError(t, conn.ChangeDatabase(context.Background(), "other"))
	assert.Equal(t, "other", conn.Database())

	tx, err := conn.BeginTransaction(context.Background(), sql.LevelReadCommitted)
	require.NoError(t, err)
	assert.Same(t, native.tx, tx)
	assert.Equal(t, sql.LevelReadCommitted, tx.IsolationLevel())

	require.NoError(t, conn.Close())
	assert.Equal(t, StateClosed, conn.State())

	assert.Empty(t, logger.all(), "only command executions are logged")
}

func TestLoggingConnection_Errors(t *testing.T) {
	t.Run("given failing native connection, then returns its errors unchanged", func(t *testing.T) {
		conn := WrapConnection(&stubConnection{err: assert.AnError}, newRecordingLogger())

		assert.Equal(t, assert.AnError, conn.Open(context.Background()))
		assert.Equal(t, assert.AnError, conn.ChangeDatabase(context.Background(), "x"))
		assert.Equal(t, assert.AnError, conn.Close())
	})
}

func TestLoggingConnection_CreateCommand(t *testing.T) {
	t.Run("given two commands, then they are independent and share the connection id", func(t *testing.T) {
		logger := newRecordingLogger()
		conn := WrapConnection(&stubConnection{}, logger)

		first := conn.CreateCommand()
		second := conn.CreateCommand()
		require.IsType(t, &LoggingCommand{}, first)
		require.NotSame(t, first, second)

		first.SetText("SELECT 1")
		second.SetText("SELECT 2")
		assert.Equal(t, "SELECT 1", first.Text())

		_, err := first.ExecuteScalar()
		require.NoError(t, err)
		_, err = second.ExecuteScalar()
		require.NoError(t, err)

		entries := logger.all()
		require.Len(t, entries, 4)
		assert.Equal(t, []any{"SELECT 1\n"}, entries[0].args)
		assert.Equal(t, []any{"SELECT 2\n"}, entries[2].args)
		assert.Equal(t, entries[0].fields[ConnectionIDKey], entries[2].fields[ConnectionIDKey])
		for _, e := range entries {
			assert.Equal(t, commandContext, e.fields[SourceContextKey])
		}
	})

	t.Run("given two connections, then their ids differ", func(t *testing.T) {
		logger := newRecordingLogger()
		a := WrapConnection(&stubConnection{}, logger).CreateCommand()
		b := WrapConnection(&stubConnection{}, logger).CreateCommand()

		_, _ = a.ExecuteNonQuery()
		_, _ = b.ExecuteNonQuery()

		entries := logger.all()
		require.Len(t, entries, 4)
		assert.NotEqual(t, entries[0].fields[ConnectionIDKey], entries[2].fields[ConnectionIDKey])
	})

	t.Run("given created command's connection, then reports the creating connection", func(t *testing.T) {
		conn := WrapConnection(&stubConnection{}, newRecordingLogger())

		cmd := conn.CreateCommand()

		assert.Same(t, conn, cmd.Connection())
	})
}

func TestLoggingConnection_Concurrent(t *testing.T) {
	t.Run("given commands executed concurrently, then every execution is logged once", func(t *testing.T) {
		const workers = 16

		logger := newRecordingLogger()
		conn := WrapConnection(&stubConnection{}, logger)

		var g errgroup.Group
		for i := range workers {
			g.Go(func() error {
				cmd := conn.CreateCommand()
				cmd.SetText(fmt.Sprintf("SELECT %d", i))
				_, err := cmd.ExecuteScalarContext(context.Background())
				return err
			})
		}
		require.NoError(t, g.Wait())

		started := 0
		for _, e := range logger.all() {
			if e.level == InfoLevel {
				started++
			}
		}
		assert.Equal(t, workers, started)
		assert.Len(t, logger.all(), 2*workers)
	})
}

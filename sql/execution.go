package sql

import (
	"context"
	"database/sql/driver"
	"errors"
	"strconv"

	"github.com/kroma-labs/sqllog-go/internal/telemetry"
	"github.com/kroma-labs/sqllog-go/sqllog"
)

// execution pairs the log scope and the span of one driver call.
type execution struct {
	ctx   context.Context
	scope *sqllog.Scope
	span  *telemetry.Span
}

// beginStatement starts an execution for query. The log line carries the
// query followed by one line per argument.
func (cfg *config) beginStatement(
	ctx context.Context,
	logger sqllog.Logger,
	method, query string,
	args []driver.NamedValue,
) *execution {
	operation := telemetry.ExtractOperation(query)
	if operation == "" {
		operation = method
	}

	ctx, span := cfg.telemetry.Start(ctx, operation, query)
	return &execution{
		ctx:   ctx,
		scope: sqllog.NewScope(logger, method+" - {Command}", sqllog.FormatCommand(query, parameters(args))),
		span:  span,
	}
}

// begin starts an execution without command text.
func (cfg *config) begin(ctx context.Context, logger sqllog.Logger, operation, template string, args ...any) *execution {
	ctx, span := cfg.telemetry.Start(ctx, operation, "")
	return &execution{
		ctx:   ctx,
		scope: sqllog.NewScope(logger, template, args...),
		span:  span,
	}
}

// finish completes the execution on success. driver.ErrSkip is not a
// failure: database/sql retries the call through a prepared statement.
func (e *execution) finish(err error) {
	if errors.Is(err, driver.ErrSkip) {
		e.scope.Skip()
		e.span.Skip()
		return
	}
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

// parameters describes driver arguments for the command log. Positional
// arguments are named after their ordinal.
func parameters(args []driver.NamedValue) []*sqllog.Parameter {
	if len(args) == 0 {
		return nil
	}

	params := make([]*sqllog.Parameter, len(args))
	for i, nv := range args {
		name := nv.Name
		if name == "" {
			name = "$" + strconv.Itoa(nv.Ordinal)
		}
		params[i] = &sqllog.Parameter{
			Name:     name,
			Value:    nv.Value,
			Nullable: true,
		}
	}
	return params
}

// namedValueToValue converts NamedValue slice to Value slice.
func namedValueToValue(named []driver.NamedValue) []driver.Value {
	values := make([]driver.Value, len(named))
	for i, nv := range named {
		values[i] = nv.Value
	}
	return values
}

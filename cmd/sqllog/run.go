package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/kroma-labs/sqllog-go/internal/config"
	"github.com/kroma-labs/sqllog-go/internal/telemetry"
	"github.com/kroma-labs/sqllog-go/sqllog"
)

// queryOperations return rows and are run with ExecuteReader.
var queryOperations = map[string]bool{
	"SELECT":   true,
	"WITH":     true,
	"VALUES":   true,
	"PRAGMA":   true,
	"SHOW":     true,
	"EXPLAIN":  true,
	"DESCRIBE": true,
	"DESC":     true,
}

func run(ctx context.Context, cfg *config.Config, out, logOut io.Writer) error {
	logger, err := newLogger(cfg, logOut)
	if err != nil {
		return err
	}

	statements, err := collectStatements(cfg)
	if err != nil {
		return err
	}
	params, err := cfg.Parameters()
	if err != nil {
		return err
	}

	native := sqllog.NewConnection(cfg.Driver, cfg.DSN).WithConnectionTimeout(cfg.ConnectTimeout)
	conn := sqllog.WrapConnection(native, logger, cfg.Options()...)

	if err := conn.Open(ctx); err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}
	defer conn.Close()

	for _, text := range statements {
		if err := execute(ctx, conn, cfg, params, text, out); err != nil {
			return err
		}
	}
	return nil
}

func newLogger(cfg *config.Config, w io.Writer) (sqllog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	if cfg.LogFormat == config.FormatConsole {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000"}
	}
	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return sqllog.NewZerologLogger(zl), nil
}

// collectStatements returns the positional statements followed by the ones
// in cfg.File.
func collectStatements(cfg *config.Config) ([]string, error) {
	statements := make([]string, 0, len(cfg.Statements))
	for _, s := range cfg.Statements {
		if s = strings.TrimSpace(s); s != "" {
			statements = append(statements, s)
		}
	}

	if cfg.File != "" {
		data, err := os.ReadFile(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", cfg.File, err)
		}
		statements = append(statements, splitStatements(string(data))...)
	}

	if len(statements) == 0 {
		return nil, fmt.Errorf("no statements to run")
	}
	return statements, nil
}

// splitStatements splits a script on ';'. Semicolons inside literals are not
// recognized.
func splitStatements(script string) []string {
	var statements []string
	for _, s := range strings.Split(script, ";") {
		if s = strings.TrimSpace(s); s != "" {
			statements = append(statements, s)
		}
	}
	return statements
}

func execute(
	ctx context.Context,
	conn sqllog.Connection,
	cfg *config.Config,
	params []config.Param,
	text string,
	out io.Writer,
) error {
	cmd := conn.CreateCommand()
	defer cmd.Close()

	cmd.SetText(text)
	cmd.SetTimeout(cfg.CommandTimeout)
	for _, p := range params {
		cmd.Parameters().AddWithValue(p.Name, p.Value)
	}

	if !queryOperations[telemetry.ExtractOperation(text)] {
		n, err := cmd.ExecuteNonQueryContext(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%d row(s) affected\n", n)
		return err
	}

	reader, err := cmd.ExecuteReaderContext(ctx, sqllog.BehaviorDefault)
	if err != nil {
		return err
	}
	defer reader.Close()

	return printRows(reader, out)
}

// printRows writes a tab-aligned table of every result set.
func printRows(reader sqllog.Reader, out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	for {
		cols, err := reader.Columns()
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, strings.Join(cols, "\t"))

		values := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}

		for reader.Next() {
			if err := reader.Scan(dest...); err != nil {
				return err
			}
			cells := make([]string, len(values))
			for i, v := range values {
				cells[i] = cell(v)
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		if err := reader.Err(); err != nil {
			return err
		}

		if !reader.NextResultSet() {
			break
		}
		fmt.Fprintln(tw)
	}

	return tw.Flush()
}

func cell(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

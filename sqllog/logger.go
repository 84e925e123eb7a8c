package sqllog

import (
	"context"
	"log/slog"

	"github.com/rs/zerolog"
)

// Level is the severity of a log line.
type Level int8

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String implements fmt.Stringer.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return "unknown"
	}
}

// Logger is the sink every decorator and scope writes to.
//
// Messages are templates with {Name} holes that are filled, in order, by the
// positional args. Implementations must be safe for concurrent use.
type Logger interface {
	// Log writes one line at the given level.
	Log(level Level, template string, args ...any)
	// Error writes one error-level line with err attached.
	Error(err error, template string, args ...any)
	// Enabled reports whether lines at level would be written.
	Enabled(level Level) bool
	// ForContext derives a child logger attributed to the named source.
	ForContext(name string) Logger
	// With derives a child logger carrying one extra property.
	With(key string, value any) Logger
}

// SourceContextKey is the property ForContext sets on derived loggers.
const SourceContextKey = "source_context"

// NewZerologLogger adapts a zerolog.Logger to Logger.
//
//	logger := sqllog.NewZerologLogger(zerolog.New(os.Stdout).With().Timestamp().Logger())
func NewZerologLogger(l zerolog.Logger) Logger {
	return zerologLogger{l: l}
}

type zerologLogger struct {
	l zerolog.Logger
}

func (z zerologLogger) Log(level Level, template string, args ...any) {
	z.write(z.l.WithLevel(level.zerolog()), template, args)
}

func (z zerologLogger) Error(err error, template string, args ...any) {
	z.write(z.l.Error().Err(err), template, args)
}

func (z zerologLogger) write(e *zerolog.Event, template string, args []any) {
	if e == nil {
		return
	}
	msg, props := render(template, args)
	for _, p := range props {
		e = e.Interface(p.name, p.value)
	}
	e.Msg(msg)
}

func (z zerologLogger) Enabled(level Level) bool {
	lvl := level.zerolog()
	return z.l.GetLevel() <= lvl && zerolog.GlobalLevel() <= lvl
}

func (z zerologLogger) ForContext(name string) Logger {
	return zerologLogger{l: z.l.With().Str(SourceContextKey, name).Logger()}
}

func (z zerologLogger) With(key string, value any) Logger {
	return zerologLogger{l: z.l.With().Interface(key, value).Logger()}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarnLevel:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// NewSlogLogger adapts a *slog.Logger to Logger.
func NewSlogLogger(l *slog.Logger) Logger {
	return slogLogger{l: l}
}

type slogLogger struct {
	l *slog.Logger
}

func (s slogLogger) Log(level Level, template string, args ...any) {
	s.write(level.slog(), nil, template, args)
}

func (s slogLogger) Error(err error, template string, args ...any) {
	s.write(slog.LevelError, err, template, args)
}

func (s slogLogger) write(level slog.Level, err error, template string, args []any) {
	ctx := context.Background()
	if !s.l.Enabled(ctx, level) {
		return
	}
	msg, props := render(template, args)
	attrs := make([]slog.Attr, 0, len(props)+1)
	for _, p := range props {
		attrs = append(attrs, slog.Any(p.name, p.value))
	}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
	}
	s.l.LogAttrs(ctx, level, msg, attrs...)
}

func (s slogLogger) Enabled(level Level) bool {
	return s.l.Enabled(context.Background(), level.slog())
}

func (s slogLogger) ForContext(name string) Logger {
	return slogLogger{l: s.l.With(SourceContextKey, name)}
}

func (s slogLogger) With(key string, value any) Logger {
	return slogLogger{l: s.l.With(key, value)}
}

func (l Level) slog() slog.Level {
	switch l {
	case DebugLevel:
		return slog.LevelDebug
	case InfoLevel:
		return slog.LevelInfo
	case WarnLevel:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

package telemetry

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// stringLiteralRegex matches single-quoted strings, handling escaped quotes.
	stringLiteralRegex = regexp.MustCompile(`'(?:[^'\\]|\\.)*'`)

	// numericLiteralRegex matches integers and floats.
	numericLiteralRegex = regexp.MustCompile(`\b\d+\.?\d*\b`)

	// hexLiteralRegex matches hex literals such as 0xFF.
	hexLiteralRegex = regexp.MustCompile(`0[xX][0-9a-fA-F]+`)
)

// ExtractOperation extracts the SQL operation (first word) from a query.
// Returns the uppercase operation name or "" for an empty query.
//
//	ExtractOperation("insert into users") // "INSERT"
func ExtractOperation(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return ""
	}

	spaceIdx := strings.IndexAny(query, " \t\n\r(")
	if spaceIdx == -1 {
		return strings.ToUpper(query)
	}

	return strings.ToUpper(query[:spaceIdx])
}

// DefaultQuerySanitizer replaces literal values with placeholders.
//
//	DefaultQuerySanitizer("SELECT * FROM users WHERE name = 'john'")
//	// "SELECT * FROM users WHERE name = '?'"
func DefaultQuerySanitizer(query string) string {
	query = stringLiteralRegex.ReplaceAllString(query, "'?'")
	query = numericLiteralRegex.ReplaceAllString(query, "?")
	query = hexLiteralRegex.ReplaceAllString(query, "?")
	return query
}

// BaseAttributes returns the attributes shared by all spans and metrics.
func (cfg *Config) BaseAttributes() []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if cfg.DBSystem != "" {
		attrs = append(attrs, attribute.String("db.system", cfg.DBSystem))
	}
	if cfg.DBName != "" {
		attrs = append(attrs, attribute.String("db.name", cfg.DBName))
	}
	if cfg.InstanceName != "" {
		attrs = append(attrs, attribute.String("db.instance", cfg.InstanceName))
	}
	return attrs
}

// QueryAttributes returns span attributes for a statement.
func (cfg *Config) QueryAttributes(query string) []attribute.KeyValue {
	attrs := cfg.BaseAttributes()

	if !cfg.DisableQuery && query != "" {
		sanitized := query
		if cfg.QuerySanitizer != nil {
			sanitized = cfg.QuerySanitizer(query)
		}
		attrs = append(attrs, attribute.String("db.statement", sanitized))
	}

	if op := ExtractOperation(query); op != "" {
		attrs = append(attrs, attribute.String("db.operation", op))
	}

	return attrs
}

// Span is one traced and metered database operation.
type Span struct {
	cfg       *Config
	ctx       context.Context
	span      trace.Span
	operation string
	failed    bool
	skipped   bool
}

// Start opens a client span named after operation.
// statement may be empty for operations without command text.
func (cfg *Config) Start(ctx context.Context, operation, statement string) (context.Context, *Span) {
	attrs := cfg.BaseAttributes()
	if statement != "" {
		attrs = cfg.QueryAttributes(statement)
	}

	ctx, span := cfg.Tracer.Start(ctx, operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	return ctx, &Span{cfg: cfg, ctx: ctx, span: span, operation: operation}
}

// RecordError attaches a driver error to the span.
func (s *Span) RecordError(err error) {
	s.failed = true
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// Skip marks the call as declined by the driver. The span ends without an
// error status and no duration is recorded.
func (s *Span) Skip() {
	s.skipped = true
	s.span.SetAttributes(attribute.Bool("db.skipped", true))
}

// End records the duration metric and ends the span.
func (s *Span) End(elapsed time.Duration, completed bool) {
	if s.skipped {
		s.span.End()
		return
	}
	if !completed && !s.failed {
		s.span.SetStatus(codes.Error, s.operation+" did not complete")
	}
	s.cfg.Metrics.RecordDuration(s.ctx, elapsed, s.operation, s.cfg.BaseAttributes(), completed)
	s.span.End()
}

package sqllog

import (
	"github.com/kroma-labs/sqllog-go/internal/telemetry"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// scope is the instrumentation scope name for OpenTelemetry.
const scope = "github.com/kroma-labs/sqllog-go/sqllog"

// Option configures the tracing and metrics recorded next to the log lines.
type Option = telemetry.Option

func newConfig(opts ...Option) *telemetry.Config {
	return telemetry.NewConfig(scope, opts...)
}

// WithTracerProvider sets a custom tracer provider.
// If not called, the global provider from otel.GetTracerProvider() is used.
//
//	tp := sdktrace.NewTracerProvider(...)
//	conn := sqllog.WrapConnection(native, logger, sqllog.WithTracerProvider(tp))
func WithTracerProvider(tp trace.TracerProvider) Option {
	return telemetry.WithTracerProvider(tp)
}

// WithMeterProvider sets a custom meter provider.
// If not called, the global provider from otel.GetMeterProvider() is used.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return telemetry.WithMeterProvider(mp)
}

// WithDBSystem sets the "db.system" attribute, e.g. "postgresql" or "mysql".
func WithDBSystem(system string) Option {
	return telemetry.WithDBSystem(system)
}

// WithDBName sets the "db.name" attribute.
func WithDBName(name string) Option {
	return telemetry.WithDBName(name)
}

// WithInstanceName sets the "db.instance" attribute, used to tell apart
// connections to the same database such as "primary" and "replica".
func WithInstanceName(name string) Option {
	return telemetry.WithInstanceName(name)
}

// WithQuerySanitizer sets the function applied to command text before it is
// added to spans. Log lines always carry the raw command text.
//
//	conn := sqllog.WrapConnection(native, logger,
//	    sqllog.WithQuerySanitizer(sqllog.DefaultQuerySanitizer),
//	)
func WithQuerySanitizer(fn func(string) string) Option {
	return telemetry.WithQuerySanitizer(fn)
}

// WithDisableQuery omits the "db.statement" attribute from spans.
func WithDisableQuery() Option {
	return telemetry.WithDisableQuery()
}

// DefaultQuerySanitizer replaces string, numeric and hex literals with "?".
func DefaultQuerySanitizer(query string) string {
	return telemetry.DefaultQuerySanitizer(query)
}

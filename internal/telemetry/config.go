// Package telemetry holds the OpenTelemetry plumbing shared by the sqllog
// decorators and the instrumented database/sql driver.
package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Config holds the configuration for instrumentation.
type Config struct {
	// TracerProvider is the tracer provider to use.
	// If not set, uses the global provider via otel.GetTracerProvider().
	// When no global provider is configured, a no-op tracer is used.
	TracerProvider trace.TracerProvider

	// MeterProvider is the meter provider to use.
	// If not set, uses the global provider via otel.GetMeterProvider().
	MeterProvider metric.MeterProvider

	// Tracer is the tracer instance created from TracerProvider.
	Tracer trace.Tracer

	// Meter is the meter instance created from MeterProvider.
	Meter metric.Meter

	// Metrics holds the metric instruments.
	Metrics *Metrics

	// DBSystem identifies the database management system (DBMS) product.
	// Examples: "postgresql", "mysql", "sqlite"
	DBSystem string

	// DBName is the name of the database being accessed.
	DBName string

	// InstanceName identifies a specific database connection instance,
	// such as "primary" or "replica".
	InstanceName string

	// QuerySanitizer sanitizes command text before it is added to spans.
	// Log lines always carry the raw command text.
	QuerySanitizer func(query string) string

	// DisableQuery disables recording of command text in spans.
	DisableQuery bool
}

// Option configures the instrumentation.
type Option func(*Config)

// NewConfig creates a new config with defaults and applies options.
// scope names the instrumentation library in traces and metrics.
func NewConfig(scope string, opts ...Option) *Config {
	cfg := &Config{
		TracerProvider: otel.GetTracerProvider(),
		MeterProvider:  otel.GetMeterProvider(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	cfg.Tracer = cfg.TracerProvider.Tracer(scope)
	cfg.Meter = cfg.MeterProvider.Meter(scope)

	// Metrics stay nil when registration fails; recording is then a no-op.
	cfg.Metrics, _ = NewMetrics(cfg.Meter)

	return cfg
}

// WithTracerProvider sets a custom tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *Config) {
		cfg.TracerProvider = tp
	}
}

// WithMeterProvider sets a custom meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(cfg *Config) {
		cfg.MeterProvider = mp
	}
}

// WithDBSystem sets the database system identifier.
func WithDBSystem(system string) Option {
	return func(cfg *Config) {
		cfg.DBSystem = system
	}
}

// WithDBName sets the database name being accessed.
func WithDBName(name string) Option {
	return func(cfg *Config) {
		cfg.DBName = name
	}
}

// WithInstanceName sets an identifier for this specific database connection.
func WithInstanceName(name string) Option {
	return func(cfg *Config) {
		cfg.InstanceName = name
	}
}

// WithQuerySanitizer sets a custom query sanitizer function.
func WithQuerySanitizer(fn func(string) string) Option {
	return func(cfg *Config) {
		cfg.QuerySanitizer = fn
	}
}

// WithDisableQuery disables recording of command text in spans entirely.
func WithDisableQuery() Option {
	return func(cfg *Config) {
		cfg.DisableQuery = true
	}
}

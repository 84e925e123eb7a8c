package sql

import (
	"context"
	"database/sql"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Pool metric names.
const (
	MetricConnectionsOpen         = "db.client.connections.open"
	MetricConnectionsIdle         = "db.client.connections.idle"
	MetricConnectionsMax          = "db.client.connections.max"
	MetricConnectionsUsed         = "db.client.connections.used"
	MetricConnectionsWaitCount    = "db.client.connections.wait_count"
	MetricConnectionsWaitDuration = "db.client.connections.wait_duration"
)

// poolMetrics holds the observable instruments reading *sql.DB.Stats.
type poolMetrics struct {
	open         metric.Int64ObservableGauge
	idle         metric.Int64ObservableGauge
	max          metric.Int64ObservableGauge
	used         metric.Int64ObservableGauge
	waitCount    metric.Int64ObservableCounter
	waitDuration metric.Float64ObservableCounter
}

func newPoolMetrics(meter metric.Meter) (*poolMetrics, error) {
	m := &poolMetrics{}
	var err error

	m.open, err = meter.Int64ObservableGauge(MetricConnectionsOpen,
		metric.WithDescription("Number of open connections in the pool"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}

	m.idle, err = meter.Int64ObservableGauge(MetricConnectionsIdle,
		metric.WithDescription("Number of idle connections in the pool"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}

	m.max, err = meter.Int64ObservableGauge(MetricConnectionsMax,
		metric.WithDescription("Maximum number of connections allowed in the pool"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}

	m.used, err = meter.Int64ObservableGauge(MetricConnectionsUsed,
		metric.WithDescription("Number of connections currently in use"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}

	m.waitCount, err = meter.Int64ObservableCounter(MetricConnectionsWaitCount,
		metric.WithDescription("Total number of times waited for a connection"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}

	m.waitDuration, err = meter.Float64ObservableCounter(MetricConnectionsWaitDuration,
		metric.WithDescription("Total time waited for connections in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *poolMetrics) register(meter metric.Meter, db *sql.DB, attrs []attribute.KeyValue) error {
	opt := metric.WithAttributes(attrs...)

	_, err := meter.RegisterCallback(
		func(_ context.Context, o metric.Observer) error {
			stats := db.Stats()

			o.ObserveInt64(m.open, int64(stats.OpenConnections), opt)
			o.ObserveInt64(m.idle, int64(stats.Idle), opt)
			o.ObserveInt64(m.max, int64(stats.MaxOpenConnections), opt)
			o.ObserveInt64(m.used, int64(stats.InUse), opt)
			o.ObserveInt64(m.waitCount, stats.WaitCount, opt)
			o.ObserveFloat64(m.waitDuration, stats.WaitDuration.Seconds(), opt)

			return nil
		},
		m.open, m.idle, m.max, m.used, m.waitCount, m.waitDuration,
	)
	return err
}

// RecordPoolMetrics registers connection pool metrics for db. Pool stats are
// only reachable from *sql.DB, so this is separate from the per-execution
// duration histogram.
//
// When db was opened by this package, the db.system, db.name and
// db.instance attributes given to Open are added to attrs.
//
//	db, _ := sqllogsql.Open("pgx", dsn, logger, sqllog.WithDBName("mydb"))
//	err := sqllogsql.RecordPoolMetrics(db, otel.GetMeterProvider().Meter("myapp"))
func RecordPoolMetrics(db *sql.DB, meter metric.Meter, attrs ...attribute.KeyValue) error {
	if drv, ok := db.Driver().(*loggingDriver); ok {
		attrs = append(drv.cfg.telemetry.BaseAttributes(), attrs...)
	}

	m, err := newPoolMetrics(meter)
	if err != nil {
		return err
	}
	return m.register(meter, db, attrs)
}

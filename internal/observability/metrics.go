// Package observability exposes Prometheus metrics for the catalog
// reflector, the GraphQL data fetcher, and the CDC event bus.
package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsOnce     sync.Once
	metricsInstance *Metrics
)

// Metrics holds all Prometheus metrics for excalibase-graphql.
type Metrics struct {
	// Database metrics
	dbQueriesTotal  *prometheus.CounterVec
	dbQueryDuration *prometheus.HistogramVec

	// Catalog reflector metrics
	reflectionsTotal     *prometheus.CounterVec
	reflectionDuration   prometheus.Histogram
	reflectionInFlight   prometheus.Gauge
	schemaCacheHitsTotal prometheus.Counter
	schemaCacheMissTotal prometheus.Counter

	// Schema generator metrics
	schemaGenerationsTotal   prometheus.Counter
	schemaGenerationDuration prometheus.Histogram

	// Data fetcher metrics
	fetchRoundTripsTotal *prometheus.CounterVec
	fetchDuration        *prometheus.HistogramVec
	preloadBatchSize     prometheus.Histogram

	// CDC bus metrics
	cdcEventsTotal       *prometheus.CounterVec
	cdcEventsDroppedTotal *prometheus.CounterVec
	cdcActiveStreams     prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics (singleton).
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = createMetrics()
	})
	return metricsInstance
}

func createMetrics() *Metrics {
	return &Metrics{
		dbQueriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "excalibase_db_queries_total",
				Help: "Total number of database queries executed",
			},
			[]string{"operation", "table"},
		),
		dbQueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "excalibase_db_query_duration_seconds",
				Help:    "Database query latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"operation", "table"},
		),

		reflectionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "excalibase_catalog_reflections_total",
				Help: "Total number of catalog reflection runs, by outcome",
			},
			[]string{"schema", "outcome"},
		),
		reflectionDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "excalibase_catalog_reflection_duration_seconds",
				Help:    "Time spent reflecting the catalog into a Model",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
			},
		),
		reflectionInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "excalibase_catalog_reflection_in_flight",
				Help: "Number of in-flight catalog reflections (0 or 1 due to single-flight coalescing)",
			},
		),
		schemaCacheHitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "excalibase_catalog_cache_hits_total",
				Help: "Total number of Model cache hits (TTL not expired)",
			},
		),
		schemaCacheMissTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "excalibase_catalog_cache_misses_total",
				Help: "Total number of Model cache misses (TTL expired or no prior Model)",
			},
		),

		schemaGenerationsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "excalibase_graphql_schema_generations_total",
				Help: "Total number of GraphQL schema (re)generations",
			},
		),
		schemaGenerationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "excalibase_graphql_schema_generation_duration_seconds",
				Help:    "Time spent generating a GraphQL schema from a Model",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
		),

		fetchRoundTripsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "excalibase_fetch_round_trips_total",
				Help: "Total number of SQL round trips issued per resolver kind",
			},
			[]string{"resolver", "table"},
		),
		fetchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "excalibase_fetch_duration_seconds",
				Help:    "Resolver execution latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"resolver", "table"},
		),
		preloadBatchSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "excalibase_fetch_preload_batch_size",
				Help:    "Number of distinct FK values collected per preload batch",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
		),

		cdcEventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "excalibase_cdc_events_total",
				Help: "Total number of CDC events routed to a table stream",
			},
			[]string{"table", "type"},
		),
		cdcEventsDroppedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "excalibase_cdc_events_dropped_total",
				Help: "Total number of CDC events dropped due to a full per-table buffer",
			},
			[]string{"table"},
		),
		cdcActiveStreams: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "excalibase_cdc_active_streams",
				Help: "Number of currently active per-table CDC subscriptions",
			},
		),
	}
}

// RecordDBQuery records a single database query's outcome and latency.
// err is accepted so callers can pass the query's own result straight
// through without a separate branch; only the duration and that a
// query ran are tracked per operation/table today.
func (m *Metrics) RecordDBQuery(operation, table string, duration time.Duration, err error) {
	m.dbQueriesTotal.WithLabelValues(operation, table).Inc()
	m.dbQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordReflection records one reflectSchema invocation.
func (m *Metrics) RecordReflection(schema, outcome string, duration time.Duration) {
	m.reflectionsTotal.WithLabelValues(schema, outcome).Inc()
	m.reflectionDuration.Observe(duration.Seconds())
}

// SetReflectionInFlight reports whether a reflection is currently running.
func (m *Metrics) SetReflectionInFlight(inFlight bool) {
	if inFlight {
		m.reflectionInFlight.Set(1)
		return
	}
	m.reflectionInFlight.Set(0)
}

// RecordCacheHit records a Model cache hit.
func (m *Metrics) RecordCacheHit() { m.schemaCacheHitsTotal.Inc() }

// RecordCacheMiss records a Model cache miss.
func (m *Metrics) RecordCacheMiss() { m.schemaCacheMissTotal.Inc() }

// RecordSchemaGeneration records one schema (re)generation.
func (m *Metrics) RecordSchemaGeneration(duration time.Duration) {
	m.schemaGenerationsTotal.Inc()
	m.schemaGenerationDuration.Observe(duration.Seconds())
}

// RecordFetch records one resolver invocation's round trips and latency.
func (m *Metrics) RecordFetch(resolver, table string, roundTrips int, duration time.Duration) {
	m.fetchRoundTripsTotal.WithLabelValues(resolver, table).Add(float64(roundTrips))
	m.fetchDuration.WithLabelValues(resolver, table).Observe(duration.Seconds())
}

// RecordPreloadBatch records the size of one preload batch.
func (m *Metrics) RecordPreloadBatch(size int) {
	m.preloadBatchSize.Observe(float64(size))
}

// RecordCDCEvent records one CDC event routed to a table stream.
func (m *Metrics) RecordCDCEvent(table, eventType string) {
	m.cdcEventsTotal.WithLabelValues(table, eventType).Inc()
}

// RecordCDCDrop records one CDC event dropped due to backpressure.
func (m *Metrics) RecordCDCDrop(table string) {
	m.cdcEventsDroppedTotal.WithLabelValues(table).Inc()
}

// SetCDCActiveStreams reports the current number of active per-table streams.
func (m *Metrics) SetCDCActiveStreams(count int) {
	m.cdcActiveStreams.Set(float64(count))
}

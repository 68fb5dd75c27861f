package observability

import (
	"time"

	"github.com/bbwallet/portal-bfa-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the portal BFA.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	storeReads      *prometheus.CounterVec
	storeWrites     *prometheus.CounterVec
	storeFailures   *prometheus.CounterVec
	recordsCreated  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
}

// collections is the label set the snapshot sums over.
var collections = []string{
	"companies", "deals", "investments", "entities", "ndas", "access_requests",
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portal_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		storeReads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_store_reads_total",
				Help: "Total collection reads from the record store.",
			},
			[]string{"collection"},
		),
		storeWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_store_writes_total",
				Help: "Total collection writes to the record store.",
			},
			[]string{"collection"},
		),
		storeFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_store_failures_total",
				Help: "Total failed substrate operations.",
			},
			[]string{"collection", "op"},
		),
		recordsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_records_created_total",
				Help: "Total records created per collection.",
			},
			[]string{"collection"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrStoreRead increments the collection read counter.
func (m *Metrics) IncrStoreRead(collection string) {
	m.storeReads.WithLabelValues(collection).Inc()
}

// IncrStoreWrite increments the collection write counter.
func (m *Metrics) IncrStoreWrite(collection string) {
	m.storeWrites.WithLabelValues(collection).Inc()
}

// IncrStoreReadFailure increments the failed-read counter.
func (m *Metrics) IncrStoreReadFailure(collection string) {
	m.storeFailures.WithLabelValues(collection, "read").Inc()
}

// IncrStoreWriteFailure increments the failed-write counter.
func (m *Metrics) IncrStoreWriteFailure(collection string) {
	m.storeFailures.WithLabelValues(collection, "write").Inc()
}

// IncrRecordCreated increments the records-created counter.
func (m *Metrics) IncrRecordCreated(collection string) {
	m.recordsCreated.WithLabelValues(collection).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// GetStoreSnapshot reads the cumulative store counters back from the
// registry for the GET /v1/metrics/store endpoint.
func (m *Metrics) GetStoreSnapshot() *domain.StoreMetrics {
	var reads, writes, readFailures, writeFailures, created float64
	for _, c := range collections {
		reads += getCounterValue(m.storeReads, c)
		writes += getCounterValue(m.storeWrites, c)
		readFailures += getCounterValue(m.storeFailures, c, "read")
		writeFailures += getCounterValue(m.storeFailures, c, "write")
		created += getCounterValue(m.recordsCreated, c)
	}

	hits := getCounterValue(m.cacheHits, "companies")
	misses := getCounterValue(m.cacheMisses, "companies")
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &domain.StoreMetrics{
		Reads:          int64(reads),
		Writes:         int64(writes),
		ReadFailures:   int64(readFailures),
		WriteFailures:  int64(writeFailures),
		RecordsCreated: int64(created),
		CacheHitRate:   hitRate,
		Period:         "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for
// the given labels.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

// Package metrics exposes Prometheus collectors for ingestion, search and the vector index.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ingest outcomes.
const (
	OutcomeSuccess        = "success"
	OutcomeEmbeddingError = "embedding_error"
	OutcomeStoreError     = "store_error"
	OutcomeIndexError     = "index_error"
)

// Metrics holds the service collectors on a private registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	ingests       *prometheus.CounterVec
	searchLatency *prometheus.HistogramVec
	indexSize     prometheus.Gauge
	repairs       *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ingests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deepsearch_ingest_total",
			Help: "Documents ingested, by outcome",
		}, []string{"outcome"}),
		searchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "deepsearch_search_duration_seconds",
			Help:    "Latency of search requests, embedding included",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		indexSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "deepsearch_index_vectors",
			Help: "Number of vectors in the index",
		}),
		repairs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deepsearch_repair_documents_total",
			Help: "Orphaned documents processed by repair, by outcome",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(
		m.ingests,
		m.searchLatency,
		m.indexSize,
		m.repairs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveIngest counts one ingestion with the given outcome.
func (m *Metrics) ObserveIngest(outcome string) {
	if m == nil {
		return
	}
	m.ingests.WithLabelValues(outcome).Inc()
}

// ObserveSearch records the latency of one search.
func (m *Metrics) ObserveSearch(d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.searchLatency.WithLabelValues(status).Observe(d.Seconds())
}

// SetIndexSize updates the vector count gauge.
func (m *Metrics) SetIndexSize(n int) {
	if m == nil {
		return
	}
	m.indexSize.Set(float64(n))
}

// ObserveRepair counts repaired and failed documents.
func (m *Metrics) ObserveRepair(repaired, failed int) {
	if m == nil {
		return
	}
	m.repairs.WithLabelValues("repaired").Add(float64(repaired))
	m.repairs.WithLabelValues("failed").Add(float64(failed))
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Package metrics exposes Prometheus collectors for dataset handling.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upload outcomes.
const (
	OutcomeLoaded   = "loaded"
	OutcomeRejected = "rejected"
)

// Metrics owns its registry so tests and multiple servers never collide on
// the global one.
type Metrics struct {
	registry *prometheus.Registry

	uploads      *prometheus.CounterVec
	decodeDur    *prometheus.HistogramVec
	datasetRows  *prometheus.GaugeVec
	validation   *prometheus.CounterVec
	publications *prometheus.CounterVec
	collisions   prometheus.Counter
}

// New registers every collector plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.uploads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "monitor",
		Name:      "uploads_total",
		Help:      "Dataset uploads by slot, decoder and outcome",
	}, []string{"slot", "decoder", "outcome"})
	m.decodeDur = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "monitor",
		Name:      "load_duration_seconds",
		Help:      "Time spent decoding and normalizing an upload",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"slot"})
	m.datasetRows = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "monitor",
		Name:      "dataset_rows",
		Help:      "Rows of the most recently loaded dataset per slot",
	}, []string{"slot"})
	m.validation = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "monitor",
		Name:      "validation_findings_total",
		Help:      "Schema validation findings by severity",
	}, []string{"severity"})
	m.publications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "monitor",
		Name:      "publications_total",
		Help:      "Sanitized export publications by result",
	}, []string{"result"})
	m.collisions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "monitor",
		Name:      "header_collisions_total",
		Help:      "Raw headers overwritten by a later header resolving to the same column",
	})

	m.registry.MustRegister(
		m.uploads, m.decodeDur, m.datasetRows, m.validation, m.publications, m.collisions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveLoad records one successful upload.
func (m *Metrics) ObserveLoad(slot, decoder string, rows, errs, warnings, collisions int, took time.Duration) {
	m.uploads.WithLabelValues(slot, decoder, OutcomeLoaded).Inc()
	m.decodeDur.WithLabelValues(slot).Observe(took.Seconds())
	m.datasetRows.WithLabelValues(slot).Set(float64(rows))
	m.validation.WithLabelValues("error").Add(float64(errs))
	m.validation.WithLabelValues("warning").Add(float64(warnings))
	m.collisions.Add(float64(collisions))
}

// ObserveRejected records an upload that no decoder could read.
func (m *Metrics) ObserveRejected(slot string, took time.Duration) {
	m.uploads.WithLabelValues(slot, "none", OutcomeRejected).Inc()
	m.decodeDur.WithLabelValues(slot).Observe(took.Seconds())
}

// ObserveCleared resets the row gauge of a slot.
func (m *Metrics) ObserveCleared(slot string) {
	m.datasetRows.WithLabelValues(slot).Set(0)
}

// ObservePublication counts one publication attempt.
func (m *Metrics) ObservePublication(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.publications.WithLabelValues(result).Inc()
}

// Package metrics exposes ingestion and query counters for Prometheus.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rgehrsitz/paysplit/internal/domain"
)

// Metrics holds the paysplit counters on a private registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	rowsParsed  *prometheus.CounterVec
	rowsDropped *prometheus.CounterVec
	requests    *prometheus.CounterVec
}

// New creates and registers the counters
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		rowsParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paysplit",
			Name:      "rows_parsed_total",
			Help:      "Rows recovered from the source documents.",
		}, []string{"document"}),
		rowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paysplit",
			Name:      "rows_dropped_total",
			Help:      "Malformed rows skipped while parsing the source documents.",
		}, []string{"document"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paysplit",
			Name:      "requests_total",
			Help:      "Query API requests by endpoint and status code.",
		}, []string{"endpoint", "status"}),
	}
	m.Registry.MustRegister(m.rowsParsed, m.rowsDropped, m.requests)
	return m
}

// RecordParse adds one document's parse stats
func (m *Metrics) RecordParse(stats domain.ParseStats) {
	if m == nil {
		return
	}
	m.rowsParsed.WithLabelValues(stats.Document).Add(float64(stats.Rows))
	m.rowsDropped.WithLabelValues(stats.Document).Add(float64(stats.Dropped))
}

// RecordRequest counts one API request
func (m *Metrics) RecordRequest(endpoint string, status int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

package batch

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const metricsNamespace = "tenure"

// Metrics counts batch work per locale.
type Metrics struct {
	registry *prometheus.Registry

	documents *prometheus.CounterVec
	failures  *prometheus.CounterVec
	terms     *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
}

// NewMetrics creates the counters on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "documents_total",
			Help:      "Documents processed.",
		}, []string{"locale"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "document_failures_total",
			Help:      "Documents whose terms could not be built.",
		}, []string{"locale"}),
		terms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "terms_total",
			Help:      "Office terms emitted.",
		}, []string{"locale"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "date_fallbacks_total",
			Help:      "Term dates kept as raw text because they could not be normalized.",
		}, []string{"locale"}),
	}
	m.registry.MustRegister(m.documents, m.failures, m.terms, m.fallbacks)
	return m
}

// Registry returns the registry holding the counters, for exposition.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observe(result Result) {
	m.documents.WithLabelValues(result.Locale).Inc()
	if result.Err != nil {
		m.failures.WithLabelValues(result.Locale).Inc()
		return
	}
	m.terms.WithLabelValues(result.Locale).Add(float64(len(result.Terms)))
	if n := result.Fallbacks(); n > 0 {
		m.fallbacks.WithLabelValues(result.Locale).Add(float64(n))
	}
}

// Snapshot is the counter totals summed over locales.
type Snapshot struct {
	Documents     int `json:"documents"`
	Failures      int `json:"failures"`
	Terms         int `json:"terms"`
	DateFallbacks int `json:"date_fallbacks"`
}

// Snapshot gathers the current counter totals.
func (m *Metrics) Snapshot() (Snapshot, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return Snapshot{}, fmt.Errorf("gathering metrics: %w", err)
	}

	var snap Snapshot
	for _, family := range families {
		total := int(sumCounters(family))
		switch family.GetName() {
		case metricsNamespace + "_documents_total":
			snap.Documents = total
		case metricsNamespace + "_document_failures_total":
			snap.Failures = total
		case metricsNamespace + "_terms_total":
			snap.Terms = total
		case metricsNamespace + "_date_fallbacks_total":
			snap.DateFallbacks = total
		}
	}
	return snap, nil
}

func sumCounters(family *dto.MetricFamily) float64 {
	var total float64
	for _, metric := range family.GetMetric() {
		total += metric.GetCounter().GetValue()
	}
	return total
}

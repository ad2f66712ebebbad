// Package metrics exposes Prometheus instruments for the lead lifecycle.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LeadMetrics counts stage changes and conversion outcomes.
// A nil *LeadMetrics is valid and records nothing.
type LeadMetrics struct {
	stageTransitions   *prometheus.CounterVec
	conversionOutcomes *prometheus.CounterVec
	conversionLatency  prometheus.Histogram
	leadsCreated       *prometheus.CounterVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		stageTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crm",
			Subsystem: "leads",
			Name:      "stage_transitions_total",
			Help:      "Generic lead stage changes by source and target stage",
		}, []string{"from", "to"}),
		conversionOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crm",
			Subsystem: "leads",
			Name:      "conversions_total",
			Help:      "WON conversion attempts by outcome",
		}, []string{"outcome"}),
		conversionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "crm",
			Subsystem: "leads",
			Name:      "conversion_duration_seconds",
			Help:      "Latency of the WON conversion transaction",
			Buckets:   prometheus.DefBuckets,
		}),
		leadsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crm",
			Subsystem: "leads",
			Name:      "created_total",
			Help:      "Leads created by source",
		}, []string{"source"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.stageTransitions, m.conversionOutcomes, m.conversionLatency, m.leadsCreated)
	return m
}

func (m *LeadMetrics) ObserveStageTransition(from, to string) {
	if m == nil {
		return
	}
	m.stageTransitions.WithLabelValues(from, to).Inc()
}

func (m *LeadMetrics) ObserveConversion(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.conversionOutcomes.WithLabelValues(outcome).Inc()
	m.conversionLatency.Observe(seconds)
}

func (m *LeadMetrics) ObserveLeadCreated(source string) {
	if m == nil {
		return
	}
	m.leadsCreated.WithLabelValues(source).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

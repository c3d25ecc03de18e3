// Package metrics provides Prometheus metrics for the chatbot orchestrator.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for turn processing.
type Metrics struct {
	TurnsTotal           *prometheus.CounterVec
	TurnDuration         prometheus.Histogram
	ClassificationsTotal *prometheus.CounterVec
	DispatchTotal        *prometheus.CounterVec
	DispatchDuration     *prometheus.HistogramVec
	FaultsTotal          *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg skips registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TurnsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edify_turns_total",
				Help: "Total number of processed chat turns",
			},
			[]string{"source", "outcome"},
		),
		TurnDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "edify_turn_duration_seconds",
				Help:    "End-to-end duration of chat turns in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		ClassificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edify_classifications_total",
				Help: "Intent classifications by category and stage",
			},
			[]string{"category", "stage"},
		),
		DispatchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edify_dispatch_total",
				Help: "Retrieval dispatches by source and result",
			},
			[]string{"source", "result"},
		),
		DispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edify_dispatch_duration_seconds",
				Help:    "Duration of retrieval dispatches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		FaultsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edify_faults_total",
				Help: "Degraded stages by fault kind",
			},
			[]string{"fault"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.TurnsTotal,
			m.TurnDuration,
			m.ClassificationsTotal,
			m.DispatchTotal,
			m.DispatchDuration,
			m.FaultsTotal,
		)
	}
	return m
}

// RecordTurn records a finished turn.
func (m *Metrics) RecordTurn(source, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.TurnsTotal.WithLabelValues(source, outcome).Inc()
	m.TurnDuration.Observe(duration.Seconds())
}

// RecordClassification records the category chosen and the stage that chose it.
func (m *Metrics) RecordClassification(category, stage string) {
	if m == nil {
		return
	}
	m.ClassificationsTotal.WithLabelValues(category, stage).Inc()
}

// RecordDispatch records one retrieval dispatch.
func (m *Metrics) RecordDispatch(source, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.DispatchTotal.WithLabelValues(source, result).Inc()
	m.DispatchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordFault records a degraded stage.
func (m *Metrics) RecordFault(fault string) {
	if m == nil {
		return
	}
	m.FaultsTotal.WithLabelValues(fault).Inc()
}

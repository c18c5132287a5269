package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
)

// IntakeMetrics observes pipeline progress for the shared registry of the hosting process.
type IntakeMetrics struct {
	service string

	transitionsTotal *prometheus.CounterVec
	pipelinesTotal   *prometheus.CounterVec
	pipelineDuration *prometheus.HistogramVec
}

func NewIntakeMetrics(service string, registerer prometheus.Registerer) *IntakeMetrics {
	transitionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "transitions_total",
			Help:      "Pipeline state transitions.",
		},
		[]string{"service", "from", "to"},
	)
	pipelinesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "pipelines_total",
			Help:      "Finished pipelines by final state and violation type.",
		},
		[]string{"service", "state", "violation_type"},
	)
	pipelineDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "pipeline_duration_seconds",
			Help:      "Time from submission to a terminal state.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		},
		[]string{"service", "state"},
	)
	registerer.MustRegister(transitionsTotal, pipelinesTotal, pipelineDuration)

	return &IntakeMetrics{
		service:          service,
		transitionsTotal: transitionsTotal,
		pipelinesTotal:   pipelinesTotal,
		pipelineDuration: pipelineDuration,
	}
}

func (m *IntakeMetrics) ObserveTransition(from, to domain.UploadState) {
	m.transitionsTotal.WithLabelValues(m.service, string(from), string(to)).Inc()
}

func (m *IntakeMetrics) ObservePipeline(final domain.UploadState, violation domain.ViolationType, duration time.Duration) {
	m.pipelinesTotal.WithLabelValues(m.service, string(final), string(violation)).Inc()
	m.pipelineDuration.WithLabelValues(m.service, string(final)).Observe(duration.Seconds())
}

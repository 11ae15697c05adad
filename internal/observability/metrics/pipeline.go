package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/petrolex/contract-engine/internal/core/domain"
	"github.com/petrolex/contract-engine/internal/core/ports"
)

type PipelineMetrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  prometheus.Histogram
	requestsInFlight prometheus.Gauge

	coverageTotal         *prometheus.CounterVec
	entityLookupsTotal    *prometheus.CounterVec
	disposalFailuresTotal prometheus.Counter
}

func NewPipelineMetrics(service string) *PipelineMetrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contractengine",
			Subsystem: "pipeline",
			Name:      "requests_total",
			Help:      "Analysis requests by outcome code.",
		},
		[]string{"service", "outcome"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   "contractengine",
			Subsystem:   "pipeline",
			Name:        "request_duration_seconds",
			Help:        "End-to-end analysis duration in seconds.",
			Buckets:     []float64{0.5, 1, 2, 5, 10, 20, 40, 60, 90},
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	requestsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "contractengine",
			Subsystem:   "pipeline",
			Name:        "in_flight_requests",
			Help:        "Analysis requests currently being processed.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	coverageTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contractengine",
			Subsystem: "pipeline",
			Name:      "risk_coverage_total",
			Help:      "Successful reports by entity risk coverage.",
		},
		[]string{"service", "coverage"},
	)
	entityLookupsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contractengine",
			Subsystem: "pipeline",
			Name:      "entity_lookups_total",
			Help:      "Entity risk lookups by result.",
		},
		[]string{"service", "result"},
	)
	disposalFailuresTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   "contractengine",
			Subsystem:   "pipeline",
			Name:        "disposal_failures_total",
			Help:        "Security-relevant failures of the request scope wipe.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)

	registry.MustRegister(
		requestsTotal, requestDuration, requestsInFlight,
		coverageTotal, entityLookupsTotal, disposalFailuresTotal,
	)

	m := &PipelineMetrics{
		registry:              registry,
		requestsTotal:         requestsTotal,
		requestDuration:       requestDuration,
		requestsInFlight:      requestsInFlight,
		coverageTotal:         coverageTotal,
		entityLookupsTotal:    entityLookupsTotal,
		disposalFailuresTotal: disposalFailuresTotal,
	}
	m.requestsTotal.WithLabelValues(service, "ok")
	return m
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Instrument wraps the analyzer so the core stays free of metrics wiring.
func (m *PipelineMetrics) Instrument(service string, next ports.ContractAnalyzer) ports.ContractAnalyzer {
	return &instrumentedAnalyzer{metrics: m, service: service, next: next}
}

type instrumentedAnalyzer struct {
	metrics *PipelineMetrics
	service string
	next    ports.ContractAnalyzer
}

func (a *instrumentedAnalyzer) Analyze(ctx context.Context, req ports.AnalyzeRequest) (*domain.Report, error) {
	a.metrics.requestsInFlight.Inc()
	start := time.Now()
	defer func() {
		a.metrics.requestsInFlight.Dec()
		a.metrics.requestDuration.Observe(time.Since(start).Seconds())
	}()

	report, err := a.next.Analyze(ctx, req)

	a.metrics.requestsTotal.WithLabelValues(a.service, domain.OutcomeCode(err)).Inc()
	if domain.IsKind(err, domain.ErrDisposalFailure) {
		a.metrics.disposalFailuresTotal.Inc()
	}
	if report != nil {
		a.metrics.coverageTotal.WithLabelValues(a.service, string(report.Coverage)).Inc()
		for _, er := range report.EntityRisks {
			result := "ok"
			if er.Signal.LookupFailed {
				result = "failed"
			}
			a.metrics.entityLookupsTotal.WithLabelValues(a.service, result).Inc()
		}
	}
	return report, err
}

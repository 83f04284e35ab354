package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sentinel-hq/callisto/pkg/pipeline"
)

// Collector owns the prometheus registry and metric instances for the
// runtime. It is safe for concurrent use.
type Collector struct {
	registry *prometheus.Registry

	runsTotal     *prometheus.CounterVec
	policyBlocks  *prometheus.CounterVec
	gateFaults    prometheus.Counter
	riskEnergy    prometheus.Histogram
	evidenceScore prometheus.Histogram

	providerLatency *prometheus.HistogramVec
	providerErrors  *prometheus.CounterVec

	rateLimited prometheus.Counter
}

// NewCollector builds a Collector under the given namespace. An empty
// namespace defaults to "callisto".
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "callisto"
	}
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,

		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by governance mode and output state.",
		}, []string{"mode", "state"}),

		policyBlocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "policy_blocks_total",
			Help:      "Policy denials by reason.",
		}, []string{"reason"}),

		gateFaults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_faults_total",
			Help:      "Action-gate faults that forced a fail-closed block.",
		}),

		riskEnergy: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "risk_energy",
			Help:      "Distribution of the risk energy rho per run.",
			Buckets:   prometheus.LinearBuckets(0.0, 0.1, 11),
		}),

		evidenceScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evidence_score",
			Help:      "Distribution of the evidence sufficiency score per run.",
			Buckets:   prometheus.LinearBuckets(0.0, 0.1, 11),
		}),

		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_latency_seconds",
			Help:      "Answer provider round-trip latency.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"provider"}),

		providerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Answer provider failures surfaced fail-soft.",
		}, []string{"provider"}),

		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter before the pipeline ran.",
		}),
	}

	registry.MustRegister(
		c.runsTotal, c.policyBlocks, c.gateFaults,
		c.riskEnergy, c.evidenceScore,
		c.providerLatency, c.providerErrors,
		c.rateLimited,
	)
	return c
}

// RecordRun records the telemetry of one completed pipeline run.
func (c *Collector) RecordRun(res *pipeline.RunResult) {
	c.runsTotal.WithLabelValues(string(res.Decision.Mode), string(res.Output.State)).Inc()
	c.riskEnergy.Observe(res.Metrics.RhoEnergy)
	c.evidenceScore.Observe(res.Metrics.EvidenceScore.Score)

	if res.Metrics.GateFault != "" {
		c.gateFaults.Inc()
	}
	if res.Metrics.Policy != nil && !res.Metrics.Policy.Allow {
		for _, reason := range res.Metrics.Policy.Reasons {
			c.policyBlocks.WithLabelValues(reason).Inc()
		}
	}
}

// RecordProviderCall records one provider round trip.
func (c *Collector) RecordProviderCall(provider string, elapsed time.Duration, failed bool) {
	c.providerLatency.WithLabelValues(provider).Observe(elapsed.Seconds())
	if failed {
		c.providerErrors.WithLabelValues(provider).Inc()
	}
}

// RecordRateLimited counts a request rejected before the pipeline ran.
func (c *Collector) RecordRateLimited() {
	c.rateLimited.Inc()
}

// Handler serves the collector's registry in prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

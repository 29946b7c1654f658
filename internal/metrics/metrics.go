package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ASongADay/internal/domain"
	"ASongADay/internal/ports"
)

// Collector exposes run outcomes as Prometheus metrics.
type Collector struct {
	registry    *prometheus.Registry
	runsTotal   *prometheus.CounterVec
	runDuration prometheus.Histogram
	lastSuccess prometheus.Gauge
}

var _ ports.RunObserver = (*Collector)(nil)

// NewCollector registers the run metrics on a private registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "asongaday_runs_total",
			Help: "Pipeline runs by final stage.",
		}, []string{"stage"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "asongaday_run_duration_seconds",
			Help:    "Wall time of pipeline runs.",
			Buckets: prometheus.DefBuckets,
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "asongaday_last_success_timestamp_seconds",
			Help: "Unix time of the last published post.",
		}),
	}
	c.registry.MustRegister(c.runsTotal, c.runDuration, c.lastSuccess)
	return c
}

// ObserveRun records the final stage of a run.
func (c *Collector) ObserveRun(stage domain.Stage, duration time.Duration) {
	c.runsTotal.WithLabelValues(string(stage)).Inc()
	c.runDuration.Observe(duration.Seconds())
	if stage == domain.StagePublished {
		c.lastSuccess.SetToCurrentTime()
	}
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and embedding.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

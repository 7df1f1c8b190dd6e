// Package metrics exports the process's Prometheus collectors: scan
// request counters, probe-latency histograms, and cache hit/miss
// counters, scraped at GET /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry bundles every collector the service exposes. It is a
// process-wide singleton constructed once at startup and passed down
// to the components that observe it.
type Registry struct {
	ScanRequests   *prometheus.CounterVec
	ScanVerdicts   *prometheus.CounterVec
	ProbeDuration  *prometheus.HistogramVec
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	AnalysisTimeMS prometheus.Histogram
}

// NewRegistry registers every collector against the default Prometheus
// registry. It is meant to be called once per process; the collectors
// are process-wide singletons shared by every request.
func NewRegistry() *Registry {
	return &Registry{
		ScanRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "urlsentry_scan_requests_total",
			Help: "Total number of /scan requests handled, by outcome.",
		}, []string{"outcome"}),
		ScanVerdicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "urlsentry_scan_verdicts_total",
			Help: "Total number of scan verdicts issued, by status.",
		}, []string{"status"}),
		ProbeDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "urlsentry_probe_duration_seconds",
			Help:    "Network probe latency, by probe name.",
			Buckets: prometheus.DefBuckets,
		}, []string{"probe"}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "urlsentry_cache_hits_total",
			Help: "Total number of analysis cache hits.",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "urlsentry_cache_misses_total",
			Help: "Total number of analysis cache misses.",
		}),
		AnalysisTimeMS: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "urlsentry_analysis_duration_ms",
			Help:    "End-to-end analysis pipeline duration in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}),
	}
}

// ObserveProbe records how long a single network probe took.
func (r *Registry) ObserveProbe(probe string, d time.Duration) {
	if r == nil {
		return
	}
	r.ProbeDuration.WithLabelValues(probe).Observe(d.Seconds())
}

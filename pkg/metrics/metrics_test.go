package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("writing metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestRegistryCountersIncrement(t *testing.T) {
	r := &Registry{
		ScanRequests: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "t_scan_requests"}, []string{"outcome"}),
		ScanVerdicts: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "t_scan_verdicts"}, []string{"status"}),
		ProbeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "t_probe_duration_seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"probe"}),
		CacheHits:   prometheus.NewCounter(prometheus.CounterOpts{Name: "t_cache_hits"}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{Name: "t_cache_misses"}),
	}

	r.CacheHits.Inc()
	r.CacheHits.Inc()
	if got := counterValue(t, r.CacheHits); got != 2 {
		t.Errorf("expected 2 cache hits, got %v", got)
	}

	r.ScanRequests.WithLabelValues("success").Inc()
	r.ScanVerdicts.WithLabelValues("safe").Inc()

	r.ObserveProbe("dns", 10*time.Millisecond)
}

func TestRegistryObserveProbeNilSafe(t *testing.T) {
	var r *Registry
	// Must not panic on a nil registry — callers may run without metrics wired.
	r.ObserveProbe("dns", time.Millisecond)
}

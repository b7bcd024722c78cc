package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// AnalysesTotal counts rooftop analyses by provider and outcome.
	AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rooftop",
		Subsystem: "vision",
		Name:      "analyses_total",
		Help:      "Total number of rooftop analyses, labeled by provider and result (success or error kind).",
	}, []string{"provider", "result"})

	// AnalysisDurationSeconds is the wall time of one analysis, including the upstream call.
	AnalysisDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rooftop",
		Subsystem: "vision",
		Name:      "analysis_duration_seconds",
		Help:      "Time to analyze one rooftop image, including the provider round trip.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"provider"})

	// UploadBytes is the size of images accepted by the HTTP handler.
	UploadBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "rooftop",
		Subsystem: "vision",
		Name:      "upload_bytes",
		Help:      "Size in bytes of rooftop images received over HTTP.",
		Buckets:   prometheus.ExponentialBuckets(16*1024, 2, 10),
	})

	// RateLimitedTotal counts requests rejected by the per-client limiter.
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "rooftop",
		Subsystem: "vision",
		Name:      "rate_limited_total",
		Help:      "Total number of HTTP requests rejected by the rate limiter.",
	})
)

// Register registers the metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			AnalysesTotal,
			AnalysisDurationSeconds,
			UploadBytes,
			RateLimitedTotal,
		)
	})
}

// ObserveAnalysis records one finished analysis.
func ObserveAnalysis(provider, result string, elapsed time.Duration) {
	AnalysesTotal.WithLabelValues(provider, result).Inc()
	AnalysisDurationSeconds.WithLabelValues(provider).Observe(elapsed.Seconds())
}

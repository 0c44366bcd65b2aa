// Package waybackmetrics provides optional Prometheus instrumentation for
// a wayback.Session. It is a separate package so that importing the core
// wayback client never pulls in a metrics dependency unless the caller
// asks for it.
package waybackmetrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the instrumentation hook a wayback.Session reports into.
// Session calls all three methods directly on any non-nil Collector it is
// given.
type Collector interface {
	ObserveRequest(endpoint string, statusCode int, duration time.Duration)
	ObserveRetry(endpoint string, attempt int)
	ObserveRateLimitWait(endpoint string, wait time.Duration)
}

// PrometheusCollector is the default Collector implementation, backed by a
// handful of Prometheus counters and histograms registered against a
// caller-supplied registry.
type PrometheusCollector struct {
	requests       *prometheus.HistogramVec
	retries        *prometheus.CounterVec
	rateLimitWaits *prometheus.HistogramVec
}

// NewPrometheusCollector creates collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer to use the global registry.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wayback",
			Name:      "request_duration_seconds",
			Help:      "Duration of requests made by a wayback.Session, by endpoint and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint", "status_code"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wayback",
			Name:      "retries_total",
			Help:      "Count of retry attempts made by a wayback.Session, by endpoint.",
		}, []string{"endpoint"}),
		rateLimitWaits: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wayback",
			Name:      "rate_limit_wait_seconds",
			Help:      "Time spent waiting on a per-endpoint rate limiter.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"endpoint"}),
	}
	reg.MustRegister(c.requests, c.retries, c.rateLimitWaits)
	return c
}

func (c *PrometheusCollector) ObserveRequest(endpoint string, statusCode int, duration time.Duration) {
	c.requests.WithLabelValues(endpoint, statusCodeLabel(statusCode)).Observe(duration.Seconds())
}

func (c *PrometheusCollector) ObserveRetry(endpoint string, attempt int) {
	c.retries.WithLabelValues(endpoint).Inc()
}

func (c *PrometheusCollector) ObserveRateLimitWait(endpoint string, wait time.Duration) {
	c.rateLimitWaits.WithLabelValues(endpoint).Observe(wait.Seconds())
}

func statusCodeLabel(code int) string {
	if code == 0 {
		return "error"
	}
	return strconv.Itoa(code)
}

// Package metrics exposes Prometheus instrumentation for the HTTP layer and
// collection persistence.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "socialcosmos"

// Collector holds all Prometheus metrics for the service on its own registry.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	CollectionWrites   *prometheus.CounterVec
	CollectionDuration *prometheus.HistogramVec
	CollectionBytes    *prometheus.GaugeVec
}

// NewCollector creates a collector registered on a fresh registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		CollectionWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collection_writes_total",
			Help:      "Whole-collection writes by collection and outcome",
		}, []string{"collection", "outcome"}),
		CollectionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collection_write_duration_seconds",
			Help:      "Time spent serializing and saving a collection",
			Buckets:   prometheus.DefBuckets,
		}, []string{"collection"}),
		CollectionBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "collection_size_bytes",
			Help:      "Size of the last persisted collection document",
		}, []string{"collection"}),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.CollectionWrites,
		c.CollectionDuration,
		c.CollectionBytes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Registry returns the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveCollectionWrite records the outcome of persisting one collection.
// A nil collector is a no-op.
func (c *Collector) ObserveCollectionWrite(collection string, size int, took time.Duration, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	} else {
		c.CollectionBytes.WithLabelValues(collection).Set(float64(size))
	}
	c.CollectionWrites.WithLabelValues(collection, outcome).Inc()
	c.CollectionDuration.WithLabelValues(collection).Observe(took.Seconds())
}

// ObserveHTTPRequest records a completed HTTP request. A nil collector is a no-op.
func (c *Collector) ObserveHTTPRequest(method, path string, status int, took time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, path).Observe(took.Seconds())
}

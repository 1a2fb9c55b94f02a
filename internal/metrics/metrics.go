// Package metrics exposes Prometheus metrics for the conversion API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Provider owns the registry so tests can run several instances without
// tripping over duplicate registration on the global default.
type Provider struct {
	reg              *prometheus.Registry
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	conversionsTotal *prometheus.CounterVec
}

// New builds a registry with process collectors and the API metrics.
func New(version string) *Provider {
	reg := prometheus.NewRegistry()

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	build := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "quadtile_build_info",
			Help: "Build info for this binary (value is always 1).",
		},
		[]string{"version"},
	)
	reg.MustRegister(build)
	if version == "" {
		version = "dev"
	}
	build.WithLabelValues(version).Set(1)

	p := &Provider{
		reg: reg,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quadtile_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quadtile_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"method", "route", "status"},
		),
		conversionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quadtile_conversions_total",
				Help: "Coordinate conversions by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
	}
	reg.MustRegister(p.requestsTotal, p.requestDuration, p.conversionsTotal)

	return p
}

// Handler returns the /metrics endpoint for this registry.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served request.
func (p *Provider) ObserveHTTP(method, route string, status int, duration time.Duration) {
	st := strconv.Itoa(status)
	p.requestsTotal.WithLabelValues(method, route, st).Inc()
	p.requestDuration.WithLabelValues(method, route, st).Observe(duration.Seconds())
}

// ObserveConversion records one conversion attempt.
func (p *Provider) ObserveConversion(kind string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	p.conversionsTotal.WithLabelValues(kind, outcome).Inc()
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsManager holds custom Prometheus metrics for the dashboard.
type MetricsManager struct {
	Registry              *prometheus.Registry
	AdsApprovedTotal      prometheus.Counter
	AdsRejectedTotal      prometheus.Counter
	ChangesRequestedTotal prometheus.Counter
	UpstreamErrorsTotal   *prometheus.CounterVec   // errors by upstream operation
	RequestLatency        *prometheus.HistogramVec // HTTP latency by route
}

// NewMetricsManager initializes and registers custom Prometheus metrics.
func NewMetricsManager(serviceName string) *MetricsManager {
	registry := prometheus.NewRegistry()

	adsApprovedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "ads_approved_total",
		Help:      "Total number of ads approved through the dashboard.",
	})
	adsRejectedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "ads_rejected_total",
		Help:      "Total number of ads rejected through the dashboard.",
	})
	changesRequestedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "ads_changes_requested_total",
		Help:      "Total number of ads returned for rework.",
	})
	upstreamErrorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "upstream_errors_total",
		Help:      "Total number of upstream API errors by operation.",
	}, []string{"operation"})
	requestLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: serviceName,
		Name:      "http_request_latency_seconds",
		Help:      "Latency of HTTP requests by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	registry.MustRegister(
		adsApprovedTotal,
		adsRejectedTotal,
		changesRequestedTotal,
		upstreamErrorsTotal,
		requestLatency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:              registry,
		AdsApprovedTotal:      adsApprovedTotal,
		AdsRejectedTotal:      adsRejectedTotal,
		ChangesRequestedTotal: changesRequestedTotal,
		UpstreamErrorsTotal:   upstreamErrorsTotal,
		RequestLatency:        requestLatency,
	}
}

// StartMetricsServer starts an HTTP server exposing the registry on /metrics.
func StartMetricsServer(port string, logger *zap.Logger, registry *prometheus.Registry) error {
	if port == "" {
		logger.Info("Prometheus metrics server port not configured, server will not start.")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	logger.Info("Prometheus metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	return server.ListenAndServe()
}

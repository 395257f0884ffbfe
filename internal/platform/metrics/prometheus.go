package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aeromarket/drone-service/internal/platform/logger"
)

// MetricsManager holds custom Prometheus metrics for the catalog service.
type MetricsManager struct {
	Registry           *prometheus.Registry
	DronesCreatedTotal prometheus.Counter
	DronesSoldTotal    prometheus.Counter
	ReviewsAddedTotal  prometheus.Counter
	FavoriteOpsTotal   *prometheus.CounterVec   // add/remove
	APIErrorsTotal     *prometheus.CounterVec   // by operation and error kind
	RequestLatency     *prometheus.HistogramVec // by operation
}

// NewMetricsManager initializes and registers custom Prometheus metrics on a
// dedicated registry.
func NewMetricsManager(serviceName string) *MetricsManager {
	registry := prometheus.NewRegistry()

	// metric names forbid '-', service names use it
	serviceName = strings.ReplaceAll(serviceName, "-", "_")

	dronesCreatedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "drones_created_total",
		Help:      "Total number of drone listings created.",
	})
	dronesSoldTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "drones_sold_total",
		Help:      "Total number of listings transitioned to sold.",
	})
	reviewsAddedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "reviews_added_total",
		Help:      "Total number of reviews appended to listings.",
	})
	favoriteOpsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "favorite_ops_total",
		Help:      "Total number of favorite set mutations by operation.",
	}, []string{"op"})
	apiErrorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "api_errors_total",
		Help:      "Total number of API errors by operation.",
	}, []string{"operation", "error_type"})
	requestLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: serviceName,
		Name:      "api_request_latency_seconds",
		Help:      "Latency of API requests by operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	registry.MustRegister(
		dronesCreatedTotal,
		dronesSoldTotal,
		reviewsAddedTotal,
		favoriteOpsTotal,
		apiErrorsTotal,
		requestLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:           registry,
		DronesCreatedTotal: dronesCreatedTotal,
		DronesSoldTotal:    dronesSoldTotal,
		ReviewsAddedTotal:  reviewsAddedTotal,
		FavoriteOpsTotal:   favoriteOpsTotal,
		APIErrorsTotal:     apiErrorsTotal,
		RequestLatency:     requestLatency,
	}
}

// StartMetricsServer starts an HTTP server exposing Prometheus metrics.
func StartMetricsServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		appLogger.Info("Prometheus metrics server port not configured, server will not start.")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	appLogger.Info("Prometheus metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	return server.ListenAndServe()
}

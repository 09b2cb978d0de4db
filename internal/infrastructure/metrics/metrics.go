package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wedding",
			Subsystem: "photo_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wedding",
			Subsystem: "photo_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	// Upload counters
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wedding",
			Subsystem: "photo_api",
			Name:      "uploads_total",
			Help:      "Total photo uploads",
		},
		[]string{"content_type", "status"},
	)

	// Upload bytes counter
	UploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wedding",
			Subsystem: "photo_api",
			Name:      "upload_bytes_total",
			Help:      "Total bytes uploaded",
		},
		[]string{"content_type"},
	)

	// Storage backend operations counter
	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wedding",
			Subsystem: "photo_api",
			Name:      "storage_operations_total",
			Help:      "Total storage backend operations",
		},
		[]string{"backend", "operation", "status"},
	)

	// Storage backend operation duration
	StorageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wedding",
			Subsystem: "photo_api",
			Name:      "storage_duration_seconds",
			Help:      "Storage backend operation duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"backend", "operation"},
	)

	// Token validation outcomes
	TokenValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wedding",
			Subsystem: "photo_api",
			Name:      "token_validations_total",
			Help:      "Total access token validation checks",
		},
		[]string{"outcome"},
	)

	// Tokens issued
	TokensIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wedding",
			Subsystem: "photo_api",
			Name:      "tokens_issued_total",
			Help:      "Total access tokens generated",
		},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordUpload records a photo upload
func RecordUpload(contentType, status string, bytes int64) {
	UploadsTotal.WithLabelValues(contentType, status).Inc()
	if status == "success" {
		UploadBytesTotal.WithLabelValues(contentType).Add(float64(bytes))
	}
}

// RecordStorageOperation records a storage backend operation
func RecordStorageOperation(backend, operation, status string, durationSec float64) {
	StorageOperationsTotal.WithLabelValues(backend, operation, status).Inc()
	StorageDuration.WithLabelValues(backend, operation).Observe(durationSec)
}

// RecordTokenValidation records a token validation outcome
func RecordTokenValidation(valid bool) {
	outcome := "invalid"
	if valid {
		outcome = "valid"
	}
	TokenValidationsTotal.WithLabelValues(outcome).Inc()
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the mock backend.
//
// # Description
//
// Metrics are created against an injected registerer rather than the
// package-global default, so handlers receive an explicit handle and tests
// can use isolated registries. Exposed via /metrics for Prometheus scraping.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const metricsNamespace = "aleutian"

// Subsystem for generation metrics
const backendSubsystem = "llm_backend"

// Metrics holds the Prometheus instruments for generation traffic.
//
// # Fields
//
//   - RequestsTotal: Counter of generation requests by status
//   - GenerationDurationSeconds: Histogram of simulated generation time
//   - TokensPerSecond: Histogram of reported generation speed
//   - ActiveRequests: Gauge of in-flight generation requests
type Metrics struct {
	// RequestsTotal counts generation requests.
	// Labels: status (success, validation_error, error)
	RequestsTotal *prometheus.CounterVec

	// GenerationDurationSeconds measures per-request generation time.
	GenerationDurationSeconds prometheus.Histogram

	// TokensPerSecond measures the reported generation speed.
	TokensPerSecond prometheus.Histogram

	// ActiveRequests tracks in-flight generation requests.
	ActiveRequests prometheus.Gauge
}

// NewMetrics creates and registers the backend instruments on reg.
//
// # Inputs
//
//   - reg: Target registerer. Pass prometheus.DefaultRegisterer in main,
//     an isolated prometheus.NewRegistry() in tests.
//
// # Limitations
//
//   - Panics on duplicate registration against the same registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: backendSubsystem,
				Name:      "requests_total",
				Help:      "Total generation requests by status",
			},
			[]string{"status"},
		),

		GenerationDurationSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: backendSubsystem,
				Name:      "generation_duration_seconds",
				Help:      "Simulated generation time per request in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
		),

		TokensPerSecond: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: backendSubsystem,
				Name:      "tokens_per_second",
				Help:      "Reported generation speed per request",
				Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500},
			},
		),

		ActiveRequests: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: backendSubsystem,
				Name:      "active_requests",
				Help:      "Number of in-flight generation requests",
			},
		),
	}
}

// Status values for the requests_total counter.
const (
	StatusSuccess         = "success"
	StatusValidationError = "validation_error"
	StatusError           = "error"
)

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AleutianAI/AleutianBench/services/llm_backend/observability"
)

const serviceName = "llm-backend"

// Request defaults matching the wire contract.
const (
	defaultMaxTokens   = 100
	defaultTemperature = 0.7
)

// generateRequest is the wire request for POST /generate. Pointer fields
// distinguish "absent" from zero so defaults only fill true omissions.
type generateRequest struct {
	Prompt      string   `json:"prompt" binding:"required"`
	MaxTokens   *int     `json:"max_tokens" binding:"omitempty,gt=0"`
	Temperature *float64 `json:"temperature" binding:"omitempty,gte=0,lte=2"`
}

// setupRouter wires the backend routes onto a gin engine.
//
// # Inputs
//
//   - worker: Generation worker; shared across requests.
//   - metrics: Injected metrics handle (never nil).
//   - metricsHandler: Handler serving GET /metrics; promhttp.Handler() in
//     main, an isolated registry handler in tests.
func setupRouter(worker *Worker, metrics *observability.Metrics, metricsHandler http.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))

	router.POST("/generate", handleGenerate(worker, metrics))
	router.GET("/healthz", handleHealthz)
	router.GET("/readyz", handleReadyz(worker))
	router.GET("/metrics", gin.WrapH(metricsHandler))

	return router
}

func handleGenerate(worker *Worker, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req generateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			metrics.RequestsTotal.WithLabelValues(observability.StatusValidationError).Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		maxTokens := defaultMaxTokens
		if req.MaxTokens != nil {
			maxTokens = *req.MaxTokens
		}
		temperature := defaultTemperature
		if req.Temperature != nil {
			temperature = *req.Temperature
		}

		slog.Info("generate request",
			"prompt_length", len(req.Prompt),
			"max_tokens", maxTokens,
			"temperature", temperature)

		metrics.ActiveRequests.Inc()
		result := worker.Generate(req.Prompt, maxTokens, temperature)
		metrics.ActiveRequests.Dec()

		metrics.RequestsTotal.WithLabelValues(observability.StatusSuccess).Inc()
		metrics.GenerationDurationSeconds.Observe(result.LatencyMs / 1000)
		metrics.TokensPerSecond.Observe(result.TokensPerSec)

		slog.Info("generate success",
			"latency_ms", result.LatencyMs,
			"tokens_per_sec", result.TokensPerSec,
			"output_length", len(result.Text))

		c.JSON(http.StatusOK, result)
	}
}

func handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "backend"})
}

func handleReadyz(worker *Worker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !worker.IsReady() {
			slog.Warn("readiness check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "backend not ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "service": "backend"})
	}
}

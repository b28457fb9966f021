// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package stats owns the benchmark data model and reduces raw per-request
// outcomes into a RunSummary.
//
// # Description
//
// The reduction is a synchronous, single-threaded pure function: given the
// same outcome set it produces an identical summary (modulo RunID and
// Timestamp, which callers control). Percentiles are nearest-rank, not
// interpolated, except p50 which is the statistical median — this asymmetry
// is load-bearing because downstream regression gates were tuned against it.
//
// # Thread Safety
//
// RunSummary and RequestOutcome are immutable after creation. Summarize has
// no shared state.
package stats

import (
	"math"
	"sort"
	"time"
)

// RequestOutcome is the immutable record of a single dispatched request.
//
// Created exactly once per request by the load driver; RequestID is 1-based
// and preserved across concurrent completion so downstream consumers can
// recover dispatch order.
type RequestOutcome struct {
	RequestID    int     `json:"request_id"`
	Success      bool    `json:"success"`
	LatencyMs    float64 `json:"latency_ms"`
	StatusCode   int     `json:"status_code"`
	TokensPerSec float64 `json:"tokens_per_sec"`
	Error        string  `json:"error,omitempty"`
}

// LatencyStats holds latency aggregates over successful requests only,
// in milliseconds.
type LatencyStats struct {
	MinMs    float64 `json:"min_ms"`
	MaxMs    float64 `json:"max_ms"`
	MeanMs   float64 `json:"mean_ms"`
	MedianMs float64 `json:"median_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
	P99Ms    float64 `json:"p99_ms"`
	StdevMs  float64 `json:"stdev_ms"`
}

// RequestError pairs a failed request with its error detail for the report.
type RequestError struct {
	RequestID int    `json:"request_id"`
	Error     string `json:"error"`
}

// RunSummary is the persisted result of one benchmark run.
//
// Invariants: SuccessfulRequests + FailedRequests == TotalRequests, and
// ErrorRate == FailedRequests / TotalRequests. Immutable after creation.
type RunSummary struct {
	RunID              string         `json:"run_id"`
	Timestamp          string         `json:"timestamp"`
	BaseURL            string         `json:"base_url"`
	TotalRequests      int            `json:"total_requests"`
	SuccessfulRequests int            `json:"successful_requests"`
	FailedRequests     int            `json:"failed_requests"`
	Concurrency        int            `json:"concurrency"`
	TotalDurationS     float64        `json:"total_duration_s"`
	ThroughputRPS      float64        `json:"throughput_rps"`
	ErrorRate          float64        `json:"error_rate"`
	Latency            LatencyStats   `json:"latency_stats"`
	AvgTokensPerSec    float64        `json:"avg_tokens_per_sec"`
	Errors             []RequestError `json:"errors"`
}

// HasLatencyStats reports whether the summary carries meaningful latency
// percentiles. False for degenerate runs where every request failed.
func (s *RunSummary) HasLatencyStats() bool {
	return s.SuccessfulRequests > 0
}

// Stamp assigns run identity and wall-clock metadata.
//
// Kept out of Summarize so the reduction itself stays deterministic:
// summarizing the same outcome set twice yields identical summaries.
func (s *RunSummary) Stamp(runID, baseURL string, at time.Time) {
	s.RunID = runID
	s.BaseURL = baseURL
	s.Timestamp = at.Format("2006-01-02 15:04:05")
}

// Summarize reduces a set of request outcomes into a RunSummary.
//
// # Description
//
// Latency statistics cover successful requests only, sorted ascending.
// The error rate is always denominated by totalRequested: outcomes missing
// from the set (an aborted run) count as failures, so
// failed = totalRequested - successful and the summary invariants hold even
// for partial collections.
//
// When no request succeeded the summary is degenerate: latency stats stay
// zero and ThroughputRPS is 0. Callers must check HasLatencyStats before
// reading percentiles.
//
// # Inputs
//
//   - outcomes: Per-request records, any order.
//   - totalRequested: Number of requests the run was asked to send (>= 1).
//   - duration: Wall-clock duration of the whole run.
//   - concurrency: Worker-pool size used for the run.
func Summarize(outcomes []RequestOutcome, totalRequested int, duration time.Duration, concurrency int) RunSummary {
	var latencies []float64
	var tokensTotal float64
	var reqErrors []RequestError

	for _, o := range outcomes {
		if o.Success {
			latencies = append(latencies, o.LatencyMs)
			tokensTotal += o.TokensPerSec
		} else {
			reqErrors = append(reqErrors, RequestError{RequestID: o.RequestID, Error: o.Error})
		}
	}
	sort.SliceStable(reqErrors, func(i, j int) bool {
		return reqErrors[i].RequestID < reqErrors[j].RequestID
	})

	successful := len(latencies)
	failed := totalRequested - successful

	durationS := duration.Seconds()
	summary := RunSummary{
		TotalRequests:      totalRequested,
		SuccessfulRequests: successful,
		FailedRequests:     failed,
		Concurrency:        concurrency,
		TotalDurationS:     round2(durationS),
		ErrorRate:          round4(float64(failed) / float64(totalRequested)),
		Errors:             reqErrors,
	}

	if successful == 0 {
		return summary
	}

	sort.Float64s(latencies)

	if durationS > 0 {
		summary.ThroughputRPS = round2(float64(successful) / durationS)
	}
	summary.AvgTokensPerSec = round2(tokensTotal / float64(successful))

	median := medianOf(latencies)
	summary.Latency = LatencyStats{
		MinMs:    round2(latencies[0]),
		MaxMs:    round2(latencies[successful-1]),
		MeanMs:   round2(meanOf(latencies)),
		MedianMs: round2(median),
		P50Ms:    round2(median),
		P95Ms:    round2(nearestRank(latencies, 0.95)),
		P99Ms:    round2(nearestRank(latencies, 0.99)),
		StdevMs:  round2(stdevOf(latencies)),
	}
	return summary
}

// nearestRank returns the nearest-rank percentile over an ascending-sorted
// slice: index = min(floor(n*q), n-1). No interpolation.
func nearestRank(sorted []float64, q float64) float64 {
	idx := int(float64(len(sorted)) * q)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// medianOf returns the statistical median of an ascending-sorted slice,
// averaging the two middle ranks for even lengths.
func medianOf(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func meanOf(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdevOf returns the sample standard deviation (n-1 denominator), 0 for
// fewer than two samples.
func stdevOf(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := meanOf(values)
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }

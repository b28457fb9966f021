// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stats

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// successOutcomes builds n successful outcomes with latencies 1..n ms, so
// the sorted order is known and percentile ranks can be computed by hand.
func successOutcomes(n int) []RequestOutcome {
	out := make([]RequestOutcome, n)
	for i := range out {
		out[i] = RequestOutcome{
			RequestID:    i + 1,
			Success:      true,
			LatencyMs:    float64(i + 1),
			StatusCode:   200,
			TokensPerSec: 100,
		}
	}
	return out
}

func TestPercentileIndices(t *testing.T) {
	// index = min(floor(n*q), n-1) over latencies 1..n.
	tests := []struct {
		n       int
		wantP95 float64
		wantP99 float64
	}{
		{1, 1, 1},
		{2, 2, 2},
		{20, 20, 20},
		{100, 96, 100},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			s := Summarize(successOutcomes(tt.n), tt.n, time.Second, 1)
			assert.Equal(t, tt.wantP95, s.Latency.P95Ms, "p95")
			assert.Equal(t, tt.wantP99, s.Latency.P99Ms, "p99")
		})
	}
}

func TestMedianIsInterpolatedForEvenN(t *testing.T) {
	s := Summarize(successOutcomes(20), 20, time.Second, 1)
	assert.Equal(t, 10.5, s.Latency.P50Ms)
	assert.Equal(t, s.Latency.P50Ms, s.Latency.MedianMs)

	s = Summarize(successOutcomes(21), 21, time.Second, 1)
	assert.Equal(t, 11.0, s.Latency.P50Ms)
}

func TestErrorRateDenominatedByTotal(t *testing.T) {
	tests := []struct {
		failed int
		want   float64
	}{
		{0, 0.0},
		{3, 0.3},
		{10, 1.0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("failed=%d", tt.failed), func(t *testing.T) {
			outcomes := successOutcomes(10 - tt.failed)
			for i := 0; i < tt.failed; i++ {
				outcomes = append(outcomes, RequestOutcome{
					RequestID: 10 - tt.failed + i + 1,
					Success:   false,
					Error:     "HTTP 500",
				})
			}
			s := Summarize(outcomes, 10, time.Second, 2)
			assert.Equal(t, tt.want, s.ErrorRate)
			assert.Equal(t, tt.failed, s.FailedRequests)
			assert.Equal(t, s.TotalRequests, s.SuccessfulRequests+s.FailedRequests)
		})
	}
}

func TestPartialRunCountsMissingAsFailed(t *testing.T) {
	// 10 requested, only 7 outcomes collected (aborted run).
	s := Summarize(successOutcomes(7), 10, time.Second, 4)
	assert.Equal(t, 10, s.TotalRequests)
	assert.Equal(t, 7, s.SuccessfulRequests)
	assert.Equal(t, 3, s.FailedRequests)
	assert.Equal(t, 0.3, s.ErrorRate)
}

func TestDegenerateSummaryAllFailed(t *testing.T) {
	outcomes := []RequestOutcome{
		{RequestID: 1, Success: false, Error: "Request timeout"},
		{RequestID: 2, Success: false, Error: "connection refused"},
	}
	s := Summarize(outcomes, 2, 5*time.Second, 1)

	assert.Equal(t, 1.0, s.ErrorRate)
	assert.False(t, s.HasLatencyStats())
	assert.Zero(t, s.Latency)
	assert.Zero(t, s.ThroughputRPS)
	require.Len(t, s.Errors, 2)
	assert.Equal(t, 1, s.Errors[0].RequestID)
}

func TestThroughput(t *testing.T) {
	s := Summarize(successOutcomes(50), 50, 10*time.Second, 5)
	assert.Equal(t, 5.0, s.ThroughputRPS)

	s = Summarize(successOutcomes(5), 5, 0, 1)
	assert.Zero(t, s.ThroughputRPS, "zero duration must not divide by zero")
}

func TestErrorsSortedByRequestID(t *testing.T) {
	outcomes := []RequestOutcome{
		{RequestID: 9, Success: false, Error: "HTTP 503"},
		{RequestID: 2, Success: false, Error: "Request timeout"},
		{RequestID: 5, Success: true, LatencyMs: 10},
	}
	s := Summarize(outcomes, 3, time.Second, 3)
	require.Len(t, s.Errors, 2)
	assert.Equal(t, 2, s.Errors[0].RequestID)
	assert.Equal(t, 9, s.Errors[1].RequestID)
}

func TestSummarizeIsDeterministic(t *testing.T) {
	outcomes := successOutcomes(30)
	outcomes[4].Success = false
	outcomes[4].Error = "HTTP 500"

	a := Summarize(outcomes, 30, 3*time.Second, 4)
	b := Summarize(outcomes, 30, 3*time.Second, 4)
	assert.Equal(t, a, b)
}

func TestStamp(t *testing.T) {
	s := Summarize(successOutcomes(1), 1, time.Second, 1)
	at := time.Date(2025, 11, 3, 12, 30, 0, 0, time.UTC)
	s.Stamp("run-1", "http://localhost:8000", at)

	assert.Equal(t, "run-1", s.RunID)
	assert.Equal(t, "http://localhost:8000", s.BaseURL)
	assert.Equal(t, "2025-11-03 12:30:00", s.Timestamp)
}

func TestAvgTokensPerSec(t *testing.T) {
	outcomes := []RequestOutcome{
		{RequestID: 1, Success: true, LatencyMs: 10, TokensPerSec: 100},
		{RequestID: 2, Success: true, LatencyMs: 20, TokensPerSec: 200},
		{RequestID: 3, Success: false, TokensPerSec: 0, Error: "HTTP 500"},
	}
	s := Summarize(outcomes, 3, time.Second, 1)
	assert.Equal(t, 150.0, s.AvgTokensPerSec, "failed requests excluded from the mean")
}

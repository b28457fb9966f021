// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package results

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianBench/services/bench/stats"
)

func sampleSummary() *stats.RunSummary {
	return &stats.RunSummary{
		RunID:              "run-42",
		Timestamp:          "2025-11-03 09:00:00",
		BaseURL:            "http://localhost:8000",
		TotalRequests:      100,
		SuccessfulRequests: 98,
		FailedRequests:     2,
		Concurrency:        4,
		TotalDurationS:     12.5,
		ThroughputRPS:      7.84,
		ErrorRate:          0.02,
		Latency: stats.LatencyStats{
			MinMs: 8.1, MaxMs: 110.2, MeanMs: 42.3, MedianMs: 40.0,
			P50Ms: 40.0, P95Ms: 96.5, P99Ms: 108.9, StdevMs: 18.2,
		},
		AvgTokensPerSec: 132.4,
		Errors: []stats.RequestError{
			{RequestID: 17, Error: "Request timeout"},
			{RequestID: 61, Error: "HTTP 503: overloaded"},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench_results.json")
	want := sampleSummary()
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveWritesIndentedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench_results.json")
	require.NoError(t, Save(path, sampleSummary()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)

	assert.Contains(t, content, "\n  \"run_id\": \"run-42\"")
	assert.Contains(t, content, "\"latency_stats\"")
	assert.Contains(t, content, "\"p95_ms\"")
	assert.True(t, strings.HasSuffix(content, "\n"))
}

func TestLoadMissingFileIsErrNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadCorruptFileIsNotErrNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o640))

	_, err := Load(path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound, "corrupt and missing must stay distinguishable")
}

func TestSetBaseline(t *testing.T) {
	dir := t.TempDir()
	currentPath := filepath.Join(dir, "bench_results.json")
	baselinePath := filepath.Join(dir, "baseline.json")
	require.NoError(t, Save(currentPath, sampleSummary()))

	copied, err := SetBaseline(currentPath, baselinePath)
	require.NoError(t, err)
	assert.Equal(t, "run-42", copied.RunID)

	baseline, err := Load(baselinePath)
	require.NoError(t, err)
	assert.Equal(t, sampleSummary(), baseline)
}

func TestSetBaselineRequiresCurrent(t *testing.T) {
	dir := t.TempDir()
	_, err := SetBaseline(filepath.Join(dir, "missing.json"), filepath.Join(dir, "baseline.json"))
	assert.ErrorIs(t, err, ErrNotFound)
}

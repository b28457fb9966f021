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
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianBench/pkg/ux"
	"github.com/AleutianAI/AleutianBench/services/bench/loadgen"
	"github.com/AleutianAI/AleutianBench/services/bench/results"
	"github.com/AleutianAI/AleutianBench/services/bench/stats"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	runBaseURL     string        // Target endpoint base URL
	runPromptsPath string        // JSONL prompt set
	runRequests    int           // Total requests to dispatch
	runConcurrency int           // Worker-pool size
	runTimeout     time.Duration // Per-request deadline
	runRate        float64       // Dispatch cap in requests/second, 0 = unlimited
	runOutputPath  string        // Where the results JSON lands
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// runCmd drives a benchmark run against a generation endpoint.
//
// # Description
//
// Loads the prompt set, pre-flights the target's health endpoint, dispatches
// the configured load, prints the aggregated report, and persists it as the
// current results file for later compare/remediate passes.
//
// # Examples
//
//	aleutianbench run                                  # defaults
//	aleutianbench run -n 500 -c 20                     # heavier load
//	aleutianbench run --rate 50 --timeout 10s          # capped dispatch
//	aleutianbench run --url http://gateway:8000
//
// # Limitations
//
//   - An unreachable target aborts before any load is sent
//   - A non-200 health probe only warns; the run proceeds
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a benchmark against the generation endpoint",
	Long: `Drives load against POST /generate, cycling through the prompt set,
and writes the aggregated statistics to the results file.

Exits 1 when the run's error rate exceeds 5%.`,
	Run: runBenchmark,
}

func init() {
	runCmd.Flags().StringVar(&runBaseURL, "url", "http://localhost:8000",
		"Base URL of the generation endpoint")
	runCmd.Flags().StringVar(&runPromptsPath, "prompts", "prompts.jsonl",
		"JSONL file with one prompt object per line")
	runCmd.Flags().IntVarP(&runRequests, "requests", "n", 100,
		"Total number of requests to dispatch")
	runCmd.Flags().IntVarP(&runConcurrency, "concurrency", "c", 10,
		"Number of concurrent workers")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 30*time.Second,
		"Per-request timeout")
	runCmd.Flags().Float64Var(&runRate, "rate", 0,
		"Cap dispatch at this many requests/second (0 = unlimited)")
	runCmd.Flags().StringVarP(&runOutputPath, "output", "o", "bench_results.json",
		"Path for the results JSON file")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runBenchmark(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	limits, err := loadThresholds()
	if err != nil {
		fatal("loading thresholds", err)
	}

	prompts, err := loadgen.LoadPrompts(runPromptsPath)
	if err != nil {
		fatal("loading prompts", err)
	}
	logger.Info("prompt set loaded", "path", runPromptsPath, "count", len(prompts))

	client := loadgen.NewClient(runBaseURL, runTimeout)

	// Pre-flight: unreachable host aborts, degraded health only warns.
	status, err := client.CheckHealth(ctx)
	if err != nil {
		fatal("target health check", err)
	}
	if status != http.StatusOK {
		ux.Warning(fmt.Sprintf("target reported health status %d - continuing anyway", status))
	}

	progress := newProgressPrinter()
	driver := loadgen.NewDriver(client, logger.Slog())

	outcomes, duration, err := driver.Run(ctx, prompts, loadgen.Config{
		TotalRequests: runRequests,
		Concurrency:   runConcurrency,
		Timeout:       runTimeout,
		RateLimit:     runRate,
		OnProgress:    progress.update,
	})
	progress.finish()
	if err != nil {
		fatal("benchmark run", err)
	}

	summary := stats.Summarize(outcomes, runRequests, duration, runConcurrency)
	summary.Stamp(uuid.NewString(), runBaseURL, time.Now())

	printRunSummary(&summary)

	if err := results.Save(runOutputPath, &summary); err != nil {
		fatal("saving results", err)
	}
	ux.Success("results written to " + runOutputPath)

	if summary.ErrorRate > limits.ErrorRateCritical {
		ux.Error(fmt.Sprintf("error rate %.2f%% exceeds %.0f%% gate",
			summary.ErrorRate*100, limits.ErrorRateCritical*100))
		osExit(exitFailure)
	}
}

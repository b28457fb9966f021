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
	"encoding/json"
	"fmt"
	"os"

	"github.com/AleutianAI/AleutianBench/pkg/ux"
	"github.com/AleutianAI/AleutianBench/services/bench/regression"
	"github.com/AleutianAI/AleutianBench/services/bench/remediation"
	"github.com/AleutianAI/AleutianBench/services/bench/stats"
)

// Exit codes. Zero means the gate passed; one covers regressions, critical
// remediation, and fatal input errors alike so CI only branches once.
const (
	exitSuccess = 0
	exitFailure = 1
)

// osExit is swappable so command tests can intercept exits.
var osExit = os.Exit

// fatal prints a structured explanation and exits. Every fatal path in the
// CLI funnels through here so the message always precedes the exit code.
func fatal(msg string, err error) {
	if err != nil {
		ux.Error(fmt.Sprintf("%s: %v", msg, err))
	} else {
		ux.Error(msg)
	}
	osExit(exitFailure)
}

// outputJSON writes structured data as indented JSON to stdout.
func outputJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// printRunSummary renders the post-run report.
func printRunSummary(s *stats.RunSummary) {
	ux.Title("Benchmark Results")
	ux.Metric("run_id", s.RunID)
	ux.Metric("target", s.BaseURL)
	ux.Metric("requests", fmt.Sprintf("%d total, %d ok, %d failed",
		s.TotalRequests, s.SuccessfulRequests, s.FailedRequests))
	ux.Metric("concurrency", fmt.Sprintf("%d", s.Concurrency))
	ux.Metric("duration_s", fmt.Sprintf("%.2f", s.TotalDurationS))
	ux.Metric("throughput_rps", fmt.Sprintf("%.2f", s.ThroughputRPS))
	ux.Metric("error_rate", fmt.Sprintf("%.2f%%", s.ErrorRate*100))

	if s.HasLatencyStats() {
		ux.Metric("latency_p50_ms", fmt.Sprintf("%.2f", s.Latency.P50Ms))
		ux.Metric("latency_p95_ms", fmt.Sprintf("%.2f", s.Latency.P95Ms))
		ux.Metric("latency_p99_ms", fmt.Sprintf("%.2f", s.Latency.P99Ms))
		ux.Metric("latency_mean_ms", fmt.Sprintf("%.2f", s.Latency.MeanMs))
		ux.Metric("avg_tokens_per_sec", fmt.Sprintf("%.2f", s.AvgTokensPerSec))
	} else {
		ux.Warning("no successful requests - latency statistics unavailable")
	}

	if len(s.Errors) > 0 {
		ux.Muted(fmt.Sprintf("%d request errors (first: #%d %s)",
			len(s.Errors), s.Errors[0].RequestID, s.Errors[0].Error))
	}
}

// printComparisonReport renders the regression verdict and its issues.
func printComparisonReport(report regression.Report, quiet bool) {
	if quiet && report.Passed {
		return
	}

	ux.Title("Regression Analysis")
	if len(report.Issues) == 0 {
		ux.Success("no significant changes vs baseline")
		return
	}

	for _, issue := range report.Issues {
		line := fmt.Sprintf("[%s] %s", issue.Severity, issue.Message)
		switch issue.Severity {
		case regression.SeverityFail:
			ux.Error(line)
		case regression.SeverityWarn:
			ux.Warning(line)
		default:
			if issue.Direction == regression.DirectionImprovement {
				ux.Info(ux.IconImprovement.Render() + " " + line)
			} else {
				ux.Info(ux.IconRegression.Render() + " " + line)
			}
		}
	}

	if report.Passed {
		ux.Success("PASSED - no failing regressions")
	} else {
		ux.FailBox("REGRESSION DETECTED", "one or more metrics regressed past failure thresholds")
	}
}

// printPlan renders the remediation plan in priority order.
func printPlan(plan remediation.Plan) {
	ux.Title("Remediation Plan")
	if len(plan.Actions) == 0 {
		ux.Success("all metrics within thresholds - no remediation needed")
		return
	}

	for i, action := range plan.Actions {
		ux.Info(fmt.Sprintf("%d. [%s] %s (%s)",
			i+1, action.Priority.Label(), action.Description, action.Type))
		ux.Muted("   rationale: " + action.Rationale)
		ux.Muted("   command:   " + action.Command)
	}

	if plan.ShouldRemediate() {
		ux.FailBox("REMEDIATION REQUIRED",
			fmt.Sprintf("%d action(s), including critical priority", len(plan.Actions)))
	} else {
		ux.Warning(fmt.Sprintf("%d advisory action(s) - no critical issues", len(plan.Actions)))
	}
}

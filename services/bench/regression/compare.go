// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package regression compares a benchmark run against a stored baseline.
//
// # Description
//
// Five independent rules run in a fixed order against the current and
// baseline summaries; all are evaluated, none short-circuits, and the issue
// list preserves rule order. Only fail-severity issues flip the overall
// verdict — warnings and drift reports are informational.
//
// The comparator is a synchronous pure reducer: no I/O, no shared state.
// Thresholds are injected so tests can tighten or loosen limits without
// touching globals.
package regression

import (
	"fmt"
	"math"

	"github.com/AleutianAI/AleutianBench/services/bench/stats"
	"github.com/AleutianAI/AleutianBench/services/bench/thresholds"
)

// Severity classifies an issue's impact on the verdict.
type Severity int

const (
	// SeverityInfo reports drift without affecting the verdict.
	SeverityInfo Severity = iota

	// SeverityWarn flags a concerning change that does not fail the run.
	SeverityWarn

	// SeverityFail fails the comparison.
	SeverityFail
)

// String returns the upper-case label for the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarn:
		return "WARN"
	case SeverityFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// Direction records whether a drift issue moved the metric for better or
// worse, so reports can render distinct iconography for improvements.
type Direction int

const (
	// DirectionNone applies to issues that are not drift reports.
	DirectionNone Direction = iota

	// DirectionRegression is a change for the worse.
	DirectionRegression

	// DirectionImprovement is a change for the better.
	DirectionImprovement
)

// Issue is one human-readable finding from the comparison.
type Issue struct {
	Severity  Severity
	Direction Direction
	Message   string
}

// Report is the outcome of one comparison.
type Report struct {
	// Passed is false iff at least one fail-severity issue triggered.
	Passed bool

	// Issues preserves rule-evaluation order.
	Issues []Issue
}

// Comparator applies regression rules with an injected threshold set.
type Comparator struct {
	limits thresholds.Thresholds
}

// NewComparator creates a comparator bound to the given thresholds.
func NewComparator(limits thresholds.Thresholds) *Comparator {
	return &Comparator{limits: limits}
}

// Compare evaluates the current summary against the baseline.
//
// Rule order: absolute error rate, p95 regression, p50 drift, throughput
// drift, failed-request delta. Each rule is independent; all are evaluated.
func (c *Comparator) Compare(current, baseline *stats.RunSummary) Report {
	report := Report{Passed: true}
	add := func(issue Issue) {
		if issue.Severity == SeverityFail {
			report.Passed = false
		}
		report.Issues = append(report.Issues, issue)
	}

	// Rule 1: error rate, absolute limit first, then baseline ratio.
	if current.ErrorRate > c.limits.ErrorRateAbsoluteFail {
		add(Issue{
			Severity:  SeverityFail,
			Direction: DirectionRegression,
			Message: fmt.Sprintf("ERROR RATE EXCEEDS %.0f%%: %.2f%% (baseline: %.2f%%)",
				c.limits.ErrorRateAbsoluteFail*100, current.ErrorRate*100, baseline.ErrorRate*100),
		})
	} else if current.ErrorRate > baseline.ErrorRate*c.limits.ErrorRateBaselineRatio {
		add(Issue{
			Severity:  SeverityWarn,
			Direction: DirectionRegression,
			Message: fmt.Sprintf("Error rate increased significantly: %.2f%% (baseline: %.2f%%)",
				current.ErrorRate*100, baseline.ErrorRate*100),
		})
	}

	// Rule 2: p95 latency regression, only when the baseline has a signal.
	if baseline.Latency.P95Ms > 0 {
		delta := (current.Latency.P95Ms - baseline.Latency.P95Ms) / baseline.Latency.P95Ms
		switch {
		case delta > c.limits.P95RegressionFail:
			add(Issue{
				Severity:  SeverityFail,
				Direction: DirectionRegression,
				Message: fmt.Sprintf("P95 LATENCY REGRESSED BY %.1f%%: %.2fms vs %.2fms baseline (threshold: %.0f%%)",
					delta*100, current.Latency.P95Ms, baseline.Latency.P95Ms, c.limits.P95RegressionFail*100),
			})
		case delta > c.limits.P95RegressionWarn:
			add(Issue{
				Severity:  SeverityWarn,
				Direction: DirectionRegression,
				Message: fmt.Sprintf("P95 latency increased by %.1f%%: %.2fms vs %.2fms baseline",
					delta*100, current.Latency.P95Ms, baseline.Latency.P95Ms),
			})
		}
	}

	// Rule 3: p50 drift, bidirectional.
	if baseline.Latency.P50Ms > 0 {
		delta := (current.Latency.P50Ms - baseline.Latency.P50Ms) / baseline.Latency.P50Ms
		if math.Abs(delta) > c.limits.DriftInfo {
			add(Issue{
				Severity:  SeverityInfo,
				Direction: latencyDirection(delta),
				Message: fmt.Sprintf("P50 latency changed by %.1f%%: %.2fms vs %.2fms baseline",
					delta*100, current.Latency.P50Ms, baseline.Latency.P50Ms),
			})
		}
	}

	// Rule 4: throughput drift, bidirectional. Higher is better here, so the
	// direction mapping is inverted relative to latency.
	if baseline.ThroughputRPS > 0 {
		delta := (current.ThroughputRPS - baseline.ThroughputRPS) / baseline.ThroughputRPS
		if math.Abs(delta) > c.limits.DriftInfo {
			add(Issue{
				Severity:  SeverityInfo,
				Direction: throughputDirection(delta),
				Message: fmt.Sprintf("Throughput changed by %.1f%%: %.2f req/s vs %.2f req/s baseline",
					delta*100, current.ThroughputRPS, baseline.ThroughputRPS),
			})
		}
	}

	// Rule 5: failed-request growth.
	if current.FailedRequests-baseline.FailedRequests > c.limits.FailedRequestDelta {
		add(Issue{
			Severity:  SeverityWarn,
			Direction: DirectionRegression,
			Message: fmt.Sprintf("Failed requests increased: %d vs %d baseline",
				current.FailedRequests, baseline.FailedRequests),
		})
	}

	return report
}

func latencyDirection(delta float64) Direction {
	if delta > 0 {
		return DirectionRegression
	}
	return DirectionImprovement
}

func throughputDirection(delta float64) Direction {
	if delta > 0 {
		return DirectionImprovement
	}
	return DirectionRegression
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianBench/pkg/ux"
	"github.com/AleutianAI/AleutianBench/services/bench/regression"
	"github.com/AleutianAI/AleutianBench/services/bench/remediation"
	"github.com/AleutianAI/AleutianBench/services/bench/stats"
	"github.com/AleutianAI/AleutianBench/services/bench/thresholds"
)

func captureStdout(t *testing.T, f func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func plainMode(t *testing.T) {
	t.Helper()
	ux.SetPlain(true)
	t.Cleanup(func() { ux.SetPlain(false) })
}

func TestPrintComparisonReportQuietPassedIsSilent(t *testing.T) {
	plainMode(t)
	report := regression.Report{Passed: true}
	out := captureStdout(t, func() { printComparisonReport(report, true) })
	assert.Empty(t, out)
}

func TestPrintComparisonReportShowsIssues(t *testing.T) {
	plainMode(t)
	report := regression.Report{
		Passed: true,
		Issues: []regression.Issue{
			{Severity: regression.SeverityInfo, Direction: regression.DirectionImprovement,
				Message: "Throughput changed by 18.0%"},
		},
	}
	out := captureStdout(t, func() { printComparisonReport(report, false) })
	assert.Contains(t, out, "[INFO] Throughput changed by 18.0%")
	assert.Contains(t, out, "OK: PASSED")
}

func TestPrintPlanEmpty(t *testing.T) {
	plainMode(t)
	out := captureStdout(t, func() { printPlan(remediation.Plan{}) })
	assert.Contains(t, out, "no remediation needed")
}

func TestPrintPlanListsActionsInOrder(t *testing.T) {
	plainMode(t)
	plan := remediation.NewEngine(thresholds.Default()).Evaluate(&stats.RunSummary{
		ErrorRate:     0.06,
		ThroughputRPS: 50,
		Latency:       stats.LatencyStats{P95Ms: 160, P99Ms: 120},
	})
	out := captureStdout(t, func() { printPlan(plan) })

	assert.Contains(t, out, "1. [CRITICAL]")
	assert.Contains(t, out, "kubectl scale deployment llm-gateway --replicas=5")
}

func TestPrintRunSummaryDegenerateRun(t *testing.T) {
	plainMode(t)
	s := &stats.RunSummary{TotalRequests: 10, FailedRequests: 10, ErrorRate: 1.0}
	out := captureStdout(t, func() { printRunSummary(s) })
	assert.Contains(t, out, "error_rate=100.00%")
	assert.NotContains(t, out, "latency_p95_ms")
}

func TestComparisonDocumentShape(t *testing.T) {
	report := regression.Report{
		Passed: false,
		Issues: []regression.Issue{{Severity: regression.SeverityFail, Message: "boom"}},
	}
	doc := comparisonDocument(report, "cur-1", "base-1")

	assert.Equal(t, false, doc["passed"])
	assert.Equal(t, "cur-1", doc["current_run"])
	issues := doc["issues"].([]map[string]string)
	require.Len(t, issues, 1)
	assert.Equal(t, "FAIL", issues[0]["severity"])
}

func TestPlanDocumentShape(t *testing.T) {
	plan := remediation.Plan{Actions: []remediation.Action{{
		Priority: remediation.PriorityCritical,
		Type:     remediation.ActionScale,
		Command:  "kubectl scale deployment llm-gateway --replicas=5",
	}}}
	doc := planDocument(plan, "run-9")

	assert.Equal(t, true, doc["should_remediate"])
	actions := doc["actions"].([]map[string]any)
	require.Len(t, actions, 1)
	assert.Equal(t, "scale", actions[0]["type"])
	assert.Equal(t, 1, actions[0]["priority"])
}

func TestFatalUsesExitHook(t *testing.T) {
	plainMode(t)
	var code int
	prev := osExit
	osExit = func(c int) { code = c }
	t.Cleanup(func() { osExit = prev })

	fatal("something broke", nil)
	assert.Equal(t, exitFailure, code)
}

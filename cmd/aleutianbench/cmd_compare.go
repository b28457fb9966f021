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
	"errors"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianBench/pkg/ux"
	"github.com/AleutianAI/AleutianBench/services/bench/regression"
	"github.com/AleutianAI/AleutianBench/services/bench/results"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	compareCurrentPath  string // Current results file
	compareBaselinePath string // Baseline results file
	compareSetBaseline  bool   // Copy current results to the baseline path
	compareQuiet        bool   // Print only when a regression is detected
	compareJSON         bool   // Emit the report as JSON
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// compareCmd compares the current run against the stored baseline.
//
// # Description
//
// Loads both result documents and applies the regression rules. A missing
// baseline is not an error: the first run of a new environment has nothing
// to compare against, so the command reports the skip and exits 0. A
// baseline that exists but cannot be parsed is fatal - silently skipping a
// corrupt gate would let regressions through.
//
// # Examples
//
//	aleutianbench compare                        # default file locations
//	aleutianbench compare --set-baseline         # promote current to baseline
//	aleutianbench compare --quiet                # CI gate, output on failure only
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the current results against the stored baseline",
	Long: `Applies the regression rules to the current results file using the
stored baseline as the reference.

Exit codes:
  0  passed, or no baseline exists yet
  1  a failing regression was detected, or an input file is missing/corrupt`,
	Run: runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&compareCurrentPath, "current", "bench_results.json",
		"Current results file")
	compareCmd.Flags().StringVar(&compareBaselinePath, "baseline", "baseline_results.json",
		"Baseline results file")
	compareCmd.Flags().BoolVar(&compareSetBaseline, "set-baseline", false,
		"Copy the current results to the baseline path and exit")
	compareCmd.Flags().BoolVarP(&compareQuiet, "quiet", "q", false,
		"Print nothing unless a regression is detected")
	compareCmd.Flags().BoolVar(&compareJSON, "json", false,
		"Emit the comparison report as JSON")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runCompare(cmd *cobra.Command, args []string) {
	if compareSetBaseline {
		summary, err := results.SetBaseline(compareCurrentPath, compareBaselinePath)
		if err != nil {
			fatal("setting baseline", err)
		}
		if !compareQuiet {
			ux.Success("baseline set from run " + summary.RunID)
		}
		return
	}

	current, err := results.Load(compareCurrentPath)
	if err != nil {
		fatal("loading current results", err)
	}

	baseline, err := results.Load(compareBaselinePath)
	if errors.Is(err, results.ErrNotFound) {
		// First run: nothing to gate against yet.
		if !compareQuiet {
			ux.Info("no baseline found - skipping comparison")
			ux.Muted("run with --set-baseline to promote the current results")
		}
		return
	}
	if err != nil {
		fatal("loading baseline", err)
	}

	limits, err := loadThresholds()
	if err != nil {
		fatal("loading thresholds", err)
	}

	report := regression.NewComparator(limits).Compare(current, baseline)
	logger.Info("comparison complete",
		"current_run", current.RunID,
		"baseline_run", baseline.RunID,
		"passed", report.Passed,
		"issues", len(report.Issues))

	if compareJSON {
		if err := outputJSON(comparisonDocument(report, current.RunID, baseline.RunID)); err != nil {
			fatal("encoding report", err)
		}
	} else {
		printComparisonReport(report, compareQuiet)
	}

	if !report.Passed {
		osExit(exitFailure)
	}
}

// comparisonDocument shapes a Report for machine consumers.
func comparisonDocument(report regression.Report, currentRun, baselineRun string) map[string]any {
	issues := make([]map[string]string, 0, len(report.Issues))
	for _, issue := range report.Issues {
		issues = append(issues, map[string]string{
			"severity": issue.Severity.String(),
			"message":  issue.Message,
		})
	}
	return map[string]any{
		"current_run":  currentRun,
		"baseline_run": baselineRun,
		"passed":       report.Passed,
		"issues":       issues,
	}
}

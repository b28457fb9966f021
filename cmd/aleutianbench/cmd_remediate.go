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
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianBench/pkg/ux"
	"github.com/AleutianAI/AleutianBench/services/bench/remediation"
	"github.com/AleutianAI/AleutianBench/services/bench/results"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	remediateResultsPath string // Results file to analyze
	remediateScript      bool   // Emit the remediation shell script
	remediateScriptPath  string // Where the script lands
	remediateWatch       bool   // Re-analyze on every results rewrite
	remediateAutoExec    bool   // Execute the plan when critical actions exist
	remediateDryRun      bool   // With --auto-execute: print instead of running
	remediateJSON        bool   // Emit the plan as JSON
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// remediateCmd derives remediation actions from the current results.
//
// # Description
//
// Applies the operational threshold rules to a single results document and
// prints the prioritized action plan. The plan is declarative by default;
// nothing runs unless --auto-execute is given, and --dry-run downgrades
// execution back to a preview.
//
// In watch mode the command stays resident and re-runs the analysis every
// time the results file is rewritten, so a CI loop that keeps benchmarking
// gets continuous remediation decisions. Watch mode never exits 1 on a
// finding; it ends only on SIGINT/SIGTERM.
//
// # Examples
//
//	aleutianbench remediate                          # print the plan
//	aleutianbench remediate --generate-script        # also emit remediate.sh
//	aleutianbench remediate --watch                  # resident analysis loop
//	aleutianbench remediate --auto-execute --dry-run # preview execution
var remediateCmd = &cobra.Command{
	Use:   "remediate",
	Short: "Derive remediation actions from the current results",
	Long: `Evaluates operational thresholds (latency, error rate, throughput)
against the current results file and produces a prioritized action plan.

Exits 1 when the plan contains a critical-priority action.`,
	Run: runRemediate,
}

func init() {
	remediateCmd.Flags().StringVar(&remediateResultsPath, "results", "bench_results.json",
		"Results file to analyze")
	remediateCmd.Flags().BoolVar(&remediateScript, "generate-script", false,
		"Write the plan as an executable shell script")
	remediateCmd.Flags().StringVar(&remediateScriptPath, "script-output", "remediate.sh",
		"Path for the generated script")
	remediateCmd.Flags().BoolVar(&remediateWatch, "watch", false,
		"Stay resident and re-analyze whenever the results file is rewritten")
	remediateCmd.Flags().BoolVar(&remediateAutoExec, "auto-execute", false,
		"Execute the plan when critical actions exist")
	remediateCmd.Flags().BoolVar(&remediateDryRun, "dry-run", false,
		"With --auto-execute: show the script without running it")
	remediateCmd.Flags().BoolVar(&remediateJSON, "json", false,
		"Emit the plan as JSON")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runRemediate(cmd *cobra.Command, args []string) {
	limits, err := loadThresholds()
	if err != nil {
		fatal("loading thresholds", err)
	}
	engine := remediation.NewEngine(limits)

	if !remediateWatch {
		plan, err := analyzeResults(engine, remediateResultsPath)
		if err != nil {
			fatal("analyzing results", err)
		}
		if plan.ShouldRemediate() {
			osExit(exitFailure)
		}
		return
	}

	// Watch mode: findings are reported, not fatal, so the loop survives
	// a bad run and keeps gating the next one.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := func(path string) {
		if _, err := analyzeResults(engine, path); err != nil {
			ux.Warning("analysis failed: " + err.Error())
		}
	}

	// Analyze whatever is already on disk before waiting for rewrites.
	handler(remediateResultsPath)

	watcher := remediation.NewWatcher(remediateResultsPath, handler, logger.Slog())
	if err := watcher.Watch(ctx); err != nil && ctx.Err() == nil {
		fatal("watching results file", err)
	}
	ux.Info("watch stopped")
}

// analyzeResults runs one full analysis pass: load, evaluate, report, and
// optionally emit or execute the action script.
func analyzeResults(engine *remediation.Engine, path string) (remediation.Plan, error) {
	current, err := results.Load(path)
	if err != nil {
		return remediation.Plan{}, err
	}

	plan := engine.Evaluate(current)
	logger.Info("remediation evaluated",
		"run_id", current.RunID,
		"actions", len(plan.Actions),
		"critical", plan.ShouldRemediate())

	if remediateJSON {
		if err := outputJSON(planDocument(plan, current.RunID)); err != nil {
			return plan, err
		}
	} else {
		printPlan(plan)
	}

	if remediateScript && len(plan.Actions) > 0 {
		if err := remediation.WriteScript(remediateScriptPath, plan, time.Now()); err != nil {
			return plan, err
		}
		ux.Success("remediation script written to " + remediateScriptPath)
	}

	if remediateAutoExec && plan.ShouldRemediate() {
		if remediateDryRun {
			ux.Warning("dry run - script below was NOT executed")
			ux.Info(remediation.RenderScript(plan, time.Now()))
		} else {
			ux.Warning("executing remediation plan")
			output, err := remediation.ExecutePlan(context.Background(), plan)
			if err != nil {
				ux.Error("remediation execution failed: " + err.Error())
			} else {
				ux.Success("remediation plan executed")
			}
			if output != "" {
				ux.Muted(output)
			}
		}
	}

	return plan, nil
}

// planDocument shapes a Plan for machine consumers.
func planDocument(plan remediation.Plan, runID string) map[string]any {
	actions := make([]map[string]any, 0, len(plan.Actions))
	for _, a := range plan.Actions {
		actions = append(actions, map[string]any{
			"priority":    int(a.Priority),
			"type":        a.Type.String(),
			"description": a.Description,
			"command":     a.Command,
			"rationale":   a.Rationale,
		})
	}
	return map[string]any{
		"run_id":           runID,
		"should_remediate": plan.ShouldRemediate(),
		"actions":          actions,
	}
}

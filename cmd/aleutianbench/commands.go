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
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianBench/pkg/logging"
	"github.com/AleutianAI/AleutianBench/pkg/ux"
	"github.com/AleutianAI/AleutianBench/services/bench/thresholds"
)

// =============================================================================
// GLOBAL FLAGS
// =============================================================================

var (
	verbose        bool   // Enable debug-level logging
	plainOutput    bool   // Force plain (unstyled) output
	logDir         string // Optional directory for JSON log files
	thresholdsPath string // Optional YAML threshold overrides

	logger *logging.Logger
)

// =============================================================================
// ROOT COMMAND
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "aleutianbench",
	Short: "Benchmark an LLM gateway and detect performance regressions",
	Long: `AleutianBench drives load against a text-generation endpoint,
aggregates latency/error/throughput statistics, compares runs against a
stored baseline, and derives prioritized remediation actions.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if plainOutput {
			ux.SetPlain(true)
		}
		level := logging.LevelInfo
		if verbose {
			level = logging.LevelDebug
		}
		logger = logging.New(logging.Config{
			Level:   level,
			LogDir:  logDir,
			Service: "aleutianbench",
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&plainOutput, "plain", false,
		"Force plain output (no colors or styling)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "",
		"Directory for JSON log files (disabled when empty)")
	rootCmd.PersistentFlags().StringVar(&thresholdsPath, "thresholds", "",
		"YAML file overriding the default analysis thresholds")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(remediateCmd)
}

// loadThresholds resolves the effective threshold set, honoring the
// --thresholds override file when given.
func loadThresholds() (thresholds.Thresholds, error) {
	if thresholdsPath == "" {
		return thresholds.Default(), nil
	}
	return thresholds.Load(thresholdsPath)
}

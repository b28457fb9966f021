// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package thresholds defines the performance limits that drive regression
// detection and remediation decisions.
//
// # Description
//
// Thresholds is an immutable value constructed once at startup and passed
// explicitly into the regression comparator and remediation engine. There is
// no package-level mutable state; tests override individual fields on a copy
// of Default().
//
// # Configuration
//
// Operators can override the defaults with a YAML file:
//
//	p95_latency_warning_ms: 120
//	error_rate_critical: 0.03
//
// Unset fields keep their defaults. Load validates the merged result and
// rejects files where a warning limit is stricter than its critical limit.
package thresholds

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Thresholds holds every fixed limit used by the pipeline.
//
// Latencies are milliseconds, rates are fractions in [0,1], throughput is
// requests per second, and the regression/drift fields are fractional
// deltas against the baseline (0.20 = 20%).
type Thresholds struct {
	// P95LatencyWarningMs triggers a priority-2 scale recommendation.
	P95LatencyWarningMs float64 `yaml:"p95_latency_warning_ms" validate:"gt=0"`

	// P95LatencyCriticalMs triggers a priority-1 scale recommendation and
	// suppresses the warning variant for the same metric.
	P95LatencyCriticalMs float64 `yaml:"p95_latency_critical_ms" validate:"gtefield=P95LatencyWarningMs"`

	// P99LatencyCriticalMs triggers a priority-1 backend-tier scale
	// recommendation, independent of the p95 rules.
	P99LatencyCriticalMs float64 `yaml:"p99_latency_critical_ms" validate:"gt=0"`

	// ErrorRateWarning triggers a priority-2 config reduction.
	ErrorRateWarning float64 `yaml:"error_rate_warning" validate:"gt=0,lte=1"`

	// ErrorRateCritical triggers a priority-1 rollback.
	ErrorRateCritical float64 `yaml:"error_rate_critical" validate:"gtefield=ErrorRateWarning,lte=1"`

	// ThroughputMinWarningRPS triggers a priority-3 investigation.
	ThroughputMinWarningRPS float64 `yaml:"throughput_min_warning_rps" validate:"gt=0"`

	// ThroughputMinCriticalRPS triggers priority-1 emergency scaling.
	ThroughputMinCriticalRPS float64 `yaml:"throughput_min_critical_rps" validate:"gt=0,ltefield=ThroughputMinWarningRPS"`

	// P95RegressionFail fails the comparison outright.
	P95RegressionFail float64 `yaml:"p95_regression_fail" validate:"gt=0"`

	// P95RegressionWarn reports a warning issue without failing.
	P95RegressionWarn float64 `yaml:"p95_regression_warn" validate:"gt=0,ltefield=P95RegressionFail"`

	// DriftInfo is the bidirectional p50/throughput drift reported as info.
	DriftInfo float64 `yaml:"drift_info" validate:"gt=0"`

	// ErrorRateAbsoluteFail fails the comparison regardless of baseline.
	ErrorRateAbsoluteFail float64 `yaml:"error_rate_absolute_fail" validate:"gt=0,lte=1"`

	// ErrorRateBaselineRatio warns when the current error rate exceeds
	// baseline * ratio without crossing the absolute limit.
	ErrorRateBaselineRatio float64 `yaml:"error_rate_baseline_ratio" validate:"gt=1"`

	// FailedRequestDelta warns when the failed-request count grows by more
	// than this many requests over the baseline.
	FailedRequestDelta int `yaml:"failed_request_delta" validate:"gte=0"`
}

// Default returns the stock thresholds used across the Aleutian stack.
func Default() Thresholds {
	return Thresholds{
		P95LatencyWarningMs:      100,
		P95LatencyCriticalMs:     150,
		P99LatencyCriticalMs:     200,
		ErrorRateWarning:         0.01,
		ErrorRateCritical:        0.05,
		ThroughputMinWarningRPS:  15,
		ThroughputMinCriticalRPS: 10,
		P95RegressionFail:        0.20,
		P95RegressionWarn:        0.10,
		DriftInfo:                0.15,
		ErrorRateAbsoluteFail:    0.01,
		ErrorRateBaselineRatio:   1.5,
		FailedRequestDelta:       5,
	}
}

// Validate checks internal consistency of the threshold set.
func (t Thresholds) Validate() error {
	if err := validator.New().Struct(t); err != nil {
		return fmt.Errorf("invalid thresholds: %w", err)
	}
	return nil
}

// Load reads a YAML override file on top of Default().
//
// # Inputs
//
//   - path: YAML file with any subset of the threshold fields.
//
// # Outputs
//
//   - Thresholds: Defaults merged with the file's overrides.
//   - error: Non-nil when the file is unreadable, unparseable, or the
//     merged result fails validation.
func Load(path string) (Thresholds, error) {
	t := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("reading thresholds file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("parsing thresholds file %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

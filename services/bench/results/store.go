// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package results persists RunSummary documents as indented JSON files.
//
// Flat files are the only store by design: results feed CI pipelines and
// operators who read them directly, and there is nothing here that needs a
// database. The error taxonomy matters more than the I/O: a missing current
// file is fatal, a missing baseline is an expected no-op, and a corrupt
// baseline is fatal.
package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/AleutianAI/AleutianBench/services/bench/stats"
)

// ErrNotFound indicates the requested results file does not exist. Callers
// decide whether that is fatal (current results) or a skip (baseline).
var ErrNotFound = errors.New("results file not found")

// Load reads a RunSummary from an indented-JSON results file.
//
// # Outputs
//
//   - *stats.RunSummary: The parsed document.
//   - error: ErrNotFound (wrapped) when the file does not exist; a distinct
//     parse error when it exists but is not valid JSON.
func Load(path string) (*stats.RunSummary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading results file %s: %w", path, err)
	}

	var summary stats.RunSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, fmt.Errorf("results file %s is not valid JSON: %w", path, err)
	}
	return &summary, nil
}

// Save writes a RunSummary as indented JSON.
func Save(path string, summary *stats.RunSummary) error {
	raw, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o640); err != nil {
		return fmt.Errorf("writing results file %s: %w", path, err)
	}
	return nil
}

// SetBaseline copies the current results document verbatim to the baseline
// path. The current file must already exist.
func SetBaseline(currentPath, baselinePath string) (*stats.RunSummary, error) {
	current, err := Load(currentPath)
	if err != nil {
		return nil, err
	}
	if err := Save(baselinePath, current); err != nil {
		return nil, err
	}
	return current, nil
}

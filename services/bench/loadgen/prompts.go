// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package loadgen

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Default generation parameters applied when a prompt line omits them.
const (
	defaultMaxTokens   = 100
	defaultTemperature = 0.7
)

// Prompt is one generation request template from the prompt set.
type Prompt struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// LoadPrompts reads a JSONL prompt set.
//
// One JSON object per line; blank lines are skipped. Missing max_tokens or
// temperature fall back to the defaults. An unreadable file or a malformed
// line is an input error (fatal to the run, nothing is dispatched).
func LoadPrompts(path string) ([]Prompt, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening prompts file %s: %w", path, err)
	}
	defer f.Close()

	var prompts []Prompt
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		p := Prompt{MaxTokens: defaultMaxTokens, Temperature: defaultTemperature}
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			return nil, fmt.Errorf("parsing prompts file %s line %d: %w", path, lineNo, err)
		}
		prompts = append(prompts, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading prompts file %s: %w", path, err)
	}
	if len(prompts) == 0 {
		return nil, fmt.Errorf("prompts file %s contains no prompts", path)
	}
	return prompts, nil
}

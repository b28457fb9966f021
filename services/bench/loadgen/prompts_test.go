// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package loadgen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePrompts(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prompts.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o640))
	return path
}

func TestLoadPrompts(t *testing.T) {
	path := writePrompts(t, `{"prompt": "hello", "max_tokens": 50, "temperature": 0.2}

{"prompt": "world"}
`)
	prompts, err := LoadPrompts(path)
	require.NoError(t, err)
	require.Len(t, prompts, 2, "blank lines are skipped")

	assert.Equal(t, "hello", prompts[0].Prompt)
	assert.Equal(t, 50, prompts[0].MaxTokens)
	assert.Equal(t, 0.2, prompts[0].Temperature)

	// Omitted fields fall back to defaults.
	assert.Equal(t, "world", prompts[1].Prompt)
	assert.Equal(t, defaultMaxTokens, prompts[1].MaxTokens)
	assert.Equal(t, defaultTemperature, prompts[1].Temperature)
}

func TestLoadPromptsMissingFile(t *testing.T) {
	_, err := LoadPrompts(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)
}

func TestLoadPromptsMalformedLine(t *testing.T) {
	path := writePrompts(t, `{"prompt": "ok"}
{not json}
`)
	_, err := LoadPrompts(path)
	assert.ErrorContains(t, err, "line 2")
}

func TestLoadPromptsEmptyFile(t *testing.T) {
	path := writePrompts(t, "\n\n")
	_, err := LoadPrompts(path)
	assert.ErrorContains(t, err, "no prompts")
}

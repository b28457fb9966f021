// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package remediation

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePlan() Plan {
	return Plan{Actions: []Action{
		{
			Priority:    PriorityCritical,
			Type:        ActionScale,
			Description: "Scale gateway replicas to handle increased load",
			Command:     "kubectl scale deployment llm-gateway --replicas=5",
		},
		{
			Priority:    PriorityHigh,
			Type:        ActionConfig,
			Description: "Reduce load by lowering max_tokens",
			Command:     `kubectl patch configmap llm-config -p '{"data":{"MAX_TOKENS":"50"}}'`,
		},
	}}
}

func TestRenderScript(t *testing.T) {
	now := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)
	script := RenderScript(samplePlan(), now)

	assert.True(t, strings.HasPrefix(script, "#!/bin/bash\n"))
	assert.Contains(t, script, "# Generated: 2025-11-03 09:00:00")
	assert.Contains(t, script, "set -e")
	assert.Contains(t, script, "# Action 1: Scale gateway replicas to handle increased load")
	assert.Contains(t, script, "# Action 2: Reduce load by lowering max_tokens")
	assert.Contains(t, script, "echo 'Executing: Scale gateway replicas to handle increased load'")
	assert.Contains(t, script, "kubectl scale deployment llm-gateway --replicas=5")
	assert.True(t, strings.HasSuffix(script, "kubectl get pods\n"))

	// Steps appear in plan order with the fixed pause between them.
	first := strings.Index(script, "# Action 1")
	second := strings.Index(script, "# Action 2")
	require.Less(t, first, second)
	assert.Equal(t, 2, strings.Count(script, "sleep 2\n"))
}

func TestRenderScriptEmptyPlan(t *testing.T) {
	script := RenderScript(Plan{}, time.Now())
	assert.NotContains(t, script, "# Action")
	assert.Contains(t, script, "echo 'Remediation complete'")
}

func TestWriteScriptIsExecutable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remediate.sh")
	require.NoError(t, WriteScript(path, samplePlan(), time.Now()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	}

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "set -e")
}

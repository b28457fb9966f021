// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package remediation

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// scriptStepPause is the fixed pause between remediation steps, giving the
// cluster time to settle before the next command.
const scriptStepPause = "sleep 2"

// executeTimeout bounds an auto-executed remediation script.
const executeTimeout = 5 * time.Minute

// RenderScript renders a plan into a sequential shell script.
//
// # Description
//
// One labeled, commented, echoed step per action, in priority order (the
// plan is already sorted; rendering preserves it). The script is a flat
// sequence with no branching: `set -e` aborts on the first failing command
// and the executor's exit status is the only error signal.
func RenderScript(plan Plan, now time.Time) string {
	var b strings.Builder
	b.WriteString("#!/bin/bash\n")
	b.WriteString("# Auto-generated remediation script\n")
	fmt.Fprintf(&b, "# Generated: %s\n\n", now.Format("2006-01-02 15:04:05"))
	b.WriteString("set -e\n\n")
	b.WriteString("echo 'Starting auto-remediation...'\n\n")

	for i, action := range plan.Actions {
		fmt.Fprintf(&b, "# Action %d: %s\n", i+1, action.Description)
		fmt.Fprintf(&b, "echo 'Executing: %s'\n", action.Description)
		b.WriteString(action.Command + "\n")
		b.WriteString(scriptStepPause + "\n\n")
	}

	b.WriteString("echo 'Remediation complete'\n")
	b.WriteString("kubectl get pods\n")
	return b.String()
}

// WriteScript renders the plan to path and marks it executable.
//
// The chmod is best-effort: platforms without Unix permissions keep the
// file as written and the error is discarded.
func WriteScript(path string, plan Plan, now time.Time) error {
	if err := os.WriteFile(path, []byte(RenderScript(plan, now)), 0o640); err != nil {
		return fmt.Errorf("writing remediation script %s: %w", path, err)
	}
	_ = os.Chmod(path, 0o755)
	return nil
}

// ExecutePlan writes the plan to a temp script and runs it via bash.
//
// # Description
//
// Only used by the auto-execute mode. The run is bounded by a five-minute
// timeout; combined stdout/stderr is returned either way so the caller can
// surface it.
func ExecutePlan(ctx context.Context, plan Plan) (string, error) {
	scriptPath := filepath.Join(os.TempDir(), "auto_remediation.sh")
	if err := WriteScript(scriptPath, plan, time.Now()); err != nil {
		return "", err
	}

	runCtx, cancel := context.WithTimeout(ctx, executeTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "bash", scriptPath)
	out, err := cmd.CombinedOutput()
	if runCtx.Err() == context.DeadlineExceeded {
		return string(out), fmt.Errorf("remediation timed out after %s", executeTimeout)
	}
	if err != nil {
		return string(out), fmt.Errorf("remediation failed: %w", err)
	}
	return string(out), nil
}

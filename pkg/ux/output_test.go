// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
)

// Helper to capture stdout
func captureStdout(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

// Helper to capture stderr
func captureStderr(f func()) string {
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	f()

	w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func withPlain(t *testing.T, plain bool) {
	t.Helper()
	prev := plainMode.Load()
	SetPlain(plain)
	t.Cleanup(func() { plainMode.Store(prev) })
}

// =============================================================================
// Icon.Render Tests
// =============================================================================

func TestIcon_Render_Success(t *testing.T) {
	if IconSuccess.Render() == "" {
		t.Error("expected non-empty result for IconSuccess")
	}
}

func TestIcon_Render_Regression(t *testing.T) {
	if IconRegression.Render() == "" {
		t.Error("expected non-empty result for IconRegression")
	}
}

func TestIcon_Render_PlainModeIsBare(t *testing.T) {
	withPlain(t, true)
	if got := IconError.Render(); got != "✗" {
		t.Errorf("expected bare icon in plain mode, got %q", got)
	}
}

// =============================================================================
// Plain Mode Output Tests
// =============================================================================

func TestSuccess_PlainPrefix(t *testing.T) {
	withPlain(t, true)
	out := captureStdout(func() { Success("benchmark complete") })
	if out != "OK: benchmark complete\n" {
		t.Errorf("unexpected plain output: %q", out)
	}
}

func TestError_PlainGoesToStderr(t *testing.T) {
	withPlain(t, true)
	out := captureStderr(func() { Error("baseline corrupt") })
	if out != "ERROR: baseline corrupt\n" {
		t.Errorf("unexpected plain output: %q", out)
	}
}

func TestWarning_PlainGoesToStderr(t *testing.T) {
	withPlain(t, true)
	out := captureStderr(func() { Warning("p95 drift detected") })
	if !strings.HasPrefix(out, "WARN: ") {
		t.Errorf("expected WARN prefix, got %q", out)
	}
}

func TestMetric_PlainIsKeyValue(t *testing.T) {
	withPlain(t, true)
	out := captureStdout(func() { Metric("p95_ms", "96.50") })
	if out != "p95_ms=96.50\n" {
		t.Errorf("unexpected metric output: %q", out)
	}
}

func TestMuted_PlainSuppressed(t *testing.T) {
	withPlain(t, true)
	out := captureStdout(func() { Muted("detail") })
	if out != "" {
		t.Errorf("expected no output in plain mode, got %q", out)
	}
}

func TestFailBox_Plain(t *testing.T) {
	withPlain(t, true)
	out := captureStderr(func() { FailBox("REGRESSION", "p95 +21%") })
	if out != "FAIL REGRESSION: p95 +21%\n" {
		t.Errorf("unexpected output: %q", out)
	}
}

// =============================================================================
// Styled Mode Output Tests
// =============================================================================

func TestSuccess_StyledContainsText(t *testing.T) {
	withPlain(t, false)
	out := captureStdout(func() { Success("benchmark complete") })
	if !strings.Contains(out, "benchmark complete") {
		t.Errorf("styled output missing message: %q", out)
	}
}

func TestBox_StyledContainsTitleAndContent(t *testing.T) {
	withPlain(t, false)
	out := captureStdout(func() { Box("Results", "100 requests") })
	if !strings.Contains(out, "Results") || !strings.Contains(out, "100 requests") {
		t.Errorf("box output missing parts: %q", out)
	}
}

// =============================================================================
// ProgressBar Tests
// =============================================================================

func TestProgressBar_Plain(t *testing.T) {
	withPlain(t, true)
	if got := ProgressBar(50, 100, 20); got != "50/100" {
		t.Errorf("unexpected plain progress: %q", got)
	}
}

func TestProgressBar_StyledShowsPercent(t *testing.T) {
	withPlain(t, false)
	got := ProgressBar(50, 100, 20)
	if !strings.Contains(got, "50%") {
		t.Errorf("expected percentage in progress bar, got %q", got)
	}
}

func TestProgressBar_ZeroTotalDoesNotPanic(t *testing.T) {
	withPlain(t, true)
	_ = ProgressBar(0, 0, 20)
}

func TestSetPlainOverride(t *testing.T) {
	withPlain(t, true)
	if !IsPlain() {
		t.Error("expected plain after SetPlain(true)")
	}
	SetPlain(false)
	if IsPlain() {
		t.Error("expected styled after SetPlain(false)")
	}
}

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
	"hash/fnv"
	"strings"
	"sync/atomic"
	"time"
)

const workerModelName = "mock-llm-v1"

// mockResponses are the canned generations. Selection is keyed off the
// prompt hash so a fixed prompt always yields the same text, which keeps
// benchmark runs reproducible.
var mockResponses = []string{
	"The quick brown fox jumps over the lazy dog.",
	"Artificial intelligence is transforming the world.",
	"Large language models can generate human-like text.",
	"Python is a versatile programming language.",
	"Cloud computing enables scalable applications.",
}

// GenerateResult is the worker's per-request output.
type GenerateResult struct {
	Text         string  `json:"text"`
	TokensPerSec float64 `json:"tokens_per_sec"`
	LatencyMs    float64 `json:"latency_ms"`
	Model        string  `json:"model"`
}

// Worker simulates text generation with deterministic output.
//
// # Description
//
// Each request selects a canned response by prompt hash, truncates it to
// max_tokens words, and sleeps a simulated processing delay in the
// 10-50ms band. The delay is also hash-derived, so identical prompts report
// identical latency and tokens/sec - useful when a benchmark needs a stable
// target to detect its own regressions against.
//
// # Thread Safety
//
// Safe for concurrent use; all per-request state lives on the stack.
type Worker struct {
	modelName string
	ready     atomic.Bool

	// sleep is swappable so tests skip the simulated delay.
	sleep func(time.Duration)
}

// NewWorker creates a ready worker.
func NewWorker() *Worker {
	w := &Worker{modelName: workerModelName, sleep: time.Sleep}
	w.ready.Store(true)
	return w
}

// Generate produces a mock generation for the prompt.
//
// # Inputs
//
//   - prompt: Input text; selects the canned response and delay.
//   - maxTokens: Truncates the response to this many words.
//   - temperature: Accepted for API parity; ignored by the mock.
func (w *Worker) Generate(prompt string, maxTokens int, temperature float64) GenerateResult {
	_ = temperature

	h := promptHash(prompt)
	delay := simulatedDelay(h)
	w.sleep(delay)

	words := strings.Fields(mockResponses[h%uint32(len(mockResponses))])
	count := maxTokens
	if count > len(words) {
		count = len(words)
	}
	if count < 0 {
		count = 0
	}
	text := strings.Join(words[:count], " ")

	// Reported metrics derive from the simulated delay, not wall clock, so
	// the response is deterministic for a given prompt.
	latencyMs := float64(delay.Microseconds()) / 1000
	tokensPerSec := 0.0
	if delay > 0 {
		tokensPerSec = float64(count) / delay.Seconds()
	}

	return GenerateResult{
		Text:         text,
		TokensPerSec: round2(tokensPerSec),
		LatencyMs:    round2(latencyMs),
		Model:        w.modelName,
	}
}

// IsReady reports whether the worker accepts traffic.
func (w *Worker) IsReady() bool {
	return w.ready.Load()
}

// SetReady toggles readiness; used to exercise the /readyz failure path.
func (w *Worker) SetReady(ready bool) {
	w.ready.Store(ready)
}

// SimulatedDelay exposes the delay a prompt would incur.
func (w *Worker) SimulatedDelay(prompt string) time.Duration {
	return simulatedDelay(promptHash(prompt))
}

func promptHash(prompt string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(prompt))
	return h.Sum32()
}

// simulatedDelay maps a prompt hash into the 10-50ms processing band.
func simulatedDelay(h uint32) time.Duration {
	return time.Duration(10+h%41) * time.Millisecond
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

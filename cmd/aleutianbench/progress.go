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
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/AleutianAI/AleutianBench/pkg/ux"
)

// progressPrinter renders in-flight benchmark progress.
//
// # Description
//
// On a terminal it redraws a single carriage-return line with a progress
// bar; on pipes and CI logs it emits one plain line per update so output
// stays greppable. The driver invokes it from worker goroutines, so all
// rendering is serialized behind a mutex.
//
// # Thread Safety
//
// Safe for concurrent use.
type progressPrinter struct {
	mu     sync.Mutex
	out    io.Writer
	width  int
	active bool // a redrawn line is pending a terminating newline
}

func newProgressPrinter() *progressPrinter {
	return &progressPrinter{out: os.Stderr, width: 30}
}

// update is loadgen.ProgressFunc-compatible.
func (p *progressPrinter) update(completed, succeeded, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ux.IsPlain() {
		fmt.Fprintf(p.out, "progress: %d/%d (%d ok)\n", completed, total, succeeded)
		return
	}
	fmt.Fprintf(p.out, "\r\033[K%s  %d/%d (%d ok)",
		ux.ProgressBar(completed, total, p.width), completed, total, succeeded)
	p.active = true
}

// finish terminates a pending redraw line. Safe to call when nothing was
// drawn.
func (p *progressPrinter) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active {
		fmt.Fprintln(p.out)
		p.active = false
	}
}

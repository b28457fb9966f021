// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AleutianAI/AleutianBench/pkg/ux"
)

func TestProgressPrinterPlainLines(t *testing.T) {
	plainMode(t)
	var buf bytes.Buffer
	p := newProgressPrinter()
	p.out = &buf

	p.update(10, 9, 100)
	p.update(20, 18, 100)
	p.finish()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"progress: 10/100 (9 ok)",
		"progress: 20/100 (18 ok)",
	}, lines)
}

func TestProgressPrinterStyledRedrawsOneLine(t *testing.T) {
	ux.SetPlain(false)
	t.Cleanup(func() { ux.SetPlain(false) })
	var buf bytes.Buffer
	p := newProgressPrinter()
	p.out = &buf

	p.update(50, 50, 100)
	p.finish()

	out := buf.String()
	assert.Contains(t, out, "\r")
	assert.Contains(t, out, "50/100")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestProgressPrinterConcurrentUpdates(t *testing.T) {
	plainMode(t)
	var buf bytes.Buffer
	p := newProgressPrinter()
	p.out = &buf

	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p.update(i*10, i*10, 100)
		}(i)
	}
	wg.Wait()
	p.finish()

	assert.Equal(t, 10, strings.Count(buf.String(), "progress: "))
}

func TestProgressPrinterFinishWithoutDraw(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressPrinter()
	p.out = &buf
	p.finish()
	assert.Empty(t, buf.String())
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package loadgen drives benchmark load against a text-generation endpoint.
//
// # Description
//
// The driver dispatches N requests at a bounded concurrency, cycling through
// the prompt set with wraparound so prompt assignment is deterministic for a
// given request count. Each request gets its own timeout; failures are
// recorded per-request and never abort the run.
//
// # Concurrency Model
//
// At concurrency 1 requests execute strictly sequentially in request-id
// order. Above that, a fixed-size worker pool runs round trips that share no
// mutable state: each worker writes into its own pre-allocated result slot,
// exactly once, and slots are read only after the pool drains. Completion
// order is non-deterministic but every outcome carries its request id.
//
// There is no cancellation propagation between requests: once dispatched,
// only a request's own timeout stops it.
package loadgen

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/AleutianBench/services/bench/stats"
)

// progressEvery is how many completions pass between progress reports.
const progressEvery = 10

// ProgressFunc receives periodic completion updates. Called every
// progressEvery completions and once at the final completion. May be called
// from multiple goroutines; implementations must be safe for that.
type ProgressFunc func(completed, succeeded, total int)

// Config controls a single benchmark run.
type Config struct {
	// TotalRequests is the number of requests to dispatch. Must be >= 1.
	TotalRequests int

	// Concurrency is the worker-pool size. Must be >= 1.
	Concurrency int

	// Timeout is the per-request deadline.
	Timeout time.Duration

	// RateLimit caps dispatch at this many requests per second.
	// 0 disables the cap.
	RateLimit float64

	// OnProgress, when set, receives completion updates.
	OnProgress ProgressFunc
}

// Validate rejects configurations the driver cannot honor.
func (c Config) Validate() error {
	if c.TotalRequests < 1 {
		return errors.New("total requests must be at least 1")
	}
	if c.Concurrency < 1 {
		return errors.New("concurrency must be at least 1")
	}
	if c.Timeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	if c.RateLimit < 0 {
		return errors.New("rate limit must be non-negative")
	}
	return nil
}

// Driver runs benchmark load through a Client.
type Driver struct {
	client *Client
	log    *slog.Logger
}

// NewDriver creates a driver. A nil logger falls back to slog.Default().
func NewDriver(client *Client, log *slog.Logger) *Driver {
	if log == nil {
		log = slog.Default()
	}
	return &Driver{client: client, log: log}
}

// Run dispatches cfg.TotalRequests requests cycling through prompts.
//
// # Outputs
//
//   - []stats.RequestOutcome: One outcome per dispatched request, in
//     request-id order (slot i holds request id i+1).
//   - time.Duration: Wall-clock duration of the whole run.
//   - error: Non-nil only for invalid input; transport failures land in the
//     outcomes instead.
func (d *Driver) Run(ctx context.Context, prompts []Prompt, cfg Config) ([]stats.RequestOutcome, time.Duration, error) {
	if err := cfg.Validate(); err != nil {
		return nil, 0, err
	}
	if len(prompts) == 0 {
		return nil, 0, errors.New("prompt set is empty")
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	d.log.Info("starting benchmark run",
		"total_requests", cfg.TotalRequests,
		"concurrency", cfg.Concurrency,
		"unique_prompts", len(prompts),
		"timeout", cfg.Timeout)

	outcomes := make([]stats.RequestOutcome, cfg.TotalRequests)
	for i := range outcomes {
		// Pre-assign ids so a request that never dispatches (caller abort
		// mid-run) still surfaces as a failed slot rather than a blank one.
		outcomes[i] = stats.RequestOutcome{RequestID: i + 1, Error: "not dispatched"}
	}
	var completed, succeeded atomic.Int64
	start := time.Now()

	report := func() {
		done := completed.Load()
		if cfg.OnProgress != nil && (done%progressEvery == 0 || done == int64(cfg.TotalRequests)) {
			cfg.OnProgress(int(done), int(succeeded.Load()), cfg.TotalRequests)
		}
	}

	execute := func(i int) {
		// Prompt assignment wraps around the set: request i uses prompt
		// i mod len(prompts).
		outcome := d.client.Generate(ctx, i+1, prompts[i%len(prompts)])
		outcomes[i] = outcome
		if outcome.Success {
			succeeded.Add(1)
		}
		completed.Add(1)
		report()
	}

	if cfg.Concurrency == 1 {
		for i := 0; i < cfg.TotalRequests; i++ {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					break
				}
			}
			execute(i)
		}
	} else {
		g := new(errgroup.Group)
		g.SetLimit(cfg.Concurrency)
		for i := 0; i < cfg.TotalRequests; i++ {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					break
				}
			}
			i := i
			g.Go(func() error {
				execute(i)
				return nil
			})
		}
		// Workers never return errors; Wait only drains the pool.
		_ = g.Wait()
	}

	duration := time.Since(start)
	d.log.Info("benchmark run finished",
		"duration_s", duration.Seconds(),
		"succeeded", succeeded.Load(),
		"failed", int64(cfg.TotalRequests)-succeeded.Load())

	return outcomes, duration, nil
}

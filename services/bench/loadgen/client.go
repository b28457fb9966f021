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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/AleutianAI/AleutianBench/services/bench/stats"
)

// timeoutError is the canonical error string recorded for a request that
// exceeded its per-request timeout. Downstream reports key off it.
const timeoutError = "Request timeout"

// maxErrorBodyBytes caps how much of an error response body lands in the
// outcome's error detail.
const maxErrorBodyBytes = 100

// generatePayload is the wire request for POST /generate.
type generatePayload struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// generateReply is the subset of the /generate response the driver consumes.
type generateReply struct {
	Text         string  `json:"text"`
	TokensPerSec float64 `json:"tokens_per_sec"`
}

// Client issues generation requests against one target endpoint.
//
// # Thread Safety
//
// Safe for concurrent use; the underlying http.Client handles connection
// pooling across workers.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// NewClient creates a client for the given base URL with a per-request
// timeout. The timeout is applied per request via context, not on the
// http.Client, so a slow request never shortens the budget of another.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		timeout: timeout,
	}
}

// Generate sends one request and records its outcome.
//
// # Description
//
// Never returns an error: every transport failure is captured inside the
// outcome so one failing request cannot abort the run. Timeouts are recorded
// with the elapsed wall-clock time up to the timeout as the latency; other
// failures record the stringified cause. Each request is attempted exactly
// once.
func (c *Client) Generate(ctx context.Context, requestID int, p Prompt) stats.RequestOutcome {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, _ := json.Marshal(generatePayload{
		Prompt:      p.Prompt,
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
	})

	start := time.Now()
	outcome := stats.RequestOutcome{RequestID: requestID}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		outcome.LatencyMs = elapsedMs(start)
		outcome.Error = err.Error()
		return outcome
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	outcome.LatencyMs = elapsedMs(start)
	if err != nil {
		if isTimeout(err) {
			outcome.Error = timeoutError
		} else {
			outcome.Error = err.Error()
		}
		return outcome
	}
	defer resp.Body.Close()

	outcome.StatusCode = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		outcome.Error = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, snippet)
		return outcome
	}

	var reply generateReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		outcome.Error = fmt.Sprintf("decoding response: %v", err)
		return outcome
	}

	outcome.Success = true
	outcome.TokensPerSec = reply.TokensPerSec
	return outcome
}

// CheckHealth probes GET /healthz as a pre-flight liveness check.
//
// # Outputs
//
//   - int: HTTP status code, 0 when the endpoint was unreachable.
//   - error: Non-nil only when the endpoint could not be reached at all.
//     A non-200 status is returned without error; callers treat it as a
//     warning, not an abort.
func (c *Client) CheckHealth(ctx context.Context) (int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("cannot reach %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// isTimeout distinguishes a per-request deadline from other transport
// failures. Both context deadline errors and net-level timeouts count.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}

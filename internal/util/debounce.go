// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the talk client.
package util

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// DEBOUNCER
// =============================================================================

// DebounceEdge selects which edge of a burst fires the wrapped function.
type DebounceEdge int

const (
	// EdgeTrailing fires once after calls have been quiet for the delay.
	EdgeTrailing DebounceEdge = iota

	// EdgeLeading fires on the first call of a burst and suppresses the rest
	// until the delay has passed without further calls.
	EdgeLeading
)

// Debouncer coalesces bursts of calls into a single invocation of fn.
//
// Each rate-limited call site owns its own Debouncer; the delay and edge
// semantics are fixed at construction. A zero delay makes Call invoke fn
// synchronously, which keeps tests deterministic.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	edge  DebounceEdge
	fn    func()
	timer *time.Timer
}

// NewDebouncer creates a debouncer that invokes fn per the configured edge.
func NewDebouncer(delay time.Duration, edge DebounceEdge, fn func()) *Debouncer {
	return &Debouncer{
		delay: delay,
		edge:  edge,
		fn:    fn,
	}
}

// Call schedules (or performs) an invocation of the wrapped function.
func (d *Debouncer) Call() {
	if d.delay <= 0 {
		d.fn()
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.edge {
	case EdgeLeading:
		if d.timer == nil {
			// First call of a burst fires immediately.
			d.fn()
		} else {
			d.timer.Stop()
		}
		d.timer = time.AfterFunc(d.delay, func() {
			d.mu.Lock()
			d.timer = nil
			d.mu.Unlock()
		})
	default: // EdgeTrailing
		if d.timer != nil {
			d.timer.Stop()
		}
		d.timer = time.AfterFunc(d.delay, func() {
			d.mu.Lock()
			d.timer = nil
			d.mu.Unlock()
			d.fn()
		})
	}
}

// Stop cancels any pending trailing-edge invocation.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// =============================================================================
// THROTTLER
// =============================================================================

// Throttler limits how often the wrapped function may run.
//
// Built on a token bucket (golang.org/x/time/rate); calls that arrive while
// the bucket is empty are dropped, not queued. Suited to refresh-style work
// where the latest call supersedes earlier ones.
type Throttler struct {
	limiter *rate.Limiter
	fn      func()
}

// NewThrottler creates a throttler allowing at most one invocation per
// interval, with a burst of one.
func NewThrottler(interval time.Duration, fn func()) *Throttler {
	return &Throttler{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		fn:      fn,
	}
}

// Call invokes the wrapped function if the rate limit allows, and reports
// whether the call ran.
func (t *Throttler) Call() bool {
	if !t.limiter.Allow() {
		return false
	}
	t.fn()
	return true
}

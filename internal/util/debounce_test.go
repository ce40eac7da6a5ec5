// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerZeroDelayIsSynchronous(t *testing.T) {
	calls := 0
	d := NewDebouncer(0, EdgeTrailing, func() { calls++ })

	d.Call()
	d.Call()
	if calls != 2 {
		t.Errorf("expected 2 synchronous calls, got %d", calls)
	}
}

func TestDebouncerTrailingCoalesces(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(30*time.Millisecond, EdgeTrailing, func() { calls.Add(1) })

	for i := 0; i < 5; i++ {
		d.Call()
	}
	if calls.Load() != 0 {
		t.Error("trailing edge must not fire during the burst")
	}

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single coalesced call, got %d", calls.Load())
	}
}

func TestDebouncerLeadingFiresImmediately(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(50*time.Millisecond, EdgeLeading, func() { calls.Add(1) })

	d.Call()
	if calls.Load() != 1 {
		t.Error("leading edge must fire on the first call")
	}
	d.Call()
	d.Call()
	if calls.Load() != 1 {
		t.Error("calls within the delay must be suppressed")
	}
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(20*time.Millisecond, EdgeTrailing, func() { calls.Add(1) })

	d.Call()
	d.Stop()
	time.Sleep(60 * time.Millisecond)
	if calls.Load() != 0 {
		t.Error("stopped debouncer must not fire")
	}
}

func TestThrottlerDropsExcessCalls(t *testing.T) {
	var calls atomic.Int32
	th := NewThrottler(time.Hour, func() { calls.Add(1) })

	if !th.Call() {
		t.Error("first call should run")
	}
	if th.Call() {
		t.Error("second call within the interval should be dropped")
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 invocation, got %d", calls.Load())
	}
}

func TestRandomHash16(t *testing.T) {
	a := RandomHash16()
	b := RandomHash16()

	if len(a) != 16 || len(b) != 16 {
		t.Errorf("expected 16-char hashes, got %d and %d", len(a), len(b))
	}
	if a == b {
		t.Error("expected distinct hashes")
	}
	for _, r := range a {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			t.Errorf("unexpected character %q in hash", r)
		}
	}
}

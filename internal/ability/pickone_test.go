// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ability

import "testing"

func TestPickOneEmptyPool(t *testing.T) {
	got, ok := PickOne("gpt-4", nil)
	if ok {
		t.Error("expected ok=false for empty pool")
	}
	if got != "" {
		t.Errorf("expected empty selection, got %q", got)
	}
}

func TestPickOneKeepsCurrentSelection(t *testing.T) {
	got, ok := PickOne("gpt-4", []string{"gpt-3.5", "gpt-4", "gpt-4o"})
	if !ok {
		t.Error("expected ok=true")
	}
	if got != "gpt-4" {
		t.Errorf("expected current selection kept, got %q", got)
	}
}

func TestPickOneFallsBackToFirst(t *testing.T) {
	tests := []struct {
		name    string
		current string
		pool    []string
		want    string
	}{
		{"vanished selection", "gpt-4", []string{"gpt-3.5", "gpt-4o"}, "gpt-3.5"},
		{"no prior selection", "", []string{"gpt-4o", "gpt-3.5"}, "gpt-4o"},
		{"single entry pool", "old", []string{"new"}, "new"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PickOne(tt.current, tt.pool)
			if !ok {
				t.Error("expected ok=true")
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPickOneFuncProjection(t *testing.T) {
	type voice struct {
		id   string
		name string
	}
	pool := []voice{
		{id: "v1", name: "Rachel"},
		{id: "v2", name: "Adam"},
	}
	key := func(v voice) string { return v.id }

	// Current selection still in the pool survives.
	got, ok := PickOneFunc("v2", pool, key)
	if !ok || got != "v2" {
		t.Errorf("expected v2 kept, got %q ok=%v", got, ok)
	}

	// Vanished selection falls back to the first entry's key.
	got, ok = PickOneFunc("v9", pool, key)
	if !ok || got != "v1" {
		t.Errorf("expected fallback to v1, got %q ok=%v", got, ok)
	}

	// Empty pool clears the selection.
	got, ok = PickOneFunc("v1", nil, key)
	if ok || got != "" {
		t.Errorf("expected cleared selection, got %q ok=%v", got, ok)
	}
}

// Reconnects that advertise the same pool must not change the selection,
// no matter how many times they arrive.
func TestPickOneIdempotent(t *testing.T) {
	pool := []string{"a", "b", "c"}
	current := "b"
	for i := 0; i < 5; i++ {
		got, ok := PickOne(current, pool)
		if !ok || got != "b" {
			t.Fatalf("iteration %d: expected b, got %q ok=%v", i, got, ok)
		}
		current = got
	}
}

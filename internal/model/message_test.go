// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"sync"
	"testing"
)

func TestNewSendingDefaults(t *testing.T) {
	msg := NewSending()

	if msg.Role != RoleUser {
		t.Errorf("expected user role, got %s", msg.Role)
	}
	if msg.GetStatus() != StatusSending {
		t.Errorf("expected sending status, got %s", msg.GetStatus())
	}
	if !strings.HasPrefix(msg.ID, "msg_") {
		t.Errorf("expected msg_ prefix, got %s", msg.ID)
	}
	if msg.CreatedAt.IsZero() {
		t.Error("expected a creation timestamp")
	}
	if msg.IsTerminal() {
		t.Error("a sending message is not terminal")
	}
}

func TestMessageIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		msg := NewSending()
		if seen[msg.ID] {
			t.Fatalf("duplicate message ID %s", msg.ID)
		}
		seen[msg.ID] = true
	}
}

func TestOnSentClearsError(t *testing.T) {
	msg := NewSending()
	msg.OnError("Failed to send, reason:timeout")

	if msg.GetStatus() != StatusError {
		t.Errorf("expected error status, got %s", msg.GetStatus())
	}
	if msg.GetError() != "Failed to send, reason:timeout" {
		t.Errorf("unexpected error text: %s", msg.GetError())
	}

	// Last write wins: a late success overwrites the failure entirely.
	msg.OnSent()
	if msg.GetStatus() != StatusSent {
		t.Errorf("expected sent status, got %s", msg.GetStatus())
	}
	if msg.GetError() != "" {
		t.Errorf("expected error cleared, got %s", msg.GetError())
	}
}

func TestOnErrorAfterSent(t *testing.T) {
	msg := NewSending()
	msg.OnSent()
	msg.OnError("Failed to send, reason:late failure")

	if msg.GetStatus() != StatusError {
		t.Errorf("expected error status, got %s", msg.GetStatus())
	}
}

func TestTransitionsAreThreadSafe(t *testing.T) {
	msg := NewSending()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			msg.OnSent()
		}()
		go func() {
			defer wg.Done()
			_ = msg.GetStatus()
		}()
	}
	wg.Wait()

	if msg.GetStatus() != StatusSent {
		t.Errorf("expected sent status, got %s", msg.GetStatus())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	msg := NewSending()
	msg.Content = "hello"
	msg.AudioID = "abc123"

	clone := msg.Clone()
	msg.OnError("Failed to send, reason:boom")

	if clone.Status != StatusSending {
		t.Errorf("clone should keep the status at copy time, got %s", clone.Status)
	}
	if clone.AudioID != "abc123" || clone.Content != "hello" {
		t.Error("clone lost field values")
	}
}

func TestPreview(t *testing.T) {
	msg := NewMessage(RoleUser, "héllo wörld", StatusSent)

	if got := msg.Preview(100); got != "héllo wörld" {
		t.Errorf("short content should be unchanged, got %q", got)
	}
	if got := msg.Preview(8); got != "héllo..." {
		t.Errorf("expected truncation with ellipsis, got %q", got)
	}
}

func TestChatAudioIDs(t *testing.T) {
	chat := NewChat("test")
	m1 := NewSending()
	m1.AudioID = "a1"
	m2 := NewSending()
	m3 := NewSending()
	m3.AudioID = "a3"
	chat.AddMessage(m1)
	chat.AddMessage(m2)
	chat.AddMessage(m3)

	ids := chat.AudioIDs()
	if len(ids) != 2 || ids[0] != "a1" || ids[1] != "a3" {
		t.Errorf("unexpected audio IDs: %v", ids)
	}
}

func TestChatRemoveMessage(t *testing.T) {
	chat := NewChat("test")
	m1 := NewSending()
	m2 := NewSending()
	chat.AddMessage(m1)
	chat.AddMessage(m2)

	removed := chat.RemoveMessage(m1.ID)
	if removed == nil || removed.ID != m1.ID {
		t.Fatal("expected removed message returned")
	}
	if chat.MessageCount() != 1 {
		t.Errorf("expected 1 message left, got %d", chat.MessageCount())
	}
	if chat.RemoveMessage("missing") != nil {
		t.Error("removing an unknown ID should return nil")
	}
}

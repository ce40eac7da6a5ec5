// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chats, messages and prompts.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// =============================================================================
// MESSAGE STATUS
// =============================================================================

// MessageStatus represents the lifecycle state of a message.
type MessageStatus string

const (
	// StatusSending indicates the outbound network call has not completed.
	StatusSending MessageStatus = "sending"

	// StatusSent indicates the server acknowledged the send with a 2xx.
	StatusSent MessageStatus = "sent"

	// StatusError indicates the send failed; ErrorMessage holds the reason.
	StatusError MessageStatus = "error"

	// StatusTyping marks an assistant message still being streamed in.
	// It is a rendering state, not part of the send pipeline's transitions.
	StatusTyping MessageStatus = "typing"

	// StatusReceived marks a fully delivered assistant message.
	StatusReceived MessageStatus = "received"
)

// String returns the string representation of the status.
func (s MessageStatus) String() string {
	return string(s)
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// ResponseContext records what was attached to the request that produced
// a message, for display alongside it.
type ResponseContext struct {
	AttachedCount int    `json:"attached_count,omitempty"`
	PromptCount   int    `json:"prompt_count,omitempty"`
	Provider      string `json:"provider,omitempty"`
	Model         string `json:"model,omitempty"`
}

// Message represents a single message in a chat.
//
// Status and ErrorMessage are guarded by a mutex because the send
// pipeline's completion handler runs on a different goroutine than the
// readers. All other fields are written once before the message is
// published to a chat and are read-only afterwards; AudioID in particular
// is immutable once set.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`

	// Content
	Content string `json:"content"`

	// AudioID references a blob in the blob store. Empty means the message
	// has no audio. The blob itself may be absent, e.g. after restoring
	// from an export that omits binary payloads.
	AudioID string `json:"audio_id,omitempty"`

	// Context attached to the request that produced this message.
	Context ResponseContext `json:"context,omitempty"`

	// Lifecycle state
	Status       MessageStatus `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`

	mu sync.RWMutex
}

// NewSending creates a message in StatusSending with a fresh ID and the
// current timestamp. No network call has necessarily completed yet.
func NewSending() *Message {
	return &Message{
		ID:        generateMessageID(),
		Role:      RoleUser,
		CreatedAt: time.Now(),
		Status:    StatusSending,
	}
}

// NewMessage creates a message in a terminal state, for history imports
// and assistant turns delivered over the event channel.
func NewMessage(role Role, content string, status MessageStatus) *Message {
	return &Message{
		ID:        generateMessageID(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
		Status:    status,
	}
}

// =============================================================================
// LIFECYCLE TRANSITIONS
// =============================================================================

// OnSent transitions sending -> sent and clears any error text.
//
// Transitions are last-write-wins: a late OnSent after OnError overwrites
// the error state. The server never reports both outcomes for one ticket,
// so the double-invocation case is not guarded against.
func (m *Message) OnSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Status = StatusSent
	m.ErrorMessage = ""
}

// OnError transitions sending -> error and records the reason.
func (m *Message) OnError(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Status = StatusError
	m.ErrorMessage = reason
}

// GetStatus returns the current lifecycle state (thread-safe).
func (m *Message) GetStatus() MessageStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Status
}

// GetError returns the recorded failure reason (thread-safe).
func (m *Message) GetError() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ErrorMessage
}

// IsTerminal returns true once the send pipeline is done with the message.
func (m *Message) IsTerminal() bool {
	status := m.GetStatus()
	return status == StatusSent || status == StatusError || status == StatusReceived
}

// =============================================================================
// HELPERS
// =============================================================================

// Clone returns a copy of the message safe to hand to other goroutines.
func (m *Message) Clone() *Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &Message{
		ID:           m.ID,
		Role:         m.Role,
		CreatedAt:    m.CreatedAt,
		Content:      m.Content,
		AudioID:      m.AudioID,
		Context:      m.Context,
		Status:       m.Status,
		ErrorMessage: m.ErrorMessage,
	}
}

// Preview returns a truncated preview of the message content.
// Rune-based so multi-byte characters are never split.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// generateMessageID creates a unique message ID.
func generateMessageID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}

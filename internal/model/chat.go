// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chats, messages and prompts.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/moderato-app/talk-client/internal/ability"
)

// =============================================================================
// CHAT TYPE
// =============================================================================

// Chat holds one conversation with the server: its messages, the per-chat
// provider option, the live input buffer and an optional prompt link.
//
// Chats are owned exclusively by the conversation store; all mutation goes
// through store methods so subscribers observe every change.
type Chat struct {
	// Identity
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Messages, oldest first.
	Messages []*Message `json:"messages"`

	// Option is the user-selected provider configuration, reconciled
	// against the latest server capability snapshot.
	Option ability.Option `json:"option"`

	// InputText is the live, unsent input buffer.
	InputText string `json:"input_text"`

	// PromptID links a reusable prompt; empty means no prompt attached.
	// The prompt lives in the prompt store and is referenced, not owned.
	PromptID string `json:"prompt_id"`
}

// NewChat creates a chat with a generated ID and default options.
func NewChat(name string) *Chat {
	now := time.Now()
	return &Chat{
		ID:        generateChatID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  make([]*Message, 0),
		Option:    ability.DefaultOption(),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends a message to the chat.
func (c *Chat) AddMessage(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
}

// RemoveMessage removes a message by ID. Returns the removed message so
// callers can release resources it references, or nil if not found.
func (c *Chat) RemoveMessage(id string) *Message {
	for i, msg := range c.Messages {
		if msg.ID == id {
			c.Messages = append(c.Messages[:i], c.Messages[i+1:]...)
			c.UpdatedAt = time.Now()
			return msg
		}
	}
	return nil
}

// GetMessageByID returns a message by its ID, or nil.
func (c *Chat) GetMessageByID(id string) *Message {
	for _, msg := range c.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// MessageCount returns the number of messages.
func (c *Chat) MessageCount() int {
	return len(c.Messages)
}

// AudioIDs returns the blob keys referenced by this chat's messages.
func (c *Chat) AudioIDs() []string {
	ids := make([]string, 0)
	for _, msg := range c.Messages {
		if msg.AudioID != "" {
			ids = append(ids, msg.AudioID)
		}
	}
	return ids
}

// =============================================================================
// HELPERS
// =============================================================================

// Clone creates a deep copy of the chat. The pipeline snapshots options
// through this before assembling a request, so a capability update arriving
// mid-flight cannot corrupt an in-progress request.
func (c *Chat) Clone() *Chat {
	clone := &Chat{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Option:    c.Option,
		InputText: c.InputText,
		PromptID:  c.PromptID,
		Messages:  make([]*Message, len(c.Messages)),
	}
	for i, msg := range c.Messages {
		clone.Messages[i] = msg.Clone()
	}
	return clone
}

// generateChatID creates a unique chat ID.
func generateChatID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "chat_" + hex.EncodeToString(bytes)
}

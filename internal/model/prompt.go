// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chats, messages and prompts.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Prompt is a reusable named system-instruction template. Prompts are
// referenced by ID from chats (many chats may share one) and their
// lifecycle is independent of any single chat.
type Prompt struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPrompt creates a prompt with a generated ID.
func NewPrompt(name, content string) *Prompt {
	now := time.Now()
	return &Prompt{
		ID:        generatePromptID(),
		Name:      name,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a copy of the prompt.
func (p *Prompt) Clone() *Prompt {
	clone := *p
	return &clone
}

// generatePromptID creates a unique prompt ID.
func generatePromptID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "prompt_" + hex.EncodeToString(bytes)
}

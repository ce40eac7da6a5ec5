// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import "sync"

// =============================================================================
// SUBSCRIPTION KEYS
// =============================================================================

// Well-known subscription keys. Per-chat keys are derived via the Key*
// helpers below.
const (
	// KeyChats fires on chat creation, deletion and renaming.
	KeyChats = "chats"

	// KeyCurrentChat fires when the active chat changes.
	KeyCurrentChat = "currentChatId"

	// KeyPrompts fires on any prompt collection change.
	KeyPrompts = "prompts"

	// KeyAbility fires when a server capability snapshot is applied.
	KeyAbility = "ability"
)

// KeyMessages is the subscription key for one chat's message list.
func KeyMessages(chatID string) string { return "chat:" + chatID + ":messages" }

// KeyInputText is the subscription key for one chat's input buffer.
func KeyInputText(chatID string) string { return "chat:" + chatID + ":inputText" }

// KeyPromptID is the subscription key for one chat's prompt link.
func KeyPromptID(chatID string) string { return "chat:" + chatID + ":promptId" }

// KeyOption is the subscription key for one chat's provider option.
func KeyOption(chatID string) string { return "chat:" + chatID + ":option" }

// =============================================================================
// SUBSCRIBER REGISTRY
// =============================================================================

// subscribers maps keys to registered callbacks. Both stores embed one.
type subscribers struct {
	mu   sync.Mutex
	subs map[string]map[int]func()
	next int
}

// subscribe registers fn under key and returns an unsubscribe handle.
// The handle is safe to call more than once.
func (s *subscribers) subscribe(key string, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subs == nil {
		s.subs = make(map[string]map[int]func())
	}
	if s.subs[key] == nil {
		s.subs[key] = make(map[int]func())
	}

	id := s.next
	s.next++
	s.subs[key][id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[key], id)
	}
}

// notify invokes every callback registered under the given keys.
//
// Callbacks run synchronously on the mutating goroutine, after the store
// lock has been released, so a subscriber may call back into the store.
func (s *subscribers) notify(keys ...string) {
	s.mu.Lock()
	var fns []func()
	for _, key := range keys {
		for _, fn := range s.subs[key] {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

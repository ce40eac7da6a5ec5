// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"sync"
	"time"

	"github.com/moderato-app/talk-client/internal/model"
)

// =============================================================================
// PROMPT STORE
// =============================================================================

// PromptStore owns the reusable prompt collection. Prompts are referenced
// from chats by ID; deleting a prompt leaves dangling links that the
// window watcher clears on its next recompute.
type PromptStore struct {
	mu      sync.Mutex
	prompts map[string]*model.Prompt
	order   []string

	subscribers
}

// NewPromptStore creates an empty prompt store.
func NewPromptStore() *PromptStore {
	return &PromptStore{
		prompts: make(map[string]*model.Prompt),
	}
}

// Subscribe registers fn under key (normally KeyPrompts) and returns an
// unsubscribe handle.
func (s *PromptStore) Subscribe(key string, fn func()) func() {
	return s.subscribe(key, fn)
}

// Add creates a prompt and returns a copy of it.
func (s *PromptStore) Add(name, content string) *model.Prompt {
	prompt := model.NewPrompt(name, content)

	s.mu.Lock()
	s.prompts[prompt.ID] = prompt
	s.order = append(s.order, prompt.ID)
	clone := prompt.Clone()
	s.mu.Unlock()

	s.notify(KeyPrompts)
	return clone
}

// Find returns a copy of the prompt with the given ID.
func (s *PromptStore) Find(id string) (*model.Prompt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prompt, ok := s.prompts[id]
	if !ok {
		return nil, false
	}
	return prompt.Clone(), true
}

// Update replaces a prompt's name and content.
func (s *PromptStore) Update(id, name, content string) bool {
	s.mu.Lock()
	prompt, ok := s.prompts[id]
	if ok {
		prompt.Name = name
		prompt.Content = content
		prompt.UpdatedAt = time.Now()
	}
	s.mu.Unlock()

	if ok {
		s.notify(KeyPrompts)
	}
	return ok
}

// Delete removes a prompt. Chats referencing it keep their link until the
// watcher observes the dangling ID and clears it.
func (s *PromptStore) Delete(id string) bool {
	s.mu.Lock()
	_, ok := s.prompts[id]
	if ok {
		delete(s.prompts, id)
		for i, pid := range s.order {
			if pid == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	if ok {
		s.notify(KeyPrompts)
	}
	return ok
}

// Prompts returns copies of all prompts in creation order.
func (s *PromptStore) Prompts() []*model.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*model.Prompt, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.prompts[id].Clone())
	}
	return result
}

// Restore installs an imported prompt.
func (s *PromptStore) Restore(prompt *model.Prompt) {
	s.mu.Lock()
	if _, exists := s.prompts[prompt.ID]; !exists {
		s.order = append(s.order, prompt.ID)
	}
	s.prompts[prompt.ID] = prompt
	s.mu.Unlock()

	s.notify(KeyPrompts)
}

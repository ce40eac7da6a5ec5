// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package window

import (
	"log"
	"sync"
	"time"

	"github.com/moderato-app/talk-client/internal/api"
	"github.com/moderato-app/talk-client/internal/model"
	"github.com/moderato-app/talk-client/internal/store"
	"github.com/moderato-app/talk-client/internal/util"
)

// =============================================================================
// ATTACHED-CONTEXT WATCHER
// =============================================================================

// Watcher keeps the attached-context preview for one chat up to date.
//
// It subscribes to every state slice the computation reads: the chat's
// option (history bound), its message list, its prompt link, the prompt
// collection, and the input buffer. Each change triggers a recompute
// through a debouncer so a burst of keystrokes coalesces into one pass.
//
// If the chat's prompt link no longer resolves to an existing prompt, the
// link is cleared and the incident logged; a deleted prompt must not
// silently keep influencing sends.
type Watcher struct {
	chatID  string
	chats   *store.ChatStore
	prompts *store.PromptStore

	mu      sync.Mutex
	current []api.LLMMessage

	recompute *util.Debouncer
	unsubs    []func()
	onChange  func([]api.LLMMessage)
}

// NewWatcher creates and starts a watcher for chatID. debounce of zero
// recomputes synchronously on every change. onChange may be nil.
func NewWatcher(chatID string, chats *store.ChatStore, prompts *store.PromptStore,
	debounce time.Duration, onChange func([]api.LLMMessage)) *Watcher {

	w := &Watcher{
		chatID:   chatID,
		chats:    chats,
		prompts:  prompts,
		onChange: onChange,
	}
	w.recompute = util.NewDebouncer(debounce, util.EdgeTrailing, w.refresh)

	trigger := func() { w.recompute.Call() }
	w.unsubs = []func(){
		chats.Subscribe(store.KeyOption(chatID), trigger),
		chats.Subscribe(store.KeyMessages(chatID), trigger),
		chats.Subscribe(store.KeyPromptID(chatID), trigger),
		chats.Subscribe(store.KeyInputText(chatID), trigger),
		prompts.Subscribe(store.KeyPrompts, trigger),
	}

	w.refresh()
	return w
}

// Current returns the latest computed preview.
func (w *Watcher) Current() []api.LLMMessage {
	w.mu.Lock()
	defer w.mu.Unlock()
	result := make([]api.LLMMessage, len(w.current))
	copy(result, w.current)
	return result
}

// Close unsubscribes the watcher from all state slices.
func (w *Watcher) Close() {
	w.recompute.Stop()
	for _, unsub := range w.unsubs {
		unsub()
	}
}

// refresh recomputes the preview from current store state.
func (w *Watcher) refresh() {
	chat, ok := w.chats.Snapshot(w.chatID)
	if !ok {
		// Chat deleted; the owner is expected to Close us soon.
		return
	}

	prompt := w.resolvePrompt(chat.PromptID)
	attached := Attached(chat, prompt, MaxHistory(chat.Option))

	w.mu.Lock()
	w.current = attached
	w.mu.Unlock()

	if w.onChange != nil {
		w.onChange(attached)
	}
}

// resolvePrompt looks up the linked prompt, clearing dangling links.
func (w *Watcher) resolvePrompt(promptID string) *model.Prompt {
	if promptID == "" {
		return nil
	}
	prompt, ok := w.prompts.Find(promptID)
	if !ok {
		log.Printf("ERROR: prompt not found, clearing link: %s", promptID)
		w.chats.SetPromptID(w.chatID, "")
		return nil
	}
	return prompt
}

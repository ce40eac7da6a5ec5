// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"log"
	"sync"

	"github.com/moderato-app/talk-client/internal/ability"
	"github.com/moderato-app/talk-client/internal/api"
	"github.com/moderato-app/talk-client/internal/model"
)

// AudioPurger disposes of audio blobs when their referencing messages go
// away. Satisfied by *blob.Store; nil disables the cascade.
type AudioPurger interface {
	DeleteItem(ctx context.Context, key string)
}

// =============================================================================
// CHAT STORE
// =============================================================================

// ChatStore owns every chat. Chats are created here, mutated here, and
// destroyed here; other components hold chat IDs, not chat pointers.
type ChatStore struct {
	mu      sync.Mutex
	chats   map[string]*model.Chat
	order   []string
	current string

	// lastAbility is the most recent server snapshot, applied to chats
	// created after it arrived.
	lastAbility api.ServerAbility
	hasAbility  bool

	// defaultOption seeds new chats; nil means ability.DefaultOption().
	// Configured settings (the history bound) land here, so a config value
	// reaches every chat created after it was loaded.
	defaultOption *ability.Option

	purger AudioPurger

	subscribers
}

// NewChatStore creates an empty chat store. purger may be nil.
func NewChatStore(purger AudioPurger) *ChatStore {
	return &ChatStore{
		chats:  make(map[string]*model.Chat),
		purger: purger,
	}
}

// Subscribe registers fn for mutations under key and returns an
// unsubscribe handle. Notification is synchronous, after the mutation.
func (s *ChatStore) Subscribe(key string, fn func()) func() {
	return s.subscribe(key, fn)
}

// SetDefaultOption replaces the option seed for chats created from now
// on. Existing chats keep their options.
func (s *ChatStore) SetDefaultOption(opt ability.Option) {
	s.mu.Lock()
	s.defaultOption = &opt
	s.mu.Unlock()
}

// =============================================================================
// CHAT LIFECYCLE
// =============================================================================

// NewChat creates a chat, reconciles its default option against the last
// known capability snapshot, and makes it current.
func (s *ChatStore) NewChat(name string) *model.Chat {
	chat := model.NewChat(name)

	s.mu.Lock()
	if s.defaultOption != nil {
		chat.Option = *s.defaultOption
	}
	if s.hasAbility {
		ability.Adjust(&chat.Option, s.lastAbility)
	}
	s.chats[chat.ID] = chat
	s.order = append(s.order, chat.ID)
	s.current = chat.ID
	clone := chat.Clone()
	s.mu.Unlock()

	s.notify(KeyChats, KeyCurrentChat)
	return clone
}

// DeleteChat destroys a chat and cascades to the audio blobs its messages
// referenced. Returns false if the chat does not exist.
func (s *ChatStore) DeleteChat(ctx context.Context, id string) bool {
	s.mu.Lock()
	chat, ok := s.chats[id]
	if !ok {
		s.mu.Unlock()
		return false
	}

	audioIDs := chat.AudioIDs()
	delete(s.chats, id)
	for i, cid := range s.order {
		if cid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	currentChanged := false
	if s.current == id {
		s.current = ""
		if len(s.order) > 0 {
			s.current = s.order[len(s.order)-1]
		}
		currentChanged = true
	}
	s.mu.Unlock()

	if s.purger != nil {
		for _, audioID := range audioIDs {
			s.purger.DeleteItem(ctx, audioID)
		}
	}

	if currentChanged {
		s.notify(KeyChats, KeyCurrentChat)
	} else {
		s.notify(KeyChats)
	}
	return true
}

// Rename sets a chat's display name.
func (s *ChatStore) Rename(id, name string) bool {
	s.mu.Lock()
	chat, ok := s.chats[id]
	if ok {
		chat.Name = name
	}
	s.mu.Unlock()

	if ok {
		s.notify(KeyChats)
	}
	return ok
}

// Restore installs an imported chat without touching the current pointer.
func (s *ChatStore) Restore(chat *model.Chat) {
	s.mu.Lock()
	if s.hasAbility {
		ability.Adjust(&chat.Option, s.lastAbility)
	}
	if _, exists := s.chats[chat.ID]; !exists {
		s.order = append(s.order, chat.ID)
	}
	s.chats[chat.ID] = chat
	s.mu.Unlock()

	s.notify(KeyChats)
}

// =============================================================================
// QUERIES
// =============================================================================

// Snapshot returns a deep copy of a chat, or false if it does not exist.
// The pipeline assembles requests from snapshots so concurrent mutations
// cannot corrupt an in-flight request.
func (s *ChatStore) Snapshot(id string) (*model.Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[id]
	if !ok {
		return nil, false
	}
	return chat.Clone(), true
}

// Exists reports whether a chat is still present.
func (s *ChatStore) Exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.chats[id]
	return ok
}

// Chats returns deep copies of all chats in creation order.
func (s *ChatStore) Chats() []*model.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*model.Chat, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.chats[id].Clone())
	}
	return result
}

// Count returns the number of chats.
func (s *ChatStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chats)
}

// Current returns the active chat ID, or empty if none.
func (s *ChatStore) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetCurrent switches the active chat. Unknown IDs are ignored.
func (s *ChatStore) SetCurrent(id string) {
	s.mu.Lock()
	_, ok := s.chats[id]
	if ok {
		s.current = id
	}
	s.mu.Unlock()

	if ok {
		s.notify(KeyCurrentChat)
	}
}

// =============================================================================
// MESSAGE MUTATIONS
// =============================================================================

// AppendMessage adds a message to a chat. The stored value is the same
// pointer the pipeline holds, so lifecycle transitions are visible to
// readers without another copy. Returns false if the chat is gone.
func (s *ChatStore) AppendMessage(chatID string, msg *model.Message) bool {
	s.mu.Lock()
	chat, ok := s.chats[chatID]
	if ok {
		chat.AddMessage(msg)
	}
	s.mu.Unlock()

	if ok {
		s.notify(KeyMessages(chatID))
	}
	return ok
}

// DeleteMessage removes a message from a chat, cascading to its audio
// blob. Messages may be deleted from any lifecycle state.
func (s *ChatStore) DeleteMessage(ctx context.Context, chatID, messageID string) bool {
	s.mu.Lock()
	chat, ok := s.chats[chatID]
	var removed *model.Message
	if ok {
		removed = chat.RemoveMessage(messageID)
	}
	s.mu.Unlock()

	if removed == nil {
		return false
	}
	if removed.AudioID != "" && s.purger != nil {
		s.purger.DeleteItem(ctx, removed.AudioID)
	}
	s.notify(KeyMessages(chatID))
	return true
}

// TouchMessages notifies message subscribers after an in-place message
// mutation (a lifecycle transition). If the chat has been deleted the
// notification is skipped; the orphaned message was still updated.
func (s *ChatStore) TouchMessages(chatID string) {
	s.mu.Lock()
	_, ok := s.chats[chatID]
	s.mu.Unlock()

	if !ok {
		log.Printf("WARNING: chat does not exist any more, chatId: %s", chatID)
		return
	}
	s.notify(KeyMessages(chatID))
}

// =============================================================================
// INPUT / PROMPT / OPTION MUTATIONS
// =============================================================================

// SetInputText replaces a chat's live input buffer.
func (s *ChatStore) SetInputText(chatID, text string) bool {
	s.mu.Lock()
	chat, ok := s.chats[chatID]
	if ok {
		chat.InputText = text
	}
	s.mu.Unlock()

	if ok {
		s.notify(KeyInputText(chatID))
	}
	return ok
}

// SetPromptID links (or with an empty ID, unlinks) a prompt.
func (s *ChatStore) SetPromptID(chatID, promptID string) bool {
	s.mu.Lock()
	chat, ok := s.chats[chatID]
	if ok {
		chat.PromptID = promptID
	}
	s.mu.Unlock()

	if ok {
		s.notify(KeyPromptID(chatID))
	}
	return ok
}

// UpdateOption applies fn to a chat's option under the store lock.
func (s *ChatStore) UpdateOption(chatID string, fn func(*ability.Option)) bool {
	s.mu.Lock()
	chat, ok := s.chats[chatID]
	if ok {
		fn(&chat.Option)
	}
	s.mu.Unlock()

	if ok {
		s.notify(KeyOption(chatID))
	}
	return ok
}

// =============================================================================
// CAPABILITY RECONCILIATION
// =============================================================================

// ApplyAbility merges a server capability snapshot into every chat's
// option and remembers it for chats created later.
func (s *ChatStore) ApplyAbility(snapshot api.ServerAbility) {
	s.mu.Lock()
	s.lastAbility = snapshot
	s.hasAbility = true
	keys := make([]string, 0, len(s.order)+1)
	for _, id := range s.order {
		ability.Adjust(&s.chats[id].Option, snapshot)
		keys = append(keys, KeyOption(id))
	}
	s.mu.Unlock()

	keys = append(keys, KeyAbility)
	s.notify(keys...)
}

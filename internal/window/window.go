// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package window

import (
	"github.com/moderato-app/talk-client/internal/ability"
	"github.com/moderato-app/talk-client/internal/api"
	"github.com/moderato-app/talk-client/internal/model"
)

// DefaultSystemMessage is sent when a chat has no prompt attached.
const DefaultSystemMessage = "You are a helpful assistant!"

// =============================================================================
// WINDOW COMPUTATION
// =============================================================================

// History returns the windowed slice of past messages for a chat, counted
// from the most recent backwards, in original order.
//
// maxHistory of zero yields no history; ability.MaxHistoryUnlimited (or
// any negative value) yields everything. Failed sends and empty messages
// (a still-streaming assistant turn) never enter the window.
func History(chat *model.Chat, maxHistory int) []api.LLMMessage {
	if maxHistory == 0 {
		return []api.LLMMessage{}
	}

	eligible := make([]*model.Message, 0, len(chat.Messages))
	for _, msg := range chat.Messages {
		if msg.GetStatus() == model.StatusError || msg.Content == "" {
			continue
		}
		eligible = append(eligible, msg)
	}

	if maxHistory > 0 && len(eligible) > maxHistory {
		eligible = eligible[len(eligible)-maxHistory:]
	}

	result := make([]api.LLMMessage, 0, len(eligible))
	for _, msg := range eligible {
		result = append(result, api.LLMMessage{
			Role:    msg.Role.String(),
			Content: msg.Content,
		})
	}
	return result
}

// SystemMessage resolves the system turn for a chat: the linked prompt's
// content if one resolves, the default instruction otherwise.
func SystemMessage(chat *model.Chat, prompt *model.Prompt) api.LLMMessage {
	content := DefaultSystemMessage
	if prompt != nil {
		content = prompt.Content
	}
	return api.LLMMessage{Role: model.RoleSystem.String(), Content: content}
}

// Attached computes the preview of what a send would transmit: the prompt
// (not counted against the bound), the windowed history, and the live
// input buffer appended last as a synthetic user turn.
func Attached(chat *model.Chat, prompt *model.Prompt, maxHistory int) []api.LLMMessage {
	hist := History(chat, maxHistory)

	result := make([]api.LLMMessage, 0, len(hist)+2)
	result = append(result, SystemMessage(chat, prompt))
	result = append(result, hist...)

	if chat.InputText != "" {
		result = append(result, api.LLMMessage{
			Role:    model.RoleUser.String(),
			Content: chat.InputText,
		})
	}
	return result
}

// MaxHistory extracts the history bound from a chat's option.
func MaxHistory(opt ability.Option) int {
	return opt.LLM.MaxHistory
}

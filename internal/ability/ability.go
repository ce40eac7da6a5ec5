// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ability

import "github.com/moderato-app/talk-client/internal/api"

// =============================================================================
// CAPABILITY RECONCILIATION
// =============================================================================

// Adjust merges a server capability snapshot into a chat's option in place.
//
// Availability flags are overwritten wholesale; chosen models and voices go
// through the pick-one rule per provider per modality, so a selection that
// is still advertised survives a reconnect and one that vanished falls back
// to the first advertised value. Absence is modeled as an empty selection,
// never as an error.
func Adjust(o *Option, s api.ServerAbility) {
	o.LLM.ChatGPT.Available = s.LLM.ChatGPT.Available
	o.LLM.ChatGPT.Model, _ = PickOne(o.LLM.ChatGPT.Model, s.LLM.ChatGPT.Models)

	o.TTS.Google.Available = s.TTS.Google.Available
	o.TTS.Google.LanguageCode, _ = PickOne(o.TTS.Google.LanguageCode, s.TTS.Google.Languages)

	o.TTS.Elevenlabs.Available = s.TTS.Elevenlabs.Available
	o.TTS.Elevenlabs.VoiceID, _ = PickOneFunc(o.TTS.Elevenlabs.VoiceID, s.TTS.Elevenlabs.Voices,
		func(v api.Voice) string { return v.ID })

	o.STT.Whisper.Available = s.STT.Whisper.Available
	o.STT.Whisper.Model, _ = PickOne(o.STT.Whisper.Model, s.STT.Whisper.Models)
}

// =============================================================================
// REQUEST OPTION ASSEMBLY
// =============================================================================

// ToTalkOption assembles the outbound request option from a merged option.
//
// Only providers that are simultaneously available, enabled, and (where
// required) carry a non-empty selection contribute. TTS providers are
// mutually exclusive with a fixed priority: google is checked before
// elevenlabs. A provider missing its required selection is silently
// excluded; it is never replaced by another enabled provider.
func ToTalkOption(o Option) api.TalkOption {
	opt := api.TalkOption{
		ToSpeech:           false, // maybe enable in the future
		ToText:             true,
		Completion:         true,
		CompletionToSpeech: true,
	}

	// LLM
	chatGPT := o.LLM.ChatGPT
	if chatGPT.Available && chatGPT.Enabled && chatGPT.Model != "" {
		opt.LLMOption = &api.LLMOption{
			ChatGPT: &api.ChatGPTOption{
				Model:            chatGPT.Model,
				MaxTokens:        chatGPT.MaxTokens,
				Temperature:      chatGPT.Temperature,
				TopP:             chatGPT.TopP,
				PresencePenalty:  chatGPT.PresencePenalty,
				FrequencyPenalty: chatGPT.FrequencyPenalty,
			},
		}
	}

	// TTS, only one provider may be used at a time
	google := o.TTS.Google
	elevenlabs := o.TTS.Elevenlabs
	if google.Available && google.Enabled {
		opt.TTSOption = &api.TTSOption{
			Google: &api.GoogleTTSOption{
				VoiceID:      google.VoiceID,
				LanguageCode: google.LanguageCode,
				Gender:       google.Gender,
				SpeakingRate: google.SpeakingRate,
				Pitch:        google.Pitch,
				VolumeGainDb: google.VolumeGainDb,
			},
		}
	} else if elevenlabs.Available && elevenlabs.Enabled && elevenlabs.VoiceID != "" {
		opt.TTSOption = &api.TTSOption{
			Elevenlabs: &api.ElevenlabsTTSOption{
				VoiceID:   elevenlabs.VoiceID,
				Stability: elevenlabs.Stability,
				Clarity:   elevenlabs.Clarity,
			},
		}
	}

	// STT
	whisper := o.STT.Whisper
	if whisper.Available && whisper.Enabled && whisper.Model != "" {
		opt.STTOption = &api.STTOption{
			Whisper: &api.WhisperOption{
				Model: whisper.Model,
			},
		}
	}

	return opt
}

// Provider returns the LLM provider/model pair a request option resolves
// to, for recording on the message it produced.
func Provider(opt api.TalkOption) (provider, model string) {
	if opt.LLMOption != nil && opt.LLMOption.ChatGPT != nil {
		return "chatGPT", opt.LLMOption.ChatGPT.Model
	}
	return "", ""
}

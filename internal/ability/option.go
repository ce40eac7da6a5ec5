// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ability

import "github.com/moderato-app/talk-client/internal/api"

// =============================================================================
// OPTION TYPES
// =============================================================================

// MaxHistoryUnlimited disables the history window bound.
const MaxHistoryUnlimited = -1

// Option is the user-selected provider configuration for one chat.
//
// The server supports many providers, but within an Option each of LLM,
// TTS and STT resolves to at most one provider at request time. Available
// flags are owned by the server and overwritten on every capability
// snapshot; Enabled flags and parameters are owned by the user.
type Option struct {
	LLM LLMOption `json:"llm"`
	TTS TTSOption `json:"tts"`
	STT STTOption `json:"stt"`
}

// Switchable is the server/user availability pair every provider carries.
type Switchable struct {
	Available bool `json:"available"`
	Enabled   bool `json:"enabled"`
}

// LLMOption configures completion providers.
type LLMOption struct {
	ChatGPT ChatGPTOption `json:"chatGPT"`
	Claude  ClaudeOption  `json:"claude"`

	// MaxHistory bounds how many past messages accompany a request.
	// Zero sends none; MaxHistoryUnlimited sends everything.
	MaxHistory int `json:"maxHistory"`
}

// ChatGPTOption configures the ChatGPT provider.
// Model must not be empty for the provider to be included in a request.
type ChatGPTOption struct {
	Switchable
	Model            string  `json:"model,omitempty"`
	MaxTokens        int     `json:"maxTokens"`
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"topP"`
	PresencePenalty  float64 `json:"presencePenalty"`
	FrequencyPenalty float64 `json:"frequencyPenalty"`
}

// ClaudeOption configures the Claude provider. The server does not accept
// claude completion parameters yet, so it is a bare switch.
type ClaudeOption struct {
	Switchable
}

// TTSOption configures speech-synthesis providers.
type TTSOption struct {
	Google     GoogleTTSOption     `json:"google"`
	Elevenlabs ElevenlabsTTSOption `json:"elevenlabs"`
}

// GoogleTTSOption configures Google TTS.
// If VoiceID is set, LanguageCode and Gender are not used by the server.
type GoogleTTSOption struct {
	Switchable
	VoiceID      string              `json:"voiceId,omitempty"`
	LanguageCode string              `json:"languageCode"`
	Gender       api.GoogleTTSGender `json:"gender"`
	SpeakingRate float64             `json:"speakingRate"`
	Pitch        float64             `json:"pitch"`
	VolumeGainDb float64             `json:"volumeGainDb"`
}

// ElevenlabsTTSOption configures elevenlabs TTS.
// VoiceID must not be empty for the provider to be included in a request.
type ElevenlabsTTSOption struct {
	Switchable
	VoiceID   string  `json:"voiceId,omitempty"`
	Stability float64 `json:"stability"`
	Clarity   float64 `json:"clarity"`
}

// STTOption configures transcription providers.
type STTOption struct {
	Whisper WhisperOption `json:"whisper"`
}

// WhisperOption configures whisper STT.
// Model must not be empty for the provider to be included in a request.
type WhisperOption struct {
	Switchable
	Model string `json:"model,omitempty"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultOption returns the option a fresh chat starts with. Every provider
// starts enabled but unavailable; availability arrives with the first
// capability snapshot.
func DefaultOption() Option {
	return Option{
		LLM: LLMOption{
			ChatGPT: ChatGPTOption{
				Switchable:       Switchable{Enabled: true},
				MaxTokens:        2000,
				Temperature:      1.0,
				TopP:             1.0,
				PresencePenalty:  0,
				FrequencyPenalty: 0,
			},
			Claude: ClaudeOption{
				Switchable: Switchable{Enabled: true},
			},
			MaxHistory: 10,
		},
		TTS: TTSOption{
			Google: GoogleTTSOption{
				Switchable:   Switchable{Enabled: true},
				LanguageCode: "en-US",
				Gender:       api.GoogleTTSGenderFemale,
				SpeakingRate: 1.0,
				Pitch:        0,
				VolumeGainDb: 0,
			},
			Elevenlabs: ElevenlabsTTSOption{
				Switchable: Switchable{Enabled: true},
				Stability:  0.5,
				Clarity:    0.75,
			},
		},
		STT: STTOption{
			Whisper: WhisperOption{
				Switchable: Switchable{Enabled: true},
			},
		},
	}
}

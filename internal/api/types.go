// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

// =============================================================================
// OUTBOUND REQUEST TYPES
// =============================================================================

// LLMMessage is a single turn in the history attached to a request.
type LLMMessage struct {
	Role    string `json:"role"` // "user", "assistant", or "system"
	Content string `json:"content"`
}

// TalkRequest is the payload shared by PostChat and PostAudioChat.
//
// TicketID is a client-generated idempotency token; the server may use it
// to dedupe retries of the same user action.
type TalkRequest struct {
	ChatID     string       `json:"chatId"`
	TicketID   string       `json:"ticketId"`
	Ms         []LLMMessage `json:"ms"`
	TalkOption TalkOption   `json:"talkOption"`
}

// TalkOption selects which providers participate in handling a request.
//
// Each sub-option carries exactly one provider's full parameter set. A nil
// sub-option means the corresponding capability is not requested at all.
type TalkOption struct {
	ToSpeech           bool `json:"toSpeech"`
	ToText             bool `json:"toText"`
	Completion         bool `json:"completion"`
	CompletionToSpeech bool `json:"completionToSpeech"`

	LLMOption *LLMOption `json:"llmOption,omitempty"`
	TTSOption *TTSOption `json:"ttsOption,omitempty"`
	STTOption *STTOption `json:"sttOption,omitempty"`
}

// LLMOption holds the single selected completion provider.
type LLMOption struct {
	ChatGPT *ChatGPTOption `json:"chatGPT,omitempty"`
}

// ChatGPTOption is the wire shape of the ChatGPT parameter set.
type ChatGPTOption struct {
	Model            string  `json:"model"`
	MaxTokens        int     `json:"maxTokens"`
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"topP"`
	PresencePenalty  float64 `json:"presencePenalty"`
	FrequencyPenalty float64 `json:"frequencyPenalty"`
}

// TTSOption holds the single selected speech-synthesis provider.
type TTSOption struct {
	Google     *GoogleTTSOption     `json:"google,omitempty"`
	Elevenlabs *ElevenlabsTTSOption `json:"elevenlabs,omitempty"`
}

// GoogleTTSGender mirrors Google's SsmlVoiceGender enum.
type GoogleTTSGender int

const (
	GoogleTTSGenderUnspecified GoogleTTSGender = 0
	GoogleTTSGenderMale        GoogleTTSGender = 1
	GoogleTTSGenderFemale      GoogleTTSGender = 2
	GoogleTTSGenderNeutral     GoogleTTSGender = 3
)

// GoogleTTSOption is the wire shape of the Google TTS parameter set.
// If VoiceID is provided, LanguageCode and Gender are not used.
type GoogleTTSOption struct {
	VoiceID      string          `json:"voiceId,omitempty"`
	LanguageCode string          `json:"languageCode"`
	Gender       GoogleTTSGender `json:"gender"`
	SpeakingRate float64         `json:"speakingRate"`
	Pitch        float64         `json:"pitch"`
	VolumeGainDb float64         `json:"volumeGainDb"`
}

// ElevenlabsTTSOption is the wire shape of the elevenlabs parameter set.
type ElevenlabsTTSOption struct {
	VoiceID   string  `json:"voiceId"`
	Stability float64 `json:"stability"`
	Clarity   float64 `json:"clarity"`
}

// STTOption holds the single selected transcription provider.
type STTOption struct {
	Whisper *WhisperOption `json:"whisper,omitempty"`
}

// WhisperOption is the wire shape of the whisper parameter set.
type WhisperOption struct {
	Model string `json:"model"`
}

// =============================================================================
// RESPONSE TYPE
// =============================================================================

// Response reports the server's verdict on a send.
//
// A non-2xx status is carried here rather than as an error; transport-level
// failures (DNS, refused connection, timeout) surface as errors instead.
type Response struct {
	Status     int
	StatusText string
}

// OK reports whether the status is in the inclusive 200-299 success range.
func (r Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// =============================================================================
// INBOUND CAPABILITY TYPES
// =============================================================================

// ServerAbility is the capability snapshot pushed by the server. It tells
// the client what providers, models, languages and voices are currently
// usable, so per-chat options can be reconciled against reality.
type ServerAbility struct {
	LLM LLMAbility `json:"llm"`
	TTS TTSAbility `json:"tts"`
	STT STTAbility `json:"stt"`
}

// LLMAbility describes completion providers.
type LLMAbility struct {
	ChatGPT ChatGPTAbility `json:"chatGPT"`
}

// ChatGPTAbility lists the ChatGPT models the server can reach.
type ChatGPTAbility struct {
	Available bool     `json:"available"`
	Models    []string `json:"models"`
}

// TTSAbility describes speech-synthesis providers.
type TTSAbility struct {
	Google     GoogleTTSAbility     `json:"google"`
	Elevenlabs ElevenlabsTTSAbility `json:"elevenlabs"`
}

// GoogleTTSAbility lists the language tags Google TTS currently serves.
type GoogleTTSAbility struct {
	Available bool     `json:"available"`
	Languages []string `json:"languages"`
}

// ElevenlabsTTSAbility lists the voices available on the account.
type ElevenlabsTTSAbility struct {
	Available bool    `json:"available"`
	Voices    []Voice `json:"voices"`
}

// Voice is a named TTS voice.
type Voice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// STTAbility describes transcription providers.
type STTAbility struct {
	Whisper WhisperAbility `json:"whisper"`
}

// WhisperAbility lists the whisper models the server can run.
type WhisperAbility struct {
	Available bool     `json:"available"`
	Models    []string `json:"models"`
}

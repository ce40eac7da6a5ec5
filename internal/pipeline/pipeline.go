// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/moderato-app/talk-client/internal/ability"
	"github.com/moderato-app/talk-client/internal/api"
	"github.com/moderato-app/talk-client/internal/model"
	"github.com/moderato-app/talk-client/internal/store"
	"github.com/moderato-app/talk-client/internal/util"
	"github.com/moderato-app/talk-client/internal/window"
)

// DefaultAudioFileName is used when a recording intent carries no filename.
const DefaultAudioFileName = "audio.webm"

// =============================================================================
// SEND INTENT
// =============================================================================

// SendIntent is one queued unit of outbound work: either a text send or a
// recorded-audio send targeting a chat.
type SendIntent struct {
	// ID identifies the intent itself (diagnostics only).
	ID string

	// ChatID is the target chat.
	ChatID string

	// Text is the literal message text for a text send.
	Text string

	// Audio is the recorded payload for an audio send; nil for text sends.
	Audio []byte

	// FileName is the recording's filename hint for the multipart upload.
	FileName string

	// DurationMs is the recording length in milliseconds.
	DurationMs int64

	// TicketID is the idempotency token accompanying the request.
	TicketID string
}

// NewTextIntent builds an intent for a text send.
func NewTextIntent(chatID, text string) *SendIntent {
	return &SendIntent{
		ID:       uuid.New().String(),
		ChatID:   chatID,
		Text:     text,
		TicketID: util.RandomHash16(),
	}
}

// NewAudioIntent builds an intent for a recorded-audio send.
func NewAudioIntent(chatID string, audio []byte, fileName string, durationMs int64) *SendIntent {
	if fileName == "" {
		fileName = DefaultAudioFileName
	}
	return &SendIntent{
		ID:         uuid.New().String(),
		ChatID:     chatID,
		Audio:      audio,
		FileName:   fileName,
		DurationMs: durationMs,
		TicketID:   util.RandomHash16(),
	}
}

// IsAudio reports whether the intent carries a recording.
func (i *SendIntent) IsAudio() bool {
	return i.Audio != nil
}

// =============================================================================
// COLLABORATOR CONTRACTS
// =============================================================================

// Transport is the outbound call surface the pipeline depends on.
// Satisfied by *api.Client.
type Transport interface {
	PostChat(ctx context.Context, req api.TalkRequest) (api.Response, error)
	PostAudioChat(ctx context.Context, audio []byte, filename string, req api.TalkRequest) (api.Response, error)
}

// BlobWriter persists audio payloads. Satisfied by *blob.Store.
type BlobWriter interface {
	SetItem(ctx context.Context, key string, data []byte)
}

// =============================================================================
// PIPELINE
// =============================================================================

// Pipeline drains send intents one at a time from a global FIFO queue.
type Pipeline struct {
	chats     *store.ChatStore
	prompts   *store.PromptStore
	transport Transport
	blobs     BlobWriter

	mu    sync.Mutex
	queue []*SendIntent

	// minSpeakTime drops near-zero-length recordings before any message
	// or network call exists. Guarded by mu so a config reload can swap
	// it while the drain loop runs.
	minSpeakTime time.Duration

	// signal increments once per dequeue attempt; tests assert on it to
	// verify serialized draining.
	signal atomic.Uint64

	wake chan struct{}
	stop chan struct{}

	drainWG      sync.WaitGroup
	completionWG sync.WaitGroup
}

// New creates a pipeline. blobs may be nil when audio persistence is not
// wired (text-only deployments).
func New(chats *store.ChatStore, prompts *store.PromptStore, transport Transport,
	blobs BlobWriter, minSpeakTime time.Duration) *Pipeline {

	return &Pipeline{
		chats:        chats,
		prompts:      prompts,
		transport:    transport,
		blobs:        blobs,
		minSpeakTime: minSpeakTime,
		wake:         make(chan struct{}, 1),
		stop:         make(chan struct{}),
	}
}

// Start launches the drain goroutine.
func (p *Pipeline) Start() {
	p.drainWG.Add(1)
	go p.drainLoop()
}

// Stop halts draining and waits for in-flight completions to land.
// Queued intents that were never dequeued are discarded.
func (p *Pipeline) Stop() {
	close(p.stop)
	p.drainWG.Wait()
	p.completionWG.Wait()
}

// Signal returns the current drain signal value.
func (p *Pipeline) Signal() uint64 {
	return p.signal.Load()
}

// QueueLen returns the number of intents waiting to be dequeued.
func (p *Pipeline) QueueLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// SetMinSpeakTime replaces the recording guard threshold. Intents already
// past the guard are unaffected.
func (p *Pipeline) SetMinSpeakTime(d time.Duration) {
	p.mu.Lock()
	p.minSpeakTime = d
	p.mu.Unlock()
}

// MinSpeakTime returns the current recording guard threshold.
func (p *Pipeline) MinSpeakTime() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.minSpeakTime
}

// Enqueue appends an intent to the tail of the queue and wakes the drain
// loop. The pipeline does not deduplicate: callers must not enqueue the
// same user action twice. The server dedupes retries by ticket ID.
func (p *Pipeline) Enqueue(intent *SendIntent) {
	p.mu.Lock()
	p.queue = append(p.queue, intent)
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// =============================================================================
// DRAIN LOOP
// =============================================================================

// drainLoop is level-triggered on queue non-emptiness: each wakeup drains
// everything present, one intent per signal increment, then sleeps until
// the next enqueue.
func (p *Pipeline) drainLoop() {
	defer p.drainWG.Done()

	for {
		select {
		case <-p.stop:
			return
		case <-p.wake:
		}

		for {
			select {
			case <-p.stop:
				return
			default:
			}

			intent := p.dequeue()
			if intent == nil {
				break
			}
			p.process(intent)
		}
	}
}

// dequeue removes at most one intent from the head of the queue,
// incrementing the drain signal. Returns nil when the queue is empty.
func (p *Pipeline) dequeue() *SendIntent {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.queue) == 0 {
		return nil
	}
	intent := p.queue[0]
	p.queue = p.queue[1:]
	p.signal.Add(1)
	return intent
}

// process handles one dequeued intent end-to-end (minus the asynchronous
// completion handler).
func (p *Pipeline) process(intent *SendIntent) {
	// Guard: recordings shorter than the minimum speech duration are
	// accidental; drop them before any message or network call exists.
	minSpeak := p.MinSpeakTime()
	if intent.IsAudio() && time.Duration(intent.DurationMs)*time.Millisecond < minSpeak {
		log.Printf("audio is shorter than %v, dropping intent %s", minSpeak, intent.ID)
		return
	}

	// Guard: the chat may have been deleted between enqueue and dequeue.
	chat, ok := p.chats.Snapshot(intent.ChatID)
	if !ok {
		log.Printf("WARNING: chat does not exist any more, chatId: %s", intent.ChatID)
		return
	}

	// The snapshot freezes the merged capability+option state for this
	// request; a capability push arriving mid-assembly cannot corrupt it.
	talkOption := ability.ToTalkOption(chat.Option)

	prompt := p.resolvePrompt(chat.PromptID)
	messages := []api.LLMMessage{window.SystemMessage(chat, prompt)}
	hist := window.History(chat, window.MaxHistory(chat.Option))
	messages = append(messages, hist...)

	msg := model.NewSending()
	msg.Context.AttachedCount = len(hist)
	if prompt != nil {
		msg.Context.PromptCount = 1
	}
	msg.Context.Provider, msg.Context.Model = ability.Provider(talkOption)

	req := api.TalkRequest{
		ChatID:     intent.ChatID,
		TicketID:   intent.TicketID,
		TalkOption: talkOption,
	}

	if intent.IsAudio() {
		// The blob key doubles as the message's audio reference, set
		// before the message is published and immutable afterwards.
		audioID := util.RandomHash16()
		msg.AudioID = audioID
		req.Ms = messages

		log.Printf("sending audio chat, messageId: %s", msg.ID)
		p.chats.AppendMessage(intent.ChatID, msg)
		p.dispatch(msg, intent.ChatID, func(ctx context.Context) (api.Response, error) {
			return p.transport.PostAudioChat(ctx, intent.Audio, intent.FileName, req)
		})

		// Persist the recording regardless of network outcome so playback
		// and download survive a failed or still-pending send.
		if p.blobs != nil {
			p.blobs.SetItem(context.Background(), audioID, intent.Audio)
		}
		return
	}

	msg.Content = intent.Text
	req.Ms = append(messages, api.LLMMessage{Role: model.RoleUser.String(), Content: intent.Text})

	log.Printf("sending chat, messageId: %s", msg.ID)
	p.chats.AppendMessage(intent.ChatID, msg)
	p.dispatch(msg, intent.ChatID, func(ctx context.Context) (api.Response, error) {
		return p.transport.PostChat(ctx, req)
	})
}

// dispatch fires the network call asynchronously and applies the
// lifecycle transition when it completes. The transition operates on the
// message value directly: if the chat vanished mid-flight, the orphaned
// message is still updated and only the store notification is skipped.
func (p *Pipeline) dispatch(msg *model.Message, chatID string, call func(context.Context) (api.Response, error)) {
	p.completionWG.Add(1)
	go func() {
		defer p.completionWG.Done()

		resp, err := call(context.Background())
		switch {
		case err != nil:
			msg.OnError("Failed to send, reason:" + err.Error())
		case resp.OK():
			msg.OnSent()
		default:
			msg.OnError("Failed to send, reason:" + resp.StatusText)
		}

		p.chats.TouchMessages(chatID)
	}()
}

// resolvePrompt fetches the chat's linked prompt; a dangling link yields
// the default system message rather than an error.
func (p *Pipeline) resolvePrompt(promptID string) *model.Prompt {
	if promptID == "" {
		return nil
	}
	prompt, ok := p.prompts.Find(promptID)
	if !ok {
		log.Printf("ERROR: prompt not found: %s", promptID)
		return nil
	}
	return prompt
}

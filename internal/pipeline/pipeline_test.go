// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/moderato-app/talk-client/internal/ability"
	"github.com/moderato-app/talk-client/internal/api"
	"github.com/moderato-app/talk-client/internal/model"
	"github.com/moderato-app/talk-client/internal/store"
)

// fakeTransport records requests and answers them per the configured plan.
type fakeTransport struct {
	mu       sync.Mutex
	chatReqs []api.TalkRequest
	audioLen []int

	// respond, when set, controls each call's outcome; otherwise 200 OK.
	respond func(req api.TalkRequest) (api.Response, error)

	// gate, when set, is closed to release blocked calls.
	gate chan struct{}
}

func (f *fakeTransport) PostChat(_ context.Context, req api.TalkRequest) (api.Response, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	f.chatReqs = append(f.chatReqs, req)
	respond := f.respond
	f.mu.Unlock()

	if respond != nil {
		return respond(req)
	}
	return api.Response{Status: 200, StatusText: "OK"}, nil
}

func (f *fakeTransport) PostAudioChat(_ context.Context, audio []byte, _ string, req api.TalkRequest) (api.Response, error) {
	f.mu.Lock()
	f.chatReqs = append(f.chatReqs, req)
	f.audioLen = append(f.audioLen, len(audio))
	respond := f.respond
	f.mu.Unlock()

	if respond != nil {
		return respond(req)
	}
	return api.Response{Status: 200, StatusText: "OK"}, nil
}

func (f *fakeTransport) requests() []api.TalkRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.TalkRequest(nil), f.chatReqs...)
}

// fakeBlobs records persisted payloads.
type fakeBlobs struct {
	mu    sync.Mutex
	saved map[string][]byte
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{saved: make(map[string][]byte)}
}

func (f *fakeBlobs) SetItem(_ context.Context, key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[key] = data
}

func (f *fakeBlobs) get(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.saved[key]
	return data, ok
}

func newTestPipeline(t *testing.T, transport Transport, blobs BlobWriter) (*Pipeline, *store.ChatStore, *model.Chat) {
	t.Helper()
	chats := store.NewChatStore(nil)
	prompts := store.NewPromptStore()
	chat := chats.NewChat("test")

	p := New(chats, prompts, transport, blobs, time.Second)
	p.Start()
	t.Cleanup(p.Stop)
	return p, chats, chat
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestTextSendHappyPath(t *testing.T) {
	transport := &fakeTransport{}
	p, chats, chat := newTestPipeline(t, transport, nil)

	p.Enqueue(NewTextIntent(chat.ID, "hello"))

	waitFor(t, func() bool {
		snap, ok := chats.Snapshot(chat.ID)
		return ok && len(snap.Messages) == 1 && snap.Messages[0].Status == model.StatusSent
	})

	snap, _ := chats.Snapshot(chat.ID)
	msg := snap.Messages[0]
	require.Equal(t, "hello", msg.Content)
	require.Equal(t, model.RoleUser, msg.Role)
	require.Empty(t, msg.ErrorMessage)

	reqs := transport.requests()
	require.Len(t, reqs, 1)
	require.Equal(t, chat.ID, reqs[0].ChatID)
	require.Len(t, reqs[0].TicketID, 16)
	// system turn + live text as the final user turn
	require.GreaterOrEqual(t, len(reqs[0].Ms), 2)
	last := reqs[0].Ms[len(reqs[0].Ms)-1]
	require.Equal(t, "user", last.Role)
	require.Equal(t, "hello", last.Content)
	require.Equal(t, "system", reqs[0].Ms[0].Role)
}

func TestFailedSendRecordsReason(t *testing.T) {
	transport := &fakeTransport{
		respond: func(api.TalkRequest) (api.Response, error) {
			return api.Response{}, errors.New("connection refused")
		},
	}
	p, chats, chat := newTestPipeline(t, transport, nil)

	p.Enqueue(NewTextIntent(chat.ID, "doomed"))

	waitFor(t, func() bool {
		snap, _ := chats.Snapshot(chat.ID)
		return len(snap.Messages) == 1 && snap.Messages[0].Status == model.StatusError
	})

	snap, _ := chats.Snapshot(chat.ID)
	require.Equal(t, "Failed to send, reason:connection refused", snap.Messages[0].ErrorMessage)
}

func TestNon2xxRecordsStatusText(t *testing.T) {
	transport := &fakeTransport{
		respond: func(api.TalkRequest) (api.Response, error) {
			return api.Response{Status: 401, StatusText: "Unauthorized"}, nil
		},
	}
	p, chats, chat := newTestPipeline(t, transport, nil)

	p.Enqueue(NewTextIntent(chat.ID, "nope"))

	waitFor(t, func() bool {
		snap, _ := chats.Snapshot(chat.ID)
		return len(snap.Messages) == 1 && snap.Messages[0].Status == model.StatusError
	})

	snap, _ := chats.Snapshot(chat.ID)
	require.Equal(t, "Failed to send, reason:Unauthorized", snap.Messages[0].ErrorMessage)
}

// Message creation follows enqueue order even when network completions
// resolve out of order.
func TestFIFOMessageCreation(t *testing.T) {
	transport := &fakeTransport{}
	p, chats, chat := newTestPipeline(t, transport, nil)

	for _, text := range []string{"one", "two", "three"} {
		p.Enqueue(NewTextIntent(chat.ID, text))
	}

	waitFor(t, func() bool {
		snap, _ := chats.Snapshot(chat.ID)
		if len(snap.Messages) != 3 {
			return false
		}
		for _, m := range snap.Messages {
			if m.Status != model.StatusSent {
				return false
			}
		}
		return true
	})

	snap, _ := chats.Snapshot(chat.ID)
	require.Equal(t, "one", snap.Messages[0].Content)
	require.Equal(t, "two", snap.Messages[1].Content)
	require.Equal(t, "three", snap.Messages[2].Content)
	require.EqualValues(t, 3, p.Signal())
}

// A slow network call must not stall the queue: messages for later
// intents appear while the first call is still in flight.
func TestCompletionDoesNotBlockDrain(t *testing.T) {
	gate := make(chan struct{})
	transport := &fakeTransport{gate: gate}
	p, chats, chat := newTestPipeline(t, transport, nil)

	p.Enqueue(NewTextIntent(chat.ID, "slow"))
	p.Enqueue(NewTextIntent(chat.ID, "fast"))

	waitFor(t, func() bool {
		snap, _ := chats.Snapshot(chat.ID)
		return len(snap.Messages) == 2
	})

	snap, _ := chats.Snapshot(chat.ID)
	require.Equal(t, model.StatusSending, snap.Messages[0].Status)
	require.Equal(t, model.StatusSending, snap.Messages[1].Status)

	close(gate)
	waitFor(t, func() bool {
		snap, _ := chats.Snapshot(chat.ID)
		return snap.Messages[0].Status == model.StatusSent &&
			snap.Messages[1].Status == model.StatusSent
	})
}

func TestShortAudioDroppedSilently(t *testing.T) {
	transport := &fakeTransport{}
	blobs := newFakeBlobs()
	p, chats, chat := newTestPipeline(t, transport, blobs)

	p.Enqueue(NewAudioIntent(chat.ID, []byte{1, 2, 3}, "", 200))
	// A follow-up text intent proves the short one was consumed.
	p.Enqueue(NewTextIntent(chat.ID, "after"))

	waitFor(t, func() bool {
		snap, _ := chats.Snapshot(chat.ID)
		return len(snap.Messages) == 1 && snap.Messages[0].Status == model.StatusSent
	})

	snap, _ := chats.Snapshot(chat.ID)
	require.Equal(t, "after", snap.Messages[0].Content)
	require.Empty(t, blobs.saved, "dropped recordings must not be persisted")
	require.EqualValues(t, 2, p.Signal(), "a dropped intent still consumes a drain cycle")
}

func TestAudioSendPersistsBlob(t *testing.T) {
	audio := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	transport := &fakeTransport{
		respond: func(api.TalkRequest) (api.Response, error) {
			return api.Response{}, errors.New("network down")
		},
	}
	blobs := newFakeBlobs()
	p, chats, chat := newTestPipeline(t, transport, blobs)

	p.Enqueue(NewAudioIntent(chat.ID, audio, "clip.webm", 5000))

	waitFor(t, func() bool {
		snap, _ := chats.Snapshot(chat.ID)
		return len(snap.Messages) == 1 && snap.Messages[0].Status == model.StatusError
	})

	snap, _ := chats.Snapshot(chat.ID)
	msg := snap.Messages[0]
	require.Len(t, msg.AudioID, 16)

	// Blob persisted under the message's key despite the failed send.
	saved, ok := blobs.get(msg.AudioID)
	require.True(t, ok)
	require.Equal(t, audio, saved)
}

func TestIntentForDeletedChatSkipped(t *testing.T) {
	transport := &fakeTransport{}
	p, chats, chat := newTestPipeline(t, transport, nil)

	other := chats.NewChat("survivor")
	require.True(t, chats.DeleteChat(context.Background(), chat.ID))

	p.Enqueue(NewTextIntent(chat.ID, "orphaned"))
	p.Enqueue(NewTextIntent(other.ID, "delivered"))

	waitFor(t, func() bool {
		snap, _ := chats.Snapshot(other.ID)
		return len(snap.Messages) == 1 && snap.Messages[0].Status == model.StatusSent
	})

	require.Len(t, transport.requests(), 1)
	require.EqualValues(t, 2, p.Signal())
}

func TestHistoryWindowInRequest(t *testing.T) {
	transport := &fakeTransport{}
	p, chats, chat := newTestPipeline(t, transport, nil)

	for i := 0; i < 5; i++ {
		msg := model.NewMessage(model.RoleAssistant, "past", model.StatusReceived)
		chats.AppendMessage(chat.ID, msg)
	}
	chats.UpdateOption(chat.ID, func(o *ability.Option) { o.LLM.MaxHistory = 2 })

	p.Enqueue(NewTextIntent(chat.ID, "now"))

	waitFor(t, func() bool { return len(transport.requests()) == 1 })

	req := transport.requests()[0]
	// system + 2 history + live text
	require.Len(t, req.Ms, 4)
}

// A reloaded recording guard applies to intents dequeued afterwards: the
// same recording that was dropped under the boot-time threshold goes
// through once the threshold is lowered.
func TestSetMinSpeakTimeAppliesAtRuntime(t *testing.T) {
	transport := &fakeTransport{}
	blobs := newFakeBlobs()
	p, chats, chat := newTestPipeline(t, transport, blobs)

	p.Enqueue(NewAudioIntent(chat.ID, []byte{1, 2, 3}, "", 200))
	p.Enqueue(NewTextIntent(chat.ID, "marker"))

	waitFor(t, func() bool {
		snap, _ := chats.Snapshot(chat.ID)
		return len(snap.Messages) == 1 && snap.Messages[0].Status == model.StatusSent
	})

	p.SetMinSpeakTime(100 * time.Millisecond)
	require.Equal(t, 100*time.Millisecond, p.MinSpeakTime())

	p.Enqueue(NewAudioIntent(chat.ID, []byte{1, 2, 3}, "", 200))

	waitFor(t, func() bool {
		snap, _ := chats.Snapshot(chat.ID)
		return len(snap.Messages) == 2
	})
	snap, _ := chats.Snapshot(chat.ID)
	require.Len(t, snap.Messages[1].AudioID, 16)
}

// The response context counts the prompt only when one is attached.
func TestContextRecordsPromptAttachment(t *testing.T) {
	transport := &fakeTransport{}
	chats := store.NewChatStore(nil)
	prompts := store.NewPromptStore()
	chat := chats.NewChat("test")

	prompt := prompts.Add("terse", "Be terse.")
	chats.SetPromptID(chat.ID, prompt.ID)

	p := New(chats, prompts, transport, nil, time.Second)
	p.Start()
	t.Cleanup(p.Stop)

	p.Enqueue(NewTextIntent(chat.ID, "hi"))

	waitFor(t, func() bool {
		snap, _ := chats.Snapshot(chat.ID)
		return len(snap.Messages) == 1 && snap.Messages[0].Status == model.StatusSent
	})

	snap, _ := chats.Snapshot(chat.ID)
	require.Equal(t, 1, snap.Messages[0].Context.PromptCount)
	require.Equal(t, "Be terse.", transport.requests()[0].Ms[0].Content)
}

func TestContextWithoutPromptCountsZero(t *testing.T) {
	transport := &fakeTransport{}
	p, chats, chat := newTestPipeline(t, transport, nil)

	p.Enqueue(NewTextIntent(chat.ID, "hi"))

	waitFor(t, func() bool {
		snap, _ := chats.Snapshot(chat.ID)
		return len(snap.Messages) == 1 && snap.Messages[0].Status == model.StatusSent
	})

	snap, _ := chats.Snapshot(chat.ID)
	require.Equal(t, 0, snap.Messages[0].Context.PromptCount)
}

func TestStopWaitsForCompletions(t *testing.T) {
	transport := &fakeTransport{}
	chats := store.NewChatStore(nil)
	prompts := store.NewPromptStore()
	chat := chats.NewChat("test")

	p := New(chats, prompts, transport, nil, 0)
	p.Start()
	p.Enqueue(NewTextIntent(chat.ID, "bye"))

	waitFor(t, func() bool { return len(transport.requests()) == 1 })
	p.Stop()

	snap, _ := chats.Snapshot(chat.ID)
	require.Equal(t, model.StatusSent, snap.Messages[0].Status)
}

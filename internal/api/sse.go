// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bufio"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// SSE CONSTANTS
// =============================================================================

// MaxEventSize is the maximum allowed size for a single SSE data line (64KB).
const MaxEventSize = 64 * 1024

// abilityEvent is the event name the server uses for capability snapshots.
const abilityEvent = "ability"

// sharedStreamingClient has no timeout; stream lifetime is context-controlled.
var sharedStreamingClient = &http.Client{
	Transport: sharedHTTPClient.Transport,
}

// =============================================================================
// ABILITY STREAM
// =============================================================================

// AbilityStream subscribes to the server's SSE channel and delivers
// capability snapshots to a callback as they arrive.
//
// The stream reconnects on failure for as long as its context lives.
// Reconnect attempts are paced by a token bucket so a flapping server
// cannot drive a tight retry loop.
type AbilityStream struct {
	client    *Client
	onUpdate  func(ServerAbility)
	reconnect *rate.Limiter
}

// NewAbilityStream creates a stream delivering snapshots to onUpdate.
// onUpdate is invoked from the stream's goroutine; the callback must hand
// off to the owning store rather than block.
func NewAbilityStream(client *Client, retryInterval time.Duration, onUpdate func(ServerAbility)) *AbilityStream {
	if retryInterval <= 0 {
		retryInterval = 5 * time.Second
	}
	return &AbilityStream{
		client:    client,
		onUpdate:  onUpdate,
		reconnect: rate.NewLimiter(rate.Every(retryInterval), 1),
	}
}

// Run connects and consumes the stream until ctx is canceled.
func (s *AbilityStream) Run(ctx context.Context) {
	for {
		if err := s.reconnect.Wait(ctx); err != nil {
			return
		}

		if err := s.consume(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("WARNING: ability stream disconnected: %v", err)
		}
	}
}

// consume opens one SSE connection and dispatches its events.
func (s *AbilityStream) consume(ctx context.Context) error {
	endpoint, err := s.client.endpoint(eventsPath)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	s.client.authorize(req)

	resp, err := sharedStreamingClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &streamError{status: resp.StatusCode}
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 4096), MaxEventSize)

	var event string
	var data strings.Builder

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "":
			// Blank line terminates one event.
			s.dispatch(event, data.String())
			event = ""
			data.Reset()
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		case strings.HasPrefix(line, ":"):
			// Comment / keep-alive, ignore.
		}
	}

	return scanner.Err()
}

// dispatch decodes and delivers one completed event.
func (s *AbilityStream) dispatch(event, data string) {
	if event != abilityEvent || data == "" {
		return
	}

	var ability ServerAbility
	if err := json.Unmarshal([]byte(data), &ability); err != nil {
		log.Printf("WARNING: dropping malformed ability event: %v", err)
		return
	}

	s.onUpdate(ability)
}

// streamError reports a non-OK response on the SSE endpoint.
type streamError struct {
	status int
}

func (e *streamError) Error() string {
	return "ability stream rejected with HTTP " + strconv.Itoa(e.status)
}

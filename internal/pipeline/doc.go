// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pipeline turns send intents into network calls.
//
// Intents enter a single global FIFO queue shared by all chats. One drain
// goroutine pulls them off the head, one at a time, incrementing a
// monotonic drain signal per dequeue, so message creation order always
// matches enqueue order, and no two messages are created without a signal
// increment in between. The network call itself is dispatched
// asynchronously once the message exists; completions may therefore
// resolve out of order, which is fine: only creation order is guaranteed.
//
// There is no retry and no cancellation here. A failed send stays visible
// as an error-state message; the user composes a new intent to retry.
package pipeline

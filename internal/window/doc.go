// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package window computes the bounded slice of chat history that
// accompanies an outbound request.
//
// History takes the last maxHistory messages; the chat's prompt (or a
// default system instruction) is prepended and does not count against
// the bound. Attached additionally appends the live input buffer as a
// synthetic user turn; that variant exists purely for previewing what
// a send would transmit; the pipeline builds the real user turn from the
// intent itself.
//
// Watcher keeps a preview current by observing every input the
// computation depends on: the history bound, the message list, the
// prompt link and content, and the input buffer.
package window

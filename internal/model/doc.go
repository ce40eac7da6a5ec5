// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chats, messages and prompts.
//
// The message lifecycle is a small state machine: NewSending creates a
// message in StatusSending, OnSent and OnError move it to its terminal
// state. The lifecycle methods operate on the message value alone and
// never resolve the owning chat, so a completion arriving after the chat
// was deleted mutates only the orphaned value and cannot fail.
package model

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store owns the client's mutable state: chats and prompts.
//
// Stores are constructed once at startup and passed by reference to the
// components that need them; there are no ambient singletons. Every
// mutation goes through a store method, and each method notifies its
// subscribers synchronously after the mutation completes, so an observer
// never sees a half-applied change and never misses one.
//
// Subscriptions are keyed: a subscriber registers interest in one key
// (the chat list, a chat's messages, its input buffer, its prompt link,
// its option, or the prompt collection) and receives a callback for
// mutations under that key only.
package store

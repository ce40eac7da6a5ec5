// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export provides chat export and import functionality.
//
// Single chats can be exported to JSON or Markdown; the whole client
// state (chats and prompts) round-trips through an Archive. Exports
// carry audio references but never the audio payloads themselves; those
// stay in the blob store.
package export

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ability reconciles user-chosen provider options with the
// capabilities the server currently advertises.
//
// Each chat owns an Option describing what the user wants (enabled
// providers, chosen models and voices, tuning parameters). The server
// pushes ServerAbility snapshots describing what is actually available.
// Adjust merges a snapshot into an Option using the pick-one rule, and
// ToTalkOption assembles the request-time option from the merged state:
// exactly one LLM, at most one TTS (google before elevenlabs), at most
// one STT.
package ability

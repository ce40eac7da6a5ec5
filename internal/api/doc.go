// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP transport to the talk server.
//
// Two outbound calls exist: PostChat (JSON) and PostAudioChat (multipart
// with the recorded audio payload). Both carry the same TalkRequest shape
// and report the server's verdict as a Response rather than an error, so
// the send pipeline can distinguish a rejected request from a transport
// failure.
//
// The package also owns the inbound capability channel: AbilityStream
// subscribes to the server's SSE endpoint and delivers ServerAbility
// snapshots describing which providers, models and voices are currently
// available.
package api

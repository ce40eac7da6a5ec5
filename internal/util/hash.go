// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the talk client.
package util

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomHash16 returns a 16-character hexadecimal identifier.
//
// These identifiers are used for request tickets and audio blob keys.
// The server treats ticket identifiers as idempotency tokens, so collisions
// must be vanishingly unlikely; 8 bytes of crypto/rand entropy is plenty for
// a single client's lifetime.
func RandomHash16() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

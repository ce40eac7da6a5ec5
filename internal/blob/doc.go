// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package blob persists audio payloads under opaque generated keys.
//
// The store is a single SQLite table. Its contract is deliberately loose:
// writes and reads never propagate failures to callers (they are logged
// for the operator instead), and a missing key is an expected state, not
// an error. Chat exports omit binary payloads, so after an import every
// referenced blob is legitimately absent.
package blob

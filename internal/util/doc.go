// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the talk client.
//
// This package contains common helper functions used throughout the client
// for identifier generation, rate limiting, and file operations.
//
// # Key Functions
//
// Identifiers:
//   - RandomHash16: 16-character hex identifiers for tickets and audio blobs
//
// Rate Limiting:
//   - Debouncer: trailing/leading-edge call coalescing
//   - Throttler: token-bucket call limiting
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
package util

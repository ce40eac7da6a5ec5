// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management
// for the talk client.
//
// Configuration is TOML with sensible defaults, environment variable
// overrides, and validation. The file lives at ~/.talk/config.toml and
// can be watched for changes at runtime.
package config

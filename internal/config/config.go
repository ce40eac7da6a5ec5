// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/moderato-app/talk-client/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete talk client configuration.
type Config struct {
	Version string `toml:"version"`

	// Server configuration (backend endpoint and credentials)
	Server ServerConfig `toml:"server"`

	// Audio configuration (recording guards and blob persistence)
	Audio AudioConfig `toml:"audio"`

	// Chat configuration (history windowing)
	Chat ChatConfig `toml:"chat"`
}

// ServerConfig contains backend endpoint configuration.
type ServerConfig struct {
	// URL is the base URL of the talk backend, e.g. "https://talk.example.com"
	URL string `toml:"url"`
	// APIKey authenticates every request; sent as a bearer token
	APIKey string `toml:"api_key"`
	// RequestTimeoutSecs bounds a single chat request end to end
	RequestTimeoutSecs int `toml:"request_timeout_secs"`
	// SSERetrySecs is the pause between capability-stream reconnect attempts
	SSERetrySecs int `toml:"sse_retry_secs"`
}

// AudioConfig contains recording and blob persistence configuration.
type AudioConfig struct {
	// MinSpeakTimeMillis is the minimum recording length worth sending;
	// shorter recordings are treated as accidental taps and dropped
	MinSpeakTimeMillis int64 `toml:"min_speak_time_millis"`
	// BlobDBPath is the audio blob database location (empty = default
	// ~/.talk/blobs.db)
	BlobDBPath string `toml:"blob_db_path"`
}

// ChatConfig contains history windowing configuration.
type ChatConfig struct {
	// MaxHistory is the default history bound for new chats; -1 means
	// unlimited
	MaxHistory int `toml:"max_history"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Server: ServerConfig{
			URL:                "",
			APIKey:             "",
			RequestTimeoutSecs: 60,
			SSERetrySecs:       5,
		},

		Audio: AudioConfig{
			MinSpeakTimeMillis: 1000,
			BlobDBPath:         "",
		},

		Chat: ChatConfig{
			MaxHistory: 10,
		},
	}
}

// RequestTimeout returns the chat request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSecs) * time.Second
}

// SSERetryInterval returns the capability-stream reconnect pause.
func (c *Config) SSERetryInterval() time.Duration {
	return time.Duration(c.Server.SSERetrySecs) * time.Second
}

// MinSpeakTime returns the minimum recording length as a duration.
func (c *Config) MinSpeakTime() time.Duration {
	return time.Duration(c.Audio.MinSpeakTimeMillis) * time.Millisecond
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the talk configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".talk"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ResolveBlobDBPath resolves the audio blob database location, falling
// back to the default inside the config directory.
func (c *Config) ResolveBlobDBPath() (string, error) {
	if c.Audio.BlobDBPath != "" {
		return c.Audio.BlobDBPath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "blobs.db"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on the config file.
// The file holds an API key, so anything wider than 0600 gets tightened.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file, falling back to defaults
// when the file does not exist. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file path with full
// validation. A missing file is not an error: defaults apply.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, statErr := os.Stat(path); statErr == nil {
		if err := ensureSecurePermissions(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
		}
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
// The write is atomic so a crash mid-save cannot corrupt the file.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# talk client configuration file\n")
	buf.WriteString("# edit with care\n")
	buf.WriteString("\n")

	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(buf.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Server.URL != "" {
		u, err := url.Parse(c.Server.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "server.url",
				Message: fmt.Sprintf("invalid URL '%s'", c.Server.URL),
			})
		}
	}

	if c.Server.RequestTimeoutSecs < 1 {
		errs = append(errs, ValidationError{
			Field:   "server.request_timeout_secs",
			Message: fmt.Sprintf("must be at least 1, got %d", c.Server.RequestTimeoutSecs),
		})
	}

	if c.Server.SSERetrySecs < 1 {
		errs = append(errs, ValidationError{
			Field:   "server.sse_retry_secs",
			Message: fmt.Sprintf("must be at least 1, got %d", c.Server.SSERetrySecs),
		})
	}

	if c.Audio.MinSpeakTimeMillis < 0 {
		errs = append(errs, ValidationError{
			Field:   "audio.min_speak_time_millis",
			Message: "must be non-negative",
		})
	}

	if c.Chat.MaxHistory < -1 {
		errs = append(errs, ValidationError{
			Field:   "chat.max_history",
			Message: fmt.Sprintf("must be -1 (unlimited) or non-negative, got %d", c.Chat.MaxHistory),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills fields whose zero value is never valid. Fields where
// zero is meaningful (min_speak_time_millis disables the recording guard,
// max_history sends no history) are left alone: LoadFromPath decodes on
// top of Default(), so a missing key already carries the default and an
// explicit 0 stays 0.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Server.RequestTimeoutSecs == 0 {
		c.Server.RequestTimeoutSecs = defaults.Server.RequestTimeoutSecs
	}
	if c.Server.SSERetrySecs == 0 {
		c.Server.SSERetrySecs = defaults.Server.SSERetrySecs
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - TALK_SERVER_URL: overrides server.url
//   - TALK_API_KEY: overrides server.api_key
//   - TALK_BLOB_DB: overrides audio.blob_db_path
func (c *Config) ApplyEnvOverrides() {
	if serverURL := os.Getenv("TALK_SERVER_URL"); serverURL != "" {
		c.Server.URL = serverURL
	}
	if key := os.Getenv("TALK_API_KEY"); key != "" {
		c.Server.APIKey = key
	}
	if dbPath := os.Getenv("TALK_BLOB_DB"); dbPath != "" {
		c.Audio.BlobDBPath = dbPath
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a string representation of the config for debugging.
// The API key is redacted so the output is safe to log.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Server.APIKey != "" {
		safe.Server.APIKey = "[REDACTED]"
	}

	var buf strings.Builder
	_ = toml.NewEncoder(&buf).Encode(safe)
	return buf.String()
}

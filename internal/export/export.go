// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/moderato-app/talk-client/internal/model"
	"github.com/moderato-app/talk-client/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for chat exporters.
type Exporter interface {
	// Export converts a chat to the target format and returns the content.
	Export(chat *model.Chat) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".md").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files will be saved.
	// Default: current working directory
	OutputDir string

	// IncludeTimestamps includes per-message timestamps.
	IncludeTimestamps bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeTimestamps: true,
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile exports a chat to a file using the specified exporter.
// Returns the output file path or an error.
func ExportToFile(chat *model.Chat, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(chat)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("chat_%s_%s%s",
		sanitizeFilename(chat.Name),
		timestamp,
		exporter.FileExtension(),
	)

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	outputPath := filepath.Join(opts.OutputDir, filename)
	if err := util.AtomicWriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return outputPath, nil
}

// ExportJSON exports a chat to JSON format.
func ExportJSON(chat *model.Chat, opts *Options) (string, error) {
	return ExportToFile(chat, NewJSONExporter(opts), opts)
}

// ExportMarkdown exports a chat to Markdown format.
func ExportMarkdown(chat *model.Chat, opts *Options) (string, error) {
	return ExportToFile(chat, NewMarkdownExporter(opts), opts)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	maxLen := 50
	runes := []rune(s)
	if len(runes) > maxLen {
		s = string(runes[:maxLen])
	}

	// Replace problematic characters (Windows and Unix)
	replacer := map[rune]rune{
		'/':  '-',
		'\\': '-',
		':':  '-',
		'*':  '-',
		'?':  '-',
		'"':  '-',
		'<':  '-',
		'>':  '-',
		'|':  '-',
		' ':  '_',
		'\t': '_',
		'\n': '_',
		'\r': '_',
	}

	result := []rune{}
	for _, r := range s {
		if replacement, found := replacer[r]; found {
			result = append(result, replacement)
		} else if r < 32 || r == 127 {
			result = append(result, '-')
		} else {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return "chat"
	}

	return string(result)
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

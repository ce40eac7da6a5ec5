// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"

	"github.com/moderato-app/talk-client/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports chats to JSON format.
// NOTE: JSON exports always include the complete chat data structure and
// do not respect filtering options. This ensures the exported JSON is a
// faithful representation of the chat that can be re-imported. Audio
// payloads are not part of the chat structure (messages carry only blob
// references), so exports stay small.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export converts a chat to JSON format.
func (e *JSONExporter) Export(chat *model.Chat) ([]byte, error) {
	if chat == nil {
		return nil, fmt.Errorf("chat is nil")
	}

	return json.MarshalIndent(chat, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}

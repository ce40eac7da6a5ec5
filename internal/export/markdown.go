// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/moderato-app/talk-client/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports chats to Markdown format, one section per
// message. Failed sends are included with their error text so the
// transcript is an honest record of the conversation.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a chat to Markdown format.
func (e *MarkdownExporter) Export(chat *model.Chat) ([]byte, error) {
	if chat == nil {
		return nil, fmt.Errorf("chat is nil")
	}

	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(escapeHeading(chat.Name))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Created: %s\n\n", formatTimestamp(chat.CreatedAt)))

	for _, msg := range chat.Messages {
		sb.WriteString("## ")
		sb.WriteString(roleHeading(msg.Role))
		if e.options.IncludeTimestamps {
			sb.WriteString(fmt.Sprintf(" (%s)", formatTimestamp(msg.CreatedAt)))
		}
		sb.WriteString("\n\n")

		if msg.Content != "" {
			sb.WriteString(msg.Content)
			sb.WriteString("\n\n")
		}
		if msg.AudioID != "" {
			sb.WriteString(fmt.Sprintf("*[audio recording %s]*\n\n", msg.AudioID))
		}
		if msg.GetStatus() == model.StatusError {
			sb.WriteString(fmt.Sprintf("> send failed: %s\n\n", msg.GetError()))
		}
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// roleHeading maps a role to its transcript heading.
func roleHeading(role model.Role) string {
	switch role {
	case model.RoleUser:
		return "You"
	case model.RoleAssistant:
		return "Assistant"
	case model.RoleSystem:
		return "System"
	default:
		return string(role)
	}
}

// escapeHeading keeps chat names from breaking the document structure.
func escapeHeading(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	if s == "" {
		return "Untitled chat"
	}
	return s
}

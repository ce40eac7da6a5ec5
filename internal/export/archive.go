// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/moderato-app/talk-client/internal/model"
	"github.com/moderato-app/talk-client/internal/store"
	"github.com/moderato-app/talk-client/internal/util"
)

// ArchiveVersion identifies the archive format for forward compatibility.
const ArchiveVersion = 1

// =============================================================================
// ARCHIVE
// =============================================================================

// Archive is the full client state as a portable document: every chat and
// every prompt. Audio payloads are deliberately not included; messages
// keep their blob references and playback simply reports the audio as
// unavailable after a restore on another machine.
type Archive struct {
	Version    int             `json:"version"`
	ExportedAt time.Time       `json:"exported_at"`
	Chats      []*model.Chat   `json:"chats"`
	Prompts    []*model.Prompt `json:"prompts"`
}

// NewArchive snapshots the given stores into an archive.
func NewArchive(chats *store.ChatStore, prompts *store.PromptStore) *Archive {
	return &Archive{
		Version:    ArchiveVersion,
		ExportedAt: time.Now(),
		Chats:      chats.Chats(),
		Prompts:    prompts.Prompts(),
	}
}

// WriteFile writes the archive to path as indented JSON.
func (a *Archive) WriteFile(path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode archive: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}
	return nil
}

// ReadArchive loads an archive from path.
func ReadArchive(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}

	var archive Archive
	if err := json.Unmarshal(data, &archive); err != nil {
		return nil, fmt.Errorf("failed to decode archive: %w", err)
	}
	if archive.Version > ArchiveVersion {
		return nil, fmt.Errorf("archive version %d is newer than supported version %d",
			archive.Version, ArchiveVersion)
	}

	return &archive, nil
}

// Restore loads the archive's contents into the given stores. Existing
// entries with the same ID are replaced; everything else is left alone,
// so restoring is additive rather than destructive.
func (a *Archive) Restore(chats *store.ChatStore, prompts *store.PromptStore) {
	for _, prompt := range a.Prompts {
		prompts.Restore(prompt)
	}
	for _, chat := range a.Chats {
		chats.Restore(chat)
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package blob

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "blobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	payload := []byte{0x1A, 0x45, 0xDF, 0xA3, 0x00}
	s.SetItem(ctx, "abc123", payload)

	got, ok := s.GetItem(ctx, "abc123")
	require.True(t, ok)
	require.Equal(t, payload, got)
	require.Equal(t, 1, s.Count(ctx))
}

// A missing key is an expected state, not an error.
func TestGetAbsentKey(t *testing.T) {
	s := openTestStore(t)

	got, ok := s.GetItem(context.Background(), "never-written")
	require.False(t, ok)
	require.Nil(t, got)
}

func TestSetItemOverwrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	s.SetItem(ctx, "key", []byte("first"))
	s.SetItem(ctx, "key", []byte("second"))

	got, ok := s.GetItem(ctx, "key")
	require.True(t, ok)
	require.Equal(t, []byte("second"), got)
	require.Equal(t, 1, s.Count(ctx))
}

func TestDeleteItem(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	s.SetItem(ctx, "gone", []byte("data"))
	s.DeleteItem(ctx, "gone")

	_, ok := s.GetItem(ctx, "gone")
	require.False(t, ok)

	// Deleting an absent key must be a no-op.
	s.DeleteItem(ctx, "gone")
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blobs.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	s.SetItem(ctx, "durable", []byte("payload"))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	got, ok := s2.GetItem(ctx, "durable")
	require.True(t, ok)
	require.Equal(t, []byte("payload"), got)
}

// Failures after Close are logged, never propagated.
func TestOperationsAfterCloseDoNotPanic(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Close())

	ctx := context.Background()
	s.SetItem(ctx, "k", []byte("v"))
	_, ok := s.GetItem(ctx, "k")
	require.False(t, ok)
	s.DeleteItem(ctx, "k")
}

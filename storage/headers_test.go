// Copyright 2022-2026 The N42 Authors
// This file is part of the N42 library.

package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starknetcore/storage/felt"
)

// A freshly opened store has every marker at zero and no header present.
func TestFreshStoreHasZeroMarkersAndNoHeader(t *testing.T) {
	s := newTestStorage(t)
	tx, err := s.BeginRO()
	require.NoError(t, err)
	defer tx.Close()

	marker, err := GetHeaderMarker(tx)
	require.NoError(t, err)
	require.Equal(t, felt.BlockNumber(0), marker)

	_, found, err := GetHeader(tx, 0)
	require.NoError(t, err)
	require.False(t, found)
	t.Log("✓ fresh store starts at marker 0 with no header present")
}

func TestAppendHeaderAdvancesMarkerAndIsReadable(t *testing.T) {
	s := newTestStorage(t)
	ctx := newCtx(t)

	tx, err := s.BeginRW(ctx)
	require.NoError(t, err)
	h0 := testHeader(0)
	require.NoError(t, AppendHeader(tx, 0, h0))
	require.NoError(t, tx.Commit())

	ro, err := s.BeginRO()
	require.NoError(t, err)
	defer ro.Close()

	marker, err := GetHeaderMarker(ro)
	require.NoError(t, err)
	require.Equal(t, felt.BlockNumber(1), marker)

	got, found, err := GetHeader(ro, 0)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, h0.Hash, got.Hash)

	n, found, err := GetBlockNumberByHash(ro, h0.Hash)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, felt.BlockNumber(0), n)
	t.Log("✓ AppendHeader advances markers.Header and is readable by number and hash")
}

func TestAppendHeaderRejectsMarkerMismatch(t *testing.T) {
	s := newTestStorage(t)
	ctx := newCtx(t)

	tx, err := s.BeginRW(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	// markers.Header is 0; appending at block 1 skips block 0.
	err = AppendHeader(tx, 1, testHeader(1))
	require.Error(t, err)
	var mm *MarkerMismatchError
	require.ErrorAs(t, err, &mm)
	t.Log("✓ AppendHeader out of marker order returns MarkerMismatchError")
}

func TestAppendHeaderRejectsDuplicateHash(t *testing.T) {
	s := newTestStorage(t)
	ctx := newCtx(t)

	tx, err := s.BeginRW(ctx)
	require.NoError(t, err)
	h := testHeader(0)
	require.NoError(t, AppendHeader(tx, 0, h))
	require.NoError(t, tx.Commit())

	tx2, err := s.BeginRW(ctx)
	require.NoError(t, err)
	defer tx2.Rollback()

	// Block 1's header reuses block 0's hash.
	dup := testHeader(1)
	dup.Hash = h.Hash
	err = AppendHeader(tx2, 1, dup)
	require.ErrorIs(t, err, ErrDuplicateHash)
	t.Log("✓ AppendHeader rejects a hash already mapped to another block")
}

// Copyright 2022-2026 The N42 Authors
// This file is part of the N42 library.

package storage

import (
	"context"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/stretchr/testify/require"

	"github.com/starknetcore/storage/felt"
)

// newTestStorage opens a Storage under a fresh temp directory with a
// small geometry so tests start and tear down quickly.
func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	cfg := DefaultStorageConfig(t.TempDir(), "test")
	cfg.DB.MinSize = 8 * datasize.MB
	cfg.DB.GrowthStep = 8 * datasize.MB
	cfg.DB.MaxSize = 256 * datasize.MB
	cfg.StateDiffs.SegmentMaxSize = 1 * datasize.MB
	cfg.Classes.SegmentMaxSize = 1 * datasize.MB
	cfg.Deprecated.SegmentMaxSize = 1 * datasize.MB
	cfg.Casm.SegmentMaxSize = 1 * datasize.MB
	cfg.StateDiffs.MaxObjectSize = 256 * datasize.KB
	cfg.Classes.MaxObjectSize = 256 * datasize.KB
	cfg.Deprecated.MaxObjectSize = 256 * datasize.KB
	cfg.Casm.MaxObjectSize = 256 * datasize.KB

	s, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// newCtx returns a background context for BeginRW calls in tests; a
// plain alias so call sites don't each import "context" separately.
func newCtx(t *testing.T) context.Context {
	t.Helper()
	return context.Background()
}

func testHeader(n felt.BlockNumber) BlockHeader {
	return BlockHeader{
		Number:     n,
		ParentHash: felt.FromUint64(uint64(n)),
		Hash:       felt.FromUint64(uint64(n) + 1000),
		Timestamp:  1700000000 + uint64(n),
		StateRoot:  felt.FromUint64(uint64(n) + 2000),
	}
}

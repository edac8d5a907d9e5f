// Copyright 2022-2026 The N42 Authors
// This file is part of the N42 library.

package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starknetcore/storage/storage/serde"
)

func uint64Codec() Codec[uint64] {
	return Codec[uint64]{
		Encode: func(v uint64) []byte { return serde.PutUint64(nil, v) },
		Decode: func(b []byte) (uint64, error) {
			v, _, err := serde.GetUint64(b)
			return v, err
		},
	}
}

func openTestEnv(t *testing.T) (*Environment, *TableID[uint64, uint64]) {
	t.Helper()
	tbl := NewTableID[uint64, uint64]("test_table", Default, uint64Codec(), uint64Codec())
	env, err := Open(filepath.Join(t.TempDir(), "mdbx"), Geometry{
		MinSize: 4 << 20, GrowthStep: 4 << 20, MaxSize: 64 << 20,
	}, 16, "test", func(reg func(TableBinder)) { reg(tbl) })
	require.NoError(t, err)
	t.Cleanup(func() { env.Close() })
	return env, tbl
}

// An RO transaction pins an MVCC snapshot for its entire lifetime: a
// write committed by a later RW transaction must stay invisible to it.
func TestSnapshotIsolation(t *testing.T) {
	env, tbl := openTestEnv(t)

	rw, err := env.BeginRW(context.Background())
	require.NoError(t, err)
	h, err := OpenRwTable(rw, tbl)
	require.NoError(t, err)
	require.NoError(t, h.Upsert(1, 100))
	require.NoError(t, rw.Commit())

	ro, err := env.BeginRO()
	require.NoError(t, err)
	defer ro.Close()

	roHandle, err := OpenTable[uint64, uint64](ro, tbl)
	require.NoError(t, err)
	v, err := roHandle.Get(1)
	require.NoError(t, err)
	require.Equal(t, uint64(100), v)

	// A second key is written and committed after the RO snapshot began.
	rw2, err := env.BeginRW(context.Background())
	require.NoError(t, err)
	h2, err := OpenRwTable(rw2, tbl)
	require.NoError(t, err)
	require.NoError(t, h2.Upsert(2, 200))
	require.NoError(t, rw2.Commit())

	has, err := roHandle.Has(2)
	require.NoError(t, err)
	require.False(t, has, "a write committed after the snapshot began must stay invisible to it")

	// A fresh RO transaction started after the second commit does see it.
	ro2, err := env.BeginRO()
	require.NoError(t, err)
	defer ro2.Close()
	roHandle2, err := OpenTable[uint64, uint64](ro2, tbl)
	require.NoError(t, err)
	v2, err := roHandle2.Get(2)
	require.NoError(t, err)
	require.Equal(t, uint64(200), v2)
	t.Log("✓ an RO transaction's view is fixed to its snapshot and unaffected by later commits")
}

// Keys are encoded big-endian, so cursor order must equal numeric order
// regardless of insertion order.
func TestCursorOrderMatchesNumericKeyOrder(t *testing.T) {
	env, tbl := openTestEnv(t)

	rw, err := env.BeginRW(context.Background())
	require.NoError(t, err)
	h, err := OpenRwTable(rw, tbl)
	require.NoError(t, err)
	for _, k := range []uint64{50, 10, 30, 20, 40} {
		require.NoError(t, h.Upsert(k, k*1000))
	}
	require.NoError(t, rw.Commit())

	ro, err := env.BeginRO()
	require.NoError(t, err)
	defer ro.Close()
	roHandle, err := OpenTable[uint64, uint64](ro, tbl)
	require.NoError(t, err)
	c, err := roHandle.Cursor()
	require.NoError(t, err)
	defer c.Close()

	var keys []uint64
	for k, v, ok, err := c.First(); ok; k, v, ok, err = c.Next() {
		require.NoError(t, err)
		require.Equal(t, k*1000, v)
		keys = append(keys, k)
	}
	require.Equal(t, []uint64{10, 20, 30, 40, 50}, keys)
	t.Log("✓ cursor iteration visits keys in ascending numeric order")
}

func TestCursorUpperBoundSkipsAnExactMatch(t *testing.T) {
	env, tbl := openTestEnv(t)

	rw, err := env.BeginRW(context.Background())
	require.NoError(t, err)
	h, err := OpenRwTable(rw, tbl)
	require.NoError(t, err)
	for _, k := range []uint64{10, 20, 30} {
		require.NoError(t, h.Upsert(k, k*1000))
	}
	require.NoError(t, rw.Commit())

	ro, err := env.BeginRO()
	require.NoError(t, err)
	defer ro.Close()
	roHandle, err := OpenTable[uint64, uint64](ro, tbl)
	require.NoError(t, err)
	c, err := roHandle.Cursor()
	require.NoError(t, err)
	defer c.Close()

	// An exact match on 20 is stepped past to 30.
	k, v, ok, err := c.UpperBound(20)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(30), k)
	require.Equal(t, uint64(30000), v)

	// A key between two entries lands on the next one up.
	k, _, ok, err = c.UpperBound(15)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(20), k)

	// Past the last key, nothing matches.
	_, _, ok, err = c.UpperBound(30)
	require.NoError(t, err)
	require.False(t, ok)
	t.Log("✓ UpperBound returns the smallest key strictly greater than the given key")
}

func TestTryBeginRWRejectsASecondConcurrentWriter(t *testing.T) {
	env, _ := openTestEnv(t)

	rw, err := env.BeginRW(context.Background())
	require.NoError(t, err)
	defer rw.Rollback()

	_, err = env.TryBeginRW()
	require.ErrorIs(t, err, ErrWriterBusy)
	t.Log("✓ only one read-write transaction can be active at a time")
}

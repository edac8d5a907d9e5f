// Copyright 2022-2026 The N42 Authors
// This file is part of the N42 library.

package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starknetcore/storage/felt"
)

// mustAppendChainPrefix advances headers and (empty) bodies through
// block n inclusive, the shared precondition every AppendStateDiff call
// in these tests needs (markers.Body > n).
func mustAppendChainPrefix(t *testing.T, s *Storage, through felt.BlockNumber) {
	t.Helper()
	for n := felt.BlockNumber(0); n <= through; n++ {
		mustAppendHeader(t, s, n)
		tx, err := s.BeginRW(newCtx(t))
		require.NoError(t, err)
		require.NoError(t, s.AppendBody(tx, n, BlockBody{}))
		require.NoError(t, tx.Commit())
	}
}

func TestAppendStateDiffHistoricalStorageLookup(t *testing.T) {
	s := newTestStorage(t)
	mustAppendChainPrefix(t, s, 2)

	addr := felt.FromUint64(7)
	key := felt.FromUint64(99)

	write := func(n felt.BlockNumber, val felt.Felt) {
		tx, err := s.BeginRW(newCtx(t))
		require.NoError(t, err)
		diff := ThinStateDiff{StorageDiffs: map[felt.ContractAddress]map[felt.StorageKey]felt.Felt{
			addr: {key: val},
		}}
		require.NoError(t, s.AppendStateDiff(tx, n, diff))
		require.NoError(t, tx.Commit())
	}
	write(0, felt.FromUint64(111))
	write(1, felt.FromUint64(222))

	ro, err := s.BeginRO()
	require.NoError(t, err)
	defer ro.Close()

	v, err := s.GetStorageAt(ro, addr, key, 0)
	require.NoError(t, err)
	require.Equal(t, felt.FromUint64(111), v)

	// A later write at block 1 does not change what block 0 sees.
	v, err = s.GetStorageAt(ro, addr, key, 0)
	require.NoError(t, err)
	require.Equal(t, felt.FromUint64(111), v)

	v, err = s.GetStorageAt(ro, addr, key, 1)
	require.NoError(t, err)
	require.Equal(t, felt.FromUint64(222), v)

	// A key never written returns the zero felt.
	v, err = s.GetStorageAt(ro, felt.FromUint64(8), key, 1)
	require.NoError(t, err)
	require.True(t, v.IsZero())
	t.Log("✓ GetStorageAt returns the most recent write at or before the queried block")
}

func TestAppendStateDiffRejectsRedeployment(t *testing.T) {
	s := newTestStorage(t)
	mustAppendChainPrefix(t, s, 1)

	addr := felt.FromUint64(1)
	tx, err := s.BeginRW(newCtx(t))
	require.NoError(t, err)
	require.NoError(t, s.AppendStateDiff(tx, 0, ThinStateDiff{
		DeployedContracts: map[felt.ContractAddress]felt.ClassHash{addr: felt.FromUint64(5)},
	}))
	require.NoError(t, tx.Commit())

	tx2, err := s.BeginRW(newCtx(t))
	require.NoError(t, err)
	defer tx2.Rollback()
	err = s.AppendStateDiff(tx2, 1, ThinStateDiff{
		DeployedContracts: map[felt.ContractAddress]felt.ClassHash{addr: felt.FromUint64(6)},
	})
	require.ErrorIs(t, err, ErrContractAlreadyDeployed)
	t.Log("✓ AppendStateDiff refuses to redeploy an already-deployed address")
}

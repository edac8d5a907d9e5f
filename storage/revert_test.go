// Copyright 2022-2026 The N42 Authors
// This file is part of the N42 library.

package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starknetcore/storage/felt"
	"github.com/starknetcore/storage/storage/schema"
)

// mustAppendFullBlock drives header, body, state diff, class and
// compiled-class through block n, declaring and compiling one Sierra
// class so every domain's marker advances past n.
func mustAppendFullBlock(t *testing.T, s *Storage, n felt.BlockNumber, classHash felt.ClassHash) {
	t.Helper()
	mustAppendHeader(t, s, n)

	tx, err := s.BeginRW(newCtx(t))
	require.NoError(t, err)
	require.NoError(t, s.AppendBody(tx, n, BlockBody{}))
	require.NoError(t, tx.Commit())

	tx, err = s.BeginRW(newCtx(t))
	require.NoError(t, err)
	require.NoError(t, s.AppendStateDiff(tx, n, ThinStateDiff{
		DeclaredClasses: []felt.ClassHash{classHash},
	}))
	require.NoError(t, tx.Commit())

	tx, err = s.BeginRW(newCtx(t))
	require.NoError(t, err)
	require.NoError(t, s.AppendClasses(tx, n,
		map[felt.ClassHash]ContractClass{classHash: {Bytes: []byte("sierra")}},
		map[felt.ClassHash]DeprecatedContractClass{}))
	require.NoError(t, tx.Commit())

	tx, err = s.BeginRW(newCtx(t))
	require.NoError(t, err)
	require.NoError(t, s.AppendCompiledClass(tx, classHash, CasmContractClass{Bytes: []byte("casm")}))
	require.NoError(t, tx.Commit())
}

func TestRevertBlockTailTruncatesEveryDomainHighestFirst(t *testing.T) {
	s := newTestStorage(t)
	classHash := felt.FromUint64(77)
	mustAppendFullBlock(t, s, 0, classHash)

	tx, err := s.BeginRW(newCtx(t))
	require.NoError(t, err)
	defer tx.Rollback()

	report, err := s.RevertBlock(tx, 0)
	require.NoError(t, err)
	require.Equal(t, []schema.MarkerKind{
		schema.MarkerCompiledClass,
		schema.MarkerClass,
		schema.MarkerState,
		schema.MarkerBody,
		schema.MarkerHeader,
	}, report.Domains)
	require.NoError(t, tx.Commit())

	ro, err := s.BeginRO()
	require.NoError(t, err)
	defer ro.Close()

	headerMarker, err := GetHeaderMarker(ro)
	require.NoError(t, err)
	require.Equal(t, felt.BlockNumber(0), headerMarker)

	_, found, err := GetHeader(ro, 0)
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = s.GetClass(ro, classHash, 0)
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = s.GetCompiledClass(ro, classHash)
	require.NoError(t, err)
	require.False(t, found)
	t.Log("✓ RevertBlock tears every domain down in CompiledClass→Header order")
}

func TestRevertBlockBlockedWhenNothingIsAtTheNextMarker(t *testing.T) {
	s := newTestStorage(t)
	classHash := felt.FromUint64(1)
	mustAppendFullBlock(t, s, 0, classHash)

	tx, err := s.BeginRW(newCtx(t))
	require.NoError(t, err)
	_, err = s.RevertBlock(tx, 0)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	// Block 0 is already fully reverted; every marker is back at 0, so
	// no domain sits at n+1 and RevertBlock has nothing to do.
	tx2, err := s.BeginRW(newCtx(t))
	require.NoError(t, err)
	defer tx2.Rollback()
	_, err = s.RevertBlock(tx2, 0)
	require.Error(t, err)
	var blocked *RevertBlockedError
	require.ErrorAs(t, err, &blocked)
	t.Log("✓ RevertBlock refuses to revert a block no domain still covers")
}

func TestRevertBlockInvalidatesEventIndexForTouchedAddresses(t *testing.T) {
	s := newTestStorage(t)
	addr := felt.FromUint64(55)

	mustAppendHeader(t, s, 0)
	tx, err := s.BeginRW(newCtx(t))
	require.NoError(t, err)
	require.NoError(t, s.AppendBody(tx, 0, BlockBody{
		Transactions: []Transaction{{Kind: TxInvoke, Hash: felt.FromUint64(1), SenderAddress: addr}},
		Outputs: []ThinTransactionOutput{{
			ExecutionStatus: ExecutionSucceeded,
			Events:          []Event{{FromAddress: addr, Keys: []felt.Felt{felt.FromUint64(9)}}},
		}},
	}))
	require.NoError(t, tx.Commit())

	ro, err := s.BeginRO()
	require.NoError(t, err)
	has, err := s.HasEventsInRange(ro, addr, 0, 0)
	require.NoError(t, err)
	require.True(t, has)
	ro.Close()

	tx2, err := s.BeginRW(newCtx(t))
	require.NoError(t, err)
	_, err = s.RevertBlock(tx2, 0)
	require.NoError(t, err)
	require.NoError(t, tx2.Commit())

	ro2, err := s.BeginRO()
	require.NoError(t, err)
	defer ro2.Close()
	has, err = s.HasEventsInRange(ro2, addr, 0, 0)
	require.NoError(t, err)
	require.False(t, has)
	t.Log("✓ reverting a block's body drops its events from the bitmap index cache")
}

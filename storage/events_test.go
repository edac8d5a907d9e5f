// Copyright 2022-2026 The N42 Authors
// This file is part of the N42 library.

package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starknetcore/storage/felt"
)

func drainEvents(t *testing.T, it *EventIter) []EventRecord {
	t.Helper()
	defer it.Close()
	var out []EventRecord
	for {
		rec, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, rec)
	}
}

func TestIterEventsFiltersByAddressAndKeyPosition(t *testing.T) {
	s := newTestStorage(t)
	addrA := felt.FromUint64(1)
	addrB := felt.FromUint64(2)
	k0 := felt.FromUint64(100)
	k1 := felt.FromUint64(200)

	mustAppendHeader(t, s, 0)
	tx, err := s.BeginRW(newCtx(t))
	require.NoError(t, err)
	require.NoError(t, s.AppendBody(tx, 0, BlockBody{
		Transactions: []Transaction{
			{Kind: TxInvoke, Hash: felt.FromUint64(10), SenderAddress: addrA},
			{Kind: TxInvoke, Hash: felt.FromUint64(11), SenderAddress: addrB},
		},
		Outputs: []ThinTransactionOutput{
			{ExecutionStatus: ExecutionSucceeded, Events: []Event{
				{FromAddress: addrA, Keys: []felt.Felt{k0, k1}},
				{FromAddress: addrA, Keys: []felt.Felt{k0}},
			}},
			{ExecutionStatus: ExecutionSucceeded, Events: []Event{
				{FromAddress: addrB, Keys: []felt.Felt{k1}},
			}},
		},
	}))
	require.NoError(t, tx.Commit())

	ro, err := s.BeginRO()
	require.NoError(t, err)
	defer ro.Close()

	// Unfiltered: all three events in (block, tx_offset, event_index) order.
	it, err := s.IterEvents(ro, EventFilter{FromBlock: 0, ToBlock: 0})
	require.NoError(t, err)
	all := drainEvents(t, it)
	require.Len(t, all, 3)
	require.Equal(t, []felt.TxOffsetInBlock{0, 0, 1}, []felt.TxOffsetInBlock{all[0].Offset, all[1].Offset, all[2].Offset})
	require.Equal(t, []felt.EventIndexInTx{0, 1, 0}, []felt.EventIndexInTx{all[0].Index, all[1].Index, all[2].Index})

	// Address-restricted: only addrA's two events.
	it, err = s.IterEvents(ro, EventFilter{FromBlock: 0, ToBlock: 0, Address: addrA})
	require.NoError(t, err)
	onlyA := drainEvents(t, it)
	require.Len(t, onlyA, 2)

	// A second-position key requirement excludes the event with only
	// one key, since positions beyond an event's key list never match.
	it, err = s.IterEvents(ro, EventFilter{
		FromBlock: 0, ToBlock: 0, Address: addrA,
		Keys: [][]felt.Felt{{k0}, {k1}},
	})
	require.NoError(t, err)
	matched := drainEvents(t, it)
	require.Len(t, matched, 1)
	require.Equal(t, []felt.Felt{k0, k1}, matched[0].Event.Keys)
	t.Log("✓ IterEvents filters by address and excludes events too short for a key position")
}

// The events table is keyed address-major (address, block, offset,
// index); an unfiltered IterEvents must still come out block-major.
// Here the higher-valued address fires first (block 0) and the
// lower-valued address fires second (block 1), so a buggy address-major
// walk would return the block-1 event before the block-0 event.
func TestIterEventsUnfilteredOrdersByBlockNotByAddress(t *testing.T) {
	s := newTestStorage(t)
	addrHigh := felt.FromUint64(9) // sorts after addrLow
	addrLow := felt.FromUint64(1)

	mustAppendHeader(t, s, 0)
	mustAppendHeader(t, s, 1)

	tx, err := s.BeginRW(newCtx(t))
	require.NoError(t, err)
	require.NoError(t, s.AppendBody(tx, 0, BlockBody{
		Transactions: []Transaction{{Kind: TxInvoke, Hash: felt.FromUint64(20), SenderAddress: addrHigh}},
		Outputs: []ThinTransactionOutput{{
			ExecutionStatus: ExecutionSucceeded,
			Events:          []Event{{FromAddress: addrHigh, Keys: []felt.Felt{felt.FromUint64(1)}}},
		}},
	}))
	require.NoError(t, tx.Commit())

	tx, err = s.BeginRW(newCtx(t))
	require.NoError(t, err)
	require.NoError(t, s.AppendBody(tx, 1, BlockBody{
		Transactions: []Transaction{{Kind: TxInvoke, Hash: felt.FromUint64(21), SenderAddress: addrLow}},
		Outputs: []ThinTransactionOutput{{
			ExecutionStatus: ExecutionSucceeded,
			Events:          []Event{{FromAddress: addrLow, Keys: []felt.Felt{felt.FromUint64(2)}}},
		}},
	}))
	require.NoError(t, tx.Commit())

	ro, err := s.BeginRO()
	require.NoError(t, err)
	defer ro.Close()

	it, err := s.IterEvents(ro, EventFilter{FromBlock: 0, ToBlock: 1})
	require.NoError(t, err)
	recs := drainEvents(t, it)
	require.Len(t, recs, 2)
	require.Equal(t, felt.BlockNumber(0), recs[0].Block)
	require.Equal(t, addrHigh, recs[0].Event.FromAddress)
	require.Equal(t, felt.BlockNumber(1), recs[1].Block)
	require.Equal(t, addrLow, recs[1].Event.FromAddress)
	t.Log("✓ an unfiltered IterEvents orders by block even when address order disagrees")
}

func TestHasEventsInRangeShortCircuitsAnEmptyAddress(t *testing.T) {
	s := newTestStorage(t)
	addr := felt.FromUint64(3)
	mustAppendHeader(t, s, 0)
	tx, err := s.BeginRW(newCtx(t))
	require.NoError(t, err)
	require.NoError(t, s.AppendBody(tx, 0, BlockBody{}))
	require.NoError(t, tx.Commit())

	ro, err := s.BeginRO()
	require.NoError(t, err)
	defer ro.Close()

	has, err := s.HasEventsInRange(ro, addr, 0, 0)
	require.NoError(t, err)
	require.False(t, has)

	it, err := s.IterEvents(ro, EventFilter{FromBlock: 0, ToBlock: 0, Address: addr})
	require.NoError(t, err)
	require.Empty(t, drainEvents(t, it))
	t.Log("✓ an address with no events short-circuits via the bitmap index")
}

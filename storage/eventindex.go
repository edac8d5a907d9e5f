// Copyright 2022-2026 The N42 Authors
// This file is part of the N42 library.
//
// The N42 library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The N42 library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the N42 library. If not, see <http://www.gnu.org/licenses/>.

package storage

import (
	"sync"

	"github.com/RoaringBitmap/roaring"

	"github.com/starknetcore/storage/felt"
	"github.com/starknetcore/storage/storage/db"
)

// maxTxPerBlock bounds the dense (block, tx_offset) encoding used by the
// event bitmap index: block*maxTxPerBlock+offset must fit in a uint32.
// An offset at or beyond this is indexed under its block's last slot,
// so range queries over that block still report it.
const maxTxPerBlock = 1 << 16

func denseEventSlot(block felt.BlockNumber, offset felt.TxOffsetInBlock) (uint32, bool) {
	if uint64(offset) >= maxTxPerBlock || uint64(block) >= (1<<32)/maxTxPerBlock {
		return 0, false
	}
	return uint32(block)*maxTxPerBlock + uint32(offset), true
}

// eventIndex is an in-memory, per-address cache of which (block,
// tx_offset) slots carry at least one event for that address. It is
// derived entirely from the events table, so it
// is never written to disk: a process restart or a revert simply drops
// the affected entries and the next query rebuilds them lazily.
type eventIndex struct {
	mu    sync.Mutex
	cache map[felt.ContractAddress]*roaring.Bitmap
}

func newEventIndex() *eventIndex {
	return &eventIndex{cache: make(map[felt.ContractAddress]*roaring.Bitmap)}
}

// invalidate drops addr's cached bitmap, forcing a rebuild on next use.
// Called by AppendBody and revertBody for every address whose events
// at n were added or removed.
func (idx *eventIndex) invalidate(addr felt.ContractAddress) {
	idx.mu.Lock()
	delete(idx.cache, addr)
	idx.mu.Unlock()
}

// bitmapFor returns addr's bitmap, building it by scanning the events
// table's address-prefixed range once and caching the result.
func (idx *eventIndex) bitmapFor(tx db.Tx, addr felt.ContractAddress) (*roaring.Bitmap, error) {
	idx.mu.Lock()
	if b, ok := idx.cache[addr]; ok {
		idx.mu.Unlock()
		return b, nil
	}
	idx.mu.Unlock()

	h, err := db.OpenTable(tx, eventsTable)
	if err != nil {
		return nil, err
	}
	c, err := h.Cursor()
	if err != nil {
		return nil, err
	}
	defer c.Close()

	b := roaring.New()
	for k, _, ok, err := c.LowerBound(eventKey{Address: addr}); ok; k, _, ok, err = c.Next() {
		if err != nil {
			return nil, err
		}
		if k.Address != addr {
			break
		}
		offset := k.Offset
		if uint64(offset) >= maxTxPerBlock {
			offset = maxTxPerBlock - 1
		}
		if slot, fits := denseEventSlot(k.Block, offset); fits {
			b.Add(slot)
		}
	}

	idx.mu.Lock()
	idx.cache[addr] = b
	idx.mu.Unlock()
	return b, nil
}

// HasEventsInRange reports whether addr has any event in [from, to]
// without reading the events or transaction_outputs tables beyond the
// one scan needed to build (or reuse) its cached bitmap. It is a pure
// accelerator: IterEvents remains correct without ever calling this.
func (s *Storage) HasEventsInRange(tx db.Tx, addr felt.ContractAddress, from, to felt.BlockNumber) (bool, error) {
	b, err := s.eventIdx.bitmapFor(tx, addr)
	if err != nil {
		return false, err
	}
	lo, loOK := denseEventSlot(from, 0)
	hi, hiOK := denseEventSlot(to, maxTxPerBlock-1)
	if !loOK || !hiOK {
		// Range falls outside the dense encoding's domain; fall back
		// to treating it as non-empty so callers do the real scan.
		return true, nil
	}
	var below uint64
	if lo > 0 {
		below = b.Rank(lo - 1)
	}
	return b.Rank(hi) > below, nil
}

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
	"github.com/starknetcore/storage/felt"
	"github.com/starknetcore/storage/storage/db"
)

// EventFilter narrows iter_events. FromBlock/ToBlock bound the scan
// (ToBlock is inclusive); Address, if non-zero, restricts to one
// contract; Keys is a per-position allowlist: an event matches if, for
// every position i with a non-empty Keys[i], the event's i-th key is a
// member of Keys[i], and positions beyond the event's key list never
// match (so a filter requiring a 4th key excludes an event with only 3).
type EventFilter struct {
	FromBlock felt.BlockNumber
	ToBlock   felt.BlockNumber
	Address   felt.ContractAddress
	Keys      [][]felt.Felt
}

// EventRecord pairs a matched event with the key identifying its
// position, for callers that need to resume iteration or cite a
// specific occurrence.
type EventRecord struct {
	Event Event
	Block felt.BlockNumber
	Offset felt.TxOffsetInBlock
	Index  felt.EventIndexInTx
}

func (f EventFilter) matches(ev Event) bool {
	for i, allowed := range f.Keys {
		if len(allowed) == 0 {
			continue
		}
		if i >= len(ev.Keys) {
			return false
		}
		found := false
		for _, k := range allowed {
			if k == ev.Keys[i] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// EventIter is a lazy, finite pull-iterator over one RO transaction's
// event index; it must not outlive the transaction that produced it.
//
// Its two modes walk different tables because the two tables are
// ordered differently: events is keyed (address, block, offset, index)
// so an address-restricted scan is contiguous, while an unrestricted
// scan must still come out (block, offset, index) ascending, which is
// transaction_outputs' native key order.
type EventIter struct {
	tx     db.Tx
	filter EventFilter

	// Address-restricted mode: walks eventsTable directly, already in
	// (block, offset, index) order once the address prefix is fixed.
	eventsC db.Cursor[eventKey, eventUnit]

	// Unrestricted mode: walks transaction_outputs block-major and
	// fans out each output's events in index order.
	outputsC    db.Cursor[txKey, ThinTransactionOutput]
	curKey      txKey
	curOutput   ThinTransactionOutput
	curHasRow   bool
	nextEventIx int

	started bool
	done    bool
}

// IterEvents opens a lazy iterator over events matching filter, ordered
// by (block, tx_offset, event_index) ascending. When filter names a
// single address, the bitmap event index is consulted first so a range
// with provably no events for that address skips the cursor entirely.
func (s *Storage) IterEvents(tx db.Tx, filter EventFilter) (*EventIter, error) {
	if filter.Address != (felt.ContractAddress{}) {
		has, err := s.HasEventsInRange(tx, filter.Address, filter.FromBlock, filter.ToBlock)
		if err != nil {
			return nil, err
		}
		if !has {
			return &EventIter{tx: tx, filter: filter, started: true, done: true}, nil
		}
		h, err := db.OpenTable(tx, eventsTable)
		if err != nil {
			return nil, err
		}
		c, err := h.Cursor()
		if err != nil {
			return nil, err
		}
		return &EventIter{tx: tx, filter: filter, eventsC: c}, nil
	}

	h, err := db.OpenTable(tx, transactionOutputsTable)
	if err != nil {
		return nil, err
	}
	c, err := h.Cursor()
	if err != nil {
		return nil, err
	}
	return &EventIter{tx: tx, filter: filter, outputsC: c}, nil
}

// Close releases the iterator's cursor(s). Safe to call more than once.
func (it *EventIter) Close() {
	it.eventsC.Close()
	it.outputsC.Close()
}

// Next returns the next matching event, or ok=false once exhausted.
func (it *EventIter) Next() (EventRecord, bool, error) {
	if it.done {
		return EventRecord{}, false, nil
	}
	if it.filter.Address != (felt.ContractAddress{}) {
		return it.nextByAddress()
	}
	return it.nextByBlock()
}

func (it *EventIter) nextByAddress() (EventRecord, bool, error) {
	var k eventKey
	var ok bool
	var err error
	if !it.started {
		it.started = true
		k, _, ok, err = it.eventsC.LowerBound(eventKey{Address: it.filter.Address, Block: it.filter.FromBlock})
	} else {
		k, _, ok, err = it.eventsC.Next()
	}
	if err != nil {
		return EventRecord{}, false, err
	}

	for ok {
		if k.Address != it.filter.Address {
			it.done = true
			return EventRecord{}, false, nil
		}
		if k.Block > it.filter.ToBlock {
			it.done = true
			return EventRecord{}, false, nil
		}
		if k.Block >= it.filter.FromBlock {
			ev, err := it.eventAt(k.Block, k.Offset, k.Index)
			if err != nil {
				return EventRecord{}, false, err
			}
			if ev != nil && it.filter.matches(*ev) {
				return EventRecord{Event: *ev, Block: k.Block, Offset: k.Offset, Index: k.Index}, true, nil
			}
		}
		k, _, ok, err = it.eventsC.Next()
		if err != nil {
			return EventRecord{}, false, err
		}
	}
	it.done = true
	return EventRecord{}, false, nil
}

// nextByBlock walks transaction_outputs block-major, emitting each
// matching event within a transaction's Events slice before advancing
// to the next transaction, so overall order is (block, offset, index).
func (it *EventIter) nextByBlock() (EventRecord, bool, error) {
	for {
		if !it.curHasRow || it.nextEventIx >= len(it.curOutput.Events) {
			var ok bool
			var err error
			if !it.started {
				it.started = true
				it.curKey, it.curOutput, ok, err = it.outputsC.LowerBound(txKey{Block: it.filter.FromBlock, Offset: 0})
				if err != nil {
					return EventRecord{}, false, err
				}
			} else {
				it.curKey, it.curOutput, ok, err = it.outputsC.Next()
				if err != nil {
					return EventRecord{}, false, err
				}
			}
			if !ok || it.curKey.Block > it.filter.ToBlock {
				it.done = true
				return EventRecord{}, false, nil
			}
			if it.curKey.Block < it.filter.FromBlock {
				it.curHasRow = false
				continue
			}
			it.curHasRow = true
			it.nextEventIx = 0
			continue
		}

		idx := it.nextEventIx
		it.nextEventIx++
		ev := it.curOutput.Events[idx]
		if it.filter.matches(ev) {
			return EventRecord{
				Event:  ev,
				Block:  it.curKey.Block,
				Offset: it.curKey.Offset,
				Index:  felt.EventIndexInTx(idx),
			}, true, nil
		}
	}
}

// eventAt reconstructs one event's body from its owning transaction
// output, since the events table itself stores only the index row.
func (it *EventIter) eventAt(block felt.BlockNumber, offset felt.TxOffsetInBlock, index felt.EventIndexInTx) (*Event, error) {
	outputs, err := GetTransactionOutputs(it.tx, block)
	if err != nil {
		return nil, err
	}
	if int(offset) >= len(outputs) {
		return nil, nil
	}
	out := outputs[offset]
	if int(index) >= len(out.Events) {
		return nil, nil
	}
	ev := out.Events[index]
	return &ev, nil
}

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
	apierrors "github.com/starknetcore/storage/pkg/errors"
	"github.com/starknetcore/storage/storage/db"
	"github.com/starknetcore/storage/storage/schema"
)

// BlockBody is the ordered sequence of transactions and their parallel
// outputs appended together by AppendBody.
type BlockBody struct {
	Transactions []Transaction
	Outputs      []ThinTransactionOutput
}

// BodyReader is the read half of the body domain.
type BodyReader interface {
	GetBlockTransactions(tx db.Tx, n felt.BlockNumber) ([]Transaction, error)
	GetTransaction(tx db.Tx, n felt.BlockNumber, offset felt.TxOffsetInBlock) (Transaction, bool, error)
	GetTransactionByHash(tx db.Tx, hash felt.TxHash) (Transaction, felt.BlockNumber, felt.TxOffsetInBlock, bool, error)
	GetTransactionOutputs(tx db.Tx, n felt.BlockNumber) ([]ThinTransactionOutput, error)
	GetBodyMarker(tx db.Tx) (felt.BlockNumber, error)
}

// BodyWriter is the write half of the body domain.
type BodyWriter interface {
	AppendBody(tx *db.RwTx, n felt.BlockNumber, body BlockBody) error
}

// AppendBody writes block n's transactions, their outputs, the
// tx-hash reverse index, and one index row per event, preconditioned on
// markers.Body == n and markers.Header > n. It is a method (unlike the
// rest of the body domain's free functions) because it must invalidate
// s.eventIdx's cached bitmap for every address it adds events for,
// exactly as revertBody does when it removes them.
func (s *Storage) AppendBody(tx *db.RwTx, n felt.BlockNumber, body BlockBody) error {
	if err := requireMarker(tx, schema.MarkerBody, n); err != nil {
		return err
	}
	headerMarker, err := GetHeaderMarker(tx)
	if err != nil {
		return err
	}
	if headerMarker <= n {
		return &MarkerMismatchError{Domain: schema.MarkerHeader, Expected: headerMarker, Got: n + 1}
	}

	lookup, err := db.OpenRwTable(tx, txHashToIndexTable)
	if err != nil {
		return err
	}
	// Reject the whole body before writing anything if any tx hash
	// collides, so a failed AppendBody never leaves a partial body
	// behind inside the transaction it shares with the caller's commit.
	for _, t := range body.Transactions {
		if has, err := lookup.Has(t.Hash); err != nil {
			return err
		} else if has {
			return ErrDuplicateTxHash
		}
	}

	txs, err := db.OpenRwTable(tx, transactionsTable)
	if err != nil {
		return err
	}
	outputs, err := db.OpenRwTable(tx, transactionOutputsTable)
	if err != nil {
		return err
	}
	events, err := db.OpenRwTable(tx, eventsTable)
	if err != nil {
		return err
	}

	touched := map[felt.ContractAddress]struct{}{}
	for i, t := range body.Transactions {
		offset := felt.TxOffsetInBlock(i)
		key := txKey{Block: n, Offset: offset}
		if err := txs.Upsert(key, t); err != nil {
			return err
		}
		if err := lookup.Upsert(t.Hash, txLookupRow{Block: n, Offset: offset}); err != nil {
			return err
		}
		out := body.Outputs[i]
		if err := outputs.Upsert(key, out); err != nil {
			return err
		}
		for evIdx, ev := range out.Events {
			ek := eventKey{Address: ev.FromAddress, Block: n, Offset: offset, Index: felt.EventIndexInTx(evIdx)}
			if err := events.Upsert(ek, eventUnit{}); err != nil {
				return err
			}
			touched[ev.FromAddress] = struct{}{}
		}
	}
	for addr := range touched {
		s.eventIdx.invalidate(addr)
	}

	return advanceMarker(tx, schema.MarkerBody, n)
}

// GetBlockTransactions returns block n's transactions in offset order.
func GetBlockTransactions(tx db.Tx, n felt.BlockNumber) ([]Transaction, error) {
	h, err := db.OpenTable(tx, transactionsTable)
	if err != nil {
		return nil, err
	}
	c, err := h.Cursor()
	if err != nil {
		return nil, err
	}
	defer c.Close()

	var out []Transaction
	k, v, ok, err := c.Seek(txKey{Block: n, Offset: 0})
	if err != nil {
		return nil, err
	}
	for ok && k.Block == n {
		out = append(out, v)
		k, v, ok, err = c.Next()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GetTransaction returns the transaction at (n, offset).
func GetTransaction(tx db.Tx, n felt.BlockNumber, offset felt.TxOffsetInBlock) (Transaction, bool, error) {
	h, err := db.OpenTable(tx, transactionsTable)
	if err != nil {
		return Transaction{}, false, err
	}
	v, err := h.Get(txKey{Block: n, Offset: offset})
	if err != nil {
		if apierrors.Is(err, apierrors.ErrKeyNotFound) {
			return Transaction{}, false, nil
		}
		return Transaction{}, false, err
	}
	return v, true, nil
}

// GetTransactionByHash resolves hash via tx_hash_to_index and fetches
// the transaction it names.
func GetTransactionByHash(tx db.Tx, hash felt.TxHash) (Transaction, felt.BlockNumber, felt.TxOffsetInBlock, bool, error) {
	lookup, err := db.OpenTable(tx, txHashToIndexTable)
	if err != nil {
		return Transaction{}, 0, 0, false, err
	}
	row, err := lookup.Get(hash)
	if err != nil {
		if apierrors.Is(err, apierrors.ErrKeyNotFound) {
			return Transaction{}, 0, 0, false, nil
		}
		return Transaction{}, 0, 0, false, err
	}
	t, found, err := GetTransaction(tx, row.Block, row.Offset)
	return t, row.Block, row.Offset, found, err
}

// GetTransactionOutputs returns block n's transaction outputs in offset order.
func GetTransactionOutputs(tx db.Tx, n felt.BlockNumber) ([]ThinTransactionOutput, error) {
	h, err := db.OpenTable(tx, transactionOutputsTable)
	if err != nil {
		return nil, err
	}
	c, err := h.Cursor()
	if err != nil {
		return nil, err
	}
	defer c.Close()

	var out []ThinTransactionOutput
	k, v, ok, err := c.Seek(txKey{Block: n, Offset: 0})
	if err != nil {
		return nil, err
	}
	for ok && k.Block == n {
		out = append(out, v)
		k, v, ok, err = c.Next()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GetBodyMarker returns the smallest block number not yet appended to
// the body domain.
func GetBodyMarker(tx db.Tx) (felt.BlockNumber, error) {
	return getMarker(tx, schema.MarkerBody)
}

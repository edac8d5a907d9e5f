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
	"github.com/starknetcore/storage/storage/serde"
)

// txKey is the composite key of transactions/transaction_outputs:
// (BlockNumber, TxOffsetInBlock), fixed-size components concatenated so
// byte-lex order equals (block, offset) tuple order.
type txKey struct {
	Block  felt.BlockNumber
	Offset felt.TxOffsetInBlock
}

func encodeTxKey(k txKey) []byte {
	dst := putBlockNumber(nil, k.Block)
	return putTxOffset(dst, k.Offset)
}

func decodeTxKey(b []byte) (txKey, error) {
	var k txKey
	var err error
	if k.Block, b, err = getBlockNumber(b); err != nil {
		return k, err
	}
	if k.Offset, b, err = getTxOffset(b); err != nil {
		return k, err
	}
	return k, requireExhaustedKey(b)
}

// eventKey is events' composite key: (ContractAddress, BlockNumber,
// TxOffsetInBlock, EventIndexInTx) — chosen so address-filtered scans
// are contiguous.
type eventKey struct {
	Address felt.ContractAddress
	Block   felt.BlockNumber
	Offset  felt.TxOffsetInBlock
	Index   felt.EventIndexInTx
}

func encodeEventKey(k eventKey) []byte {
	dst := putFelt(nil, k.Address)
	dst = putBlockNumber(dst, k.Block)
	dst = putTxOffset(dst, k.Offset)
	return putEventIndex(dst, k.Index)
}

func decodeEventKey(b []byte) (eventKey, error) {
	var k eventKey
	var err error
	if k.Address, b, err = getFelt(b); err != nil {
		return k, err
	}
	if k.Block, b, err = getBlockNumber(b); err != nil {
		return k, err
	}
	if k.Offset, b, err = getTxOffset(b); err != nil {
		return k, err
	}
	if k.Index, b, err = getEventIndex(b); err != nil {
		return k, err
	}
	return k, requireExhaustedKey(b)
}

// storageKey is contract_storage's composite key: (ContractAddress,
// StorageKey, BlockNumber). "Value at block N" is found by
// lower_bound((addr, key, N)) walked backward to the first row whose
// addr/key prefix still matches.
type storageKey struct {
	Address felt.ContractAddress
	Key     felt.StorageKey
	Block   felt.BlockNumber
}

func encodeStorageKey(k storageKey) []byte {
	dst := putFelt(nil, k.Address)
	dst = putFelt(dst, k.Key)
	return putBlockNumber(dst, k.Block)
}

func decodeStorageKey(b []byte) (storageKey, error) {
	var k storageKey
	var err error
	if k.Address, b, err = getFelt(b); err != nil {
		return k, err
	}
	if k.Key, b, err = getFelt(b); err != nil {
		return k, err
	}
	if k.Block, b, err = getBlockNumber(b); err != nil {
		return k, err
	}
	return k, requireExhaustedKey(b)
}

// nonceKey is nonces' composite key: (ContractAddress, BlockNumber),
// same historical-lookup rule as storageKey.
type nonceKey struct {
	Address felt.ContractAddress
	Block   felt.BlockNumber
}

func encodeNonceKey(k nonceKey) []byte {
	dst := putFelt(nil, k.Address)
	return putBlockNumber(dst, k.Block)
}

func decodeNonceKey(b []byte) (nonceKey, error) {
	var k nonceKey
	var err error
	if k.Address, b, err = getFelt(b); err != nil {
		return k, err
	}
	if k.Block, b, err = getBlockNumber(b); err != nil {
		return k, err
	}
	return k, requireExhaustedKey(b)
}

func requireExhaustedKey(b []byte) error {
	return serde.RequireExhausted(b)
}

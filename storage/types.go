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

// Package storage is the public façade of the storage core: one file
// per domain (headers, bodies, state diffs, classes, compiled classes,
// events, base-layer marker), each grouping a handful of tables into
// atomic append/read operations, plus revert and migration wiring.
package storage

import "github.com/starknetcore/storage/felt"

// BlockHeader is the per-block metadata every downstream consumer
// (sync, RPC, execution) keys off of.
type BlockHeader struct {
	Number           felt.BlockNumber
	ParentHash       felt.BlockHash
	Hash             felt.BlockHash
	Timestamp        uint64
	SequencerAddress felt.ContractAddress
	StateRoot        felt.Felt
	TransactionCount uint32
	EventCount       uint32
}

// BlockSignature is the (possibly empty) signature over a block header,
// kept 0-or-1 per block per the current schema.
type BlockSignature struct {
	Parts []felt.Felt
}

// TxKind discriminates the sealed Transaction variant set. Closed: new
// transaction kinds are never added by an external package, only by a
// migration that also updates this enum.
type TxKind byte

const (
	TxInvoke TxKind = iota
	TxDeclare
	TxDeployAccount
	TxL1Handler
)

// Transaction is a closed sum type over the transaction kinds Starknet
// defines; it is never extended via an interface anyone outside this
// package implements.
type Transaction struct {
	Kind          TxKind
	Hash          felt.TxHash
	SenderAddress felt.ContractAddress
	ClassHash     felt.ClassHash // Declare only; zero otherwise
	Nonce         felt.Nonce
	CallData      []felt.Felt
	Signature     []felt.Felt
}

// ExecutionStatus discriminates a transaction's outcome.
type ExecutionStatus byte

const (
	ExecutionSucceeded ExecutionStatus = iota
	ExecutionReverted
)

// ThinTransactionOutput is a transaction's receipt, including its
// events' bodies. The events table itself stores only an index row per
// event — (address, block, tx_offset, event_index) -> () — so that
// address-filtered scans are contiguous; IterEvents reconstructs each
// index row's content by reading back into Events at iteration time.
type ThinTransactionOutput struct {
	ActualFee       felt.Felt
	ExecutionStatus ExecutionStatus
	RevertReason    string
	MessagesSent    []L2ToL1Message
	Events          []Event
}

// L2ToL1Message is one outgoing message recorded in a transaction output.
type L2ToL1Message struct {
	ToAddress felt.Felt
	Payload   []felt.Felt
}

// Event is the reconstructable form of one event: (from_address, n,
// tx_offset, event_index) plus its keys/data, matching the primary key
// shape chosen so address-filtered scans are contiguous.
type Event struct {
	FromAddress felt.ContractAddress
	Keys        []felt.Felt
	Data        []felt.Felt
}

// ThinStateDiff is the per-block state change set persisted into the
// state-diff file store; the secondary KV rows materialised by
// AppendStateDiff are derived from exactly these fields.
type ThinStateDiff struct {
	DeployedContracts map[felt.ContractAddress]felt.ClassHash
	StorageDiffs      map[felt.ContractAddress]map[felt.StorageKey]felt.Felt
	Nonces            map[felt.ContractAddress]felt.Nonce
	DeclaredClasses   []felt.ClassHash // Sierra
	DeprecatedClasses []felt.ClassHash // Cairo 0
}

// ContractClass is a Sierra class's compiled program bytes, compressed
// with the store's blob codec before they are written to the class
// file store.
type ContractClass struct {
	Bytes []byte
}

// DeprecatedContractClass is a Cairo-0 class's program bytes.
type DeprecatedContractClass struct {
	Bytes []byte
}

// CasmContractClass is one Sierra class's compiled CASM bytes.
type CasmContractClass struct {
	Bytes []byte
}

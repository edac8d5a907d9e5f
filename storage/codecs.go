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
	"github.com/starknetcore/storage/storage/filestore"
	"github.com/starknetcore/storage/storage/serde"
)

// --- BlockHeader (VersionZero) ---

func encodeHeaderRaw(dst []byte, h BlockHeader) []byte {
	dst = putBlockNumber(dst, h.Number)
	dst = putFelt(dst, h.ParentHash)
	dst = putFelt(dst, h.Hash)
	dst = serde.PutUint64(dst, h.Timestamp)
	dst = putFelt(dst, h.SequencerAddress)
	dst = putFelt(dst, h.StateRoot)
	dst = serde.PutUint32(dst, h.TransactionCount)
	dst = serde.PutUint32(dst, h.EventCount)
	return dst
}

func decodeHeaderRaw(b []byte) (BlockHeader, []byte, error) {
	var h BlockHeader
	var err error
	if h.Number, b, err = getBlockNumber(b); err != nil {
		return h, nil, err
	}
	if h.ParentHash, b, err = getFelt(b); err != nil {
		return h, nil, err
	}
	if h.Hash, b, err = getFelt(b); err != nil {
		return h, nil, err
	}
	if h.Timestamp, b, err = serde.GetUint64(b); err != nil {
		return h, nil, err
	}
	if h.SequencerAddress, b, err = getFelt(b); err != nil {
		return h, nil, err
	}
	if h.StateRoot, b, err = getFelt(b); err != nil {
		return h, nil, err
	}
	if h.TransactionCount, b, err = serde.GetUint32(b); err != nil {
		return h, nil, err
	}
	if h.EventCount, b, err = serde.GetUint32(b); err != nil {
		return h, nil, err
	}
	return h, b, nil
}

var headerWrapper = serde.VersionZero[BlockHeader]{}

func encodeHeader(h BlockHeader) []byte {
	return headerWrapper.Encode(h, encodeHeaderRaw)
}

func decodeHeader(b []byte) (BlockHeader, error) {
	return headerWrapper.Decode(b, decodeHeaderRaw)
}

// --- BlockSignature (VersionZero) ---

func encodeSignatureRaw(dst []byte, s BlockSignature) []byte {
	return putFeltSeq(dst, s.Parts)
}

func decodeSignatureRaw(b []byte) (BlockSignature, []byte, error) {
	parts, rest, err := getFeltSeq(b)
	if err != nil {
		return BlockSignature{}, nil, err
	}
	return BlockSignature{Parts: parts}, rest, nil
}

var signatureWrapper = serde.VersionZero[BlockSignature]{}

func encodeSignature(s BlockSignature) []byte {
	return signatureWrapper.Encode(s, encodeSignatureRaw)
}

func decodeSignature(b []byte) (BlockSignature, error) {
	return signatureWrapper.Decode(b, decodeSignatureRaw)
}

// --- Transaction (VersionZero, sum type) ---

func encodeTransactionRaw(dst []byte, tx Transaction) []byte {
	dst = serde.PutDiscriminant(dst, byte(tx.Kind))
	dst = putFelt(dst, tx.Hash)
	dst = putFelt(dst, tx.SenderAddress)
	dst = putFelt(dst, tx.ClassHash)
	dst = putFelt(dst, tx.Nonce)
	dst = putFeltSeq(dst, tx.CallData)
	dst = putFeltSeq(dst, tx.Signature)
	return dst
}

func decodeTransactionRaw(b []byte) (Transaction, []byte, error) {
	var tx Transaction
	tag, rest, err := serde.GetDiscriminant(b)
	if err != nil {
		return tx, nil, err
	}
	switch TxKind(tag) {
	case TxInvoke, TxDeclare, TxDeployAccount, TxL1Handler:
		tx.Kind = TxKind(tag)
	default:
		return tx, nil, serde.ErrUnknownVariant
	}
	if tx.Hash, rest, err = getFelt(rest); err != nil {
		return tx, nil, err
	}
	if tx.SenderAddress, rest, err = getFelt(rest); err != nil {
		return tx, nil, err
	}
	if tx.ClassHash, rest, err = getFelt(rest); err != nil {
		return tx, nil, err
	}
	if tx.Nonce, rest, err = getFelt(rest); err != nil {
		return tx, nil, err
	}
	if tx.CallData, rest, err = getFeltSeq(rest); err != nil {
		return tx, nil, err
	}
	if tx.Signature, rest, err = getFeltSeq(rest); err != nil {
		return tx, nil, err
	}
	return tx, rest, nil
}

var transactionWrapper = serde.VersionZero[Transaction]{}

func encodeTransaction(tx Transaction) []byte {
	return transactionWrapper.Encode(tx, encodeTransactionRaw)
}

func decodeTransaction(b []byte) (Transaction, error) {
	return transactionWrapper.Decode(b, decodeTransactionRaw)
}

// --- ThinTransactionOutput (VersionZero) ---

func encodeMessageRaw(dst []byte, m L2ToL1Message) []byte {
	dst = putFelt(dst, m.ToAddress)
	dst = putFeltSeq(dst, m.Payload)
	return dst
}

func decodeMessageRaw(b []byte) (L2ToL1Message, []byte, error) {
	var m L2ToL1Message
	var err error
	if m.ToAddress, b, err = getFelt(b); err != nil {
		return m, nil, err
	}
	if m.Payload, b, err = getFeltSeq(b); err != nil {
		return m, nil, err
	}
	return m, b, nil
}

func encodeEventRaw(dst []byte, e Event) []byte {
	dst = putFelt(dst, e.FromAddress)
	dst = putFeltSeq(dst, e.Keys)
	return putFeltSeq(dst, e.Data)
}

func decodeEventRaw(b []byte) (Event, []byte, error) {
	var e Event
	var err error
	if e.FromAddress, b, err = getFelt(b); err != nil {
		return e, nil, err
	}
	if e.Keys, b, err = getFeltSeq(b); err != nil {
		return e, nil, err
	}
	if e.Data, b, err = getFeltSeq(b); err != nil {
		return e, nil, err
	}
	return e, b, nil
}

func encodeOutputRaw(dst []byte, o ThinTransactionOutput) []byte {
	dst = putFelt(dst, o.ActualFee)
	dst = serde.PutDiscriminant(dst, byte(o.ExecutionStatus))
	dst = putString(dst, o.RevertReason)
	dst = serde.PutSequence(dst, o.MessagesSent, encodeMessageRaw)
	dst = serde.PutSequence(dst, o.Events, encodeEventRaw)
	return dst
}

func decodeOutputRaw(b []byte) (ThinTransactionOutput, []byte, error) {
	var o ThinTransactionOutput
	var err error
	if o.ActualFee, b, err = getFelt(b); err != nil {
		return o, nil, err
	}
	tag, rest, err := serde.GetDiscriminant(b)
	if err != nil {
		return o, nil, err
	}
	switch ExecutionStatus(tag) {
	case ExecutionSucceeded, ExecutionReverted:
		o.ExecutionStatus = ExecutionStatus(tag)
	default:
		return o, nil, serde.ErrUnknownVariant
	}
	b = rest
	if o.RevertReason, b, err = getString(b); err != nil {
		return o, nil, err
	}
	if o.MessagesSent, b, err = serde.GetSequence(b, decodeMessageRaw); err != nil {
		return o, nil, err
	}
	if o.Events, b, err = serde.GetSequence(b, decodeEventRaw); err != nil {
		return o, nil, err
	}
	return o, b, nil
}

var outputWrapper = serde.VersionZero[ThinTransactionOutput]{}

func encodeOutput(o ThinTransactionOutput) []byte {
	return outputWrapper.Encode(o, encodeOutputRaw)
}

func decodeOutput(b []byte) (ThinTransactionOutput, error) {
	return outputWrapper.Decode(b, decodeOutputRaw)
}

// --- Event (NoVersion; stored as the events table's unit value ()) ---

// eventUnit is the events table's value: the row's existence is the
// payload, so Encode/Decode are no-ops. The event's content is
// reconstructed by the caller from the owning transaction output plus
// the key components already present in the row's key, per the data
// model.
type eventUnit struct{}

func encodeEventUnit(eventUnit) []byte { return nil }

func decodeEventUnit(b []byte) (eventUnit, error) {
	if len(b) != 0 {
		return eventUnit{}, serde.ErrTrailingBytes
	}
	return eventUnit{}, nil
}

// --- felt.BlockNumber / felt.ContractAddress / felt.ClassHash (NoVersion, plain values) ---

func encodeBlockNumberValue(n felt.BlockNumber) []byte {
	return putBlockNumber(nil, n)
}

func decodeBlockNumberValue(b []byte) (felt.BlockNumber, error) {
	n, rest, err := getBlockNumber(b)
	if err != nil {
		return 0, err
	}
	if err := serde.RequireExhausted(rest); err != nil {
		return 0, err
	}
	return n, nil
}

func encodeFeltValue(f felt.Felt) []byte {
	return putFelt(nil, f)
}

func decodeFeltValue(b []byte) (felt.Felt, error) {
	f, rest, err := getFelt(b)
	if err != nil {
		return felt.Felt{}, err
	}
	if err := serde.RequireExhausted(rest); err != nil {
		return felt.Felt{}, err
	}
	return f, nil
}

// deployedContractRow is deployed_contracts' value: (BlockNumber, ClassHash).
type deployedContractRow struct {
	Block     felt.BlockNumber
	ClassHash felt.ClassHash
}

func encodeDeployedContractRow(r deployedContractRow) []byte {
	dst := putBlockNumber(nil, r.Block)
	dst = putFelt(dst, r.ClassHash)
	return dst
}

func decodeDeployedContractRow(b []byte) (deployedContractRow, error) {
	var r deployedContractRow
	var err error
	if r.Block, b, err = getBlockNumber(b); err != nil {
		return r, err
	}
	if r.ClassHash, b, err = getFelt(b); err != nil {
		return r, err
	}
	if err := serde.RequireExhausted(b); err != nil {
		return r, err
	}
	return r, nil
}

// txLookupRow is tx_hash_to_index's value: (BlockNumber, TxOffsetInBlock).
type txLookupRow struct {
	Block  felt.BlockNumber
	Offset felt.TxOffsetInBlock
}

func encodeTxLookupRow(r txLookupRow) []byte {
	dst := putBlockNumber(nil, r.Block)
	dst = putTxOffset(dst, r.Offset)
	return dst
}

func decodeTxLookupRow(b []byte) (txLookupRow, error) {
	var r txLookupRow
	var err error
	if r.Block, b, err = getBlockNumber(b); err != nil {
		return r, err
	}
	if r.Offset, b, err = getTxOffset(b); err != nil {
		return r, err
	}
	if err := serde.RequireExhausted(b); err != nil {
		return r, err
	}
	return r, nil
}

// classDeclarationRow is declared_classes/deprecated_declared_classes'
// value: the declaring block plus the class bytes' Location, the
// latter starting as filestore.Location{} (the "placeholder" of
// §4.6.3) until AppendClasses fills it in.
type classDeclarationRow struct {
	Block    felt.BlockNumber
	Location filestore.Location
}

func encodeClassDeclarationRow(r classDeclarationRow) []byte {
	dst := putBlockNumber(nil, r.Block)
	return append(dst, r.Location.Encode()...)
}

func decodeClassDeclarationRow(b []byte) (classDeclarationRow, error) {
	var r classDeclarationRow
	var err error
	if r.Block, b, err = getBlockNumber(b); err != nil {
		return r, err
	}
	loc, err := filestore.DecodeLocation(b)
	if err != nil {
		return r, err
	}
	r.Location = loc
	return r, nil
}

// locationValue is state_diffs' and compiled_classes' value: a bare Location.

func encodeLocationValue(l filestore.Location) []byte {
	return l.Encode()
}

func decodeLocationValue(b []byte) (filestore.Location, error) {
	return filestore.DecodeLocation(b)
}

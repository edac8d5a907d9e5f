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
	"github.com/starknetcore/storage/storage/filestore"
	"github.com/starknetcore/storage/storage/schema"
)

func feltKeyCodec() db.Codec[felt.Felt] {
	return db.Codec[felt.Felt]{Encode: func(f felt.Felt) []byte { return f.Bytes() }, Decode: func(b []byte) (felt.Felt, error) { return felt.FromBytes(b) }}
}

func blockNumberKeyCodec() db.Codec[felt.BlockNumber] {
	return db.Codec[felt.BlockNumber]{Encode: encodeBlockNumberValue, Decode: decodeBlockNumberValue}
}

var (
	headersTable = db.NewTableID[felt.BlockNumber, BlockHeader](
		schema.Headers, db.Default, blockNumberKeyCodec(),
		db.Codec[BlockHeader]{Encode: encodeHeader, Decode: decodeHeader},
	)

	blockHashToNumberTable = db.NewTableID[felt.BlockHash, felt.BlockNumber](
		schema.BlockHashToNumber, db.Default, feltKeyCodec(),
		db.Codec[felt.BlockNumber]{Encode: encodeBlockNumberValue, Decode: decodeBlockNumberValue},
	)

	blockSignaturesTable = db.NewTableID[felt.BlockNumber, BlockSignature](
		schema.BlockSignatures, db.Default, blockNumberKeyCodec(),
		db.Codec[BlockSignature]{Encode: encodeSignature, Decode: decodeSignature},
	)

	transactionsTable = db.NewTableID[txKey, Transaction](
		schema.Transactions, db.Default,
		db.Codec[txKey]{Encode: encodeTxKey, Decode: decodeTxKey},
		db.Codec[Transaction]{Encode: encodeTransaction, Decode: decodeTransaction},
	)

	transactionOutputsTable = db.NewTableID[txKey, ThinTransactionOutput](
		schema.TransactionOutputs, db.Default,
		db.Codec[txKey]{Encode: encodeTxKey, Decode: decodeTxKey},
		db.Codec[ThinTransactionOutput]{Encode: encodeOutput, Decode: decodeOutput},
	)

	txHashToIndexTable = db.NewTableID[felt.TxHash, txLookupRow](
		schema.TxHashToIndex, db.Default, feltKeyCodec(),
		db.Codec[txLookupRow]{Encode: encodeTxLookupRow, Decode: decodeTxLookupRow},
	)

	eventsTable = db.NewTableID[eventKey, eventUnit](
		schema.Events, db.Default,
		db.Codec[eventKey]{Encode: encodeEventKey, Decode: decodeEventKey},
		db.Codec[eventUnit]{Encode: encodeEventUnit, Decode: decodeEventUnit},
	)

	stateDiffsTable = db.NewTableID[felt.BlockNumber, filestore.Location](
		schema.StateDiffs, db.Default, blockNumberKeyCodec(),
		db.Codec[filestore.Location]{Encode: encodeLocationValue, Decode: decodeLocationValue},
	)

	deployedContractsTable = db.NewTableID[felt.ContractAddress, deployedContractRow](
		schema.DeployedContracts, db.Default, feltKeyCodec(),
		db.Codec[deployedContractRow]{Encode: encodeDeployedContractRow, Decode: decodeDeployedContractRow},
	)

	contractStorageTable = db.NewTableID[storageKey, felt.Felt](
		schema.ContractStorage, db.Default,
		db.Codec[storageKey]{Encode: encodeStorageKey, Decode: decodeStorageKey},
		db.Codec[felt.Felt]{Encode: encodeFeltValue, Decode: decodeFeltValue},
	)

	noncesTable = db.NewTableID[nonceKey, felt.Nonce](
		schema.Nonces, db.Default,
		db.Codec[nonceKey]{Encode: encodeNonceKey, Decode: decodeNonceKey},
		db.Codec[felt.Nonce]{Encode: encodeFeltValue, Decode: decodeFeltValue},
	)

	declaredClassesTable = db.NewTableID[felt.ClassHash, classDeclarationRow](
		schema.DeclaredClasses, db.Default, feltKeyCodec(),
		db.Codec[classDeclarationRow]{Encode: encodeClassDeclarationRow, Decode: decodeClassDeclarationRow},
	)

	deprecatedDeclaredClassesTable = db.NewTableID[felt.ClassHash, classDeclarationRow](
		schema.DeprecatedDeclaredClasses, db.Default, feltKeyCodec(),
		db.Codec[classDeclarationRow]{Encode: encodeClassDeclarationRow, Decode: decodeClassDeclarationRow},
	)

	compiledClassesTable = db.NewTableID[felt.ClassHash, filestore.Location](
		schema.CompiledClasses, db.Default, feltKeyCodec(),
		db.Codec[filestore.Location]{Encode: encodeLocationValue, Decode: decodeLocationValue},
	)
)

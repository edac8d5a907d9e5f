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

// Package schema is the fixed table enumeration of the storage core: one
// entry per on-disk table naming its key/value layout, its wrapper
// choice, and (where it stores a file-store Location instead of an
// inline value) which file store backs it. Modeled on erigon-lib's
// kv/tables.go TableCfg map, generalized from "one table" to "a table
// plus its wrapper and file-store binding".
package schema

// Wrapper names which version-prefix convention a table's value column
// uses. Changing a table's Wrapper after the store has shipped requires
// a migration step, never a silent code change.
type Wrapper int

const (
	// NoVersion means the value carries no version prefix.
	NoVersion Wrapper = iota
	// VersionZero means the value carries a leading 0x00 byte.
	VersionZero
)

// FileStoreKind names which append-only file store a table's Location
// column points into. Tables whose values are stored inline (not as a
// Location) leave this unset (FileStoreNone).
type FileStoreKind int

const (
	FileStoreNone FileStoreKind = iota
	FileStoreStateDiff
	FileStoreClass
	FileStoreDeprecatedClass
	FileStoreCasm
)

// TableFlags mirrors db.TableFlags without importing storage/db, so
// schema stays a leaf package. db.Open does not read these: it binds
// DBIs with the flags of each registered db.TableID.
type TableFlags uint

const (
	Default TableFlags = 0x00
	DupSort TableFlags = 0x04
)

// TableCfgItem describes one table: its mdbx flags, its value wrapper,
// and (if any) the file store its value column addresses into.
type TableCfgItem struct {
	Name      string
	Flags     TableFlags
	Wrapper   Wrapper
	FileStore FileStoreKind
}

// Table name constants, exactly the enumeration of the data model.
const (
	Headers                   = "headers"
	BlockHashToNumber         = "block_hash_to_number"
	BlockSignatures           = "block_signatures"
	Transactions              = "transactions"
	TransactionOutputs        = "transaction_outputs"
	TxHashToIndex             = "tx_hash_to_index"
	Events                    = "events"
	StateDiffs                = "state_diffs"
	DeployedContracts         = "deployed_contracts"
	ContractStorage           = "contract_storage"
	Nonces                    = "nonces"
	DeclaredClasses           = "declared_classes"
	DeprecatedDeclaredClasses = "deprecated_declared_classes"
	CompiledClasses           = "compiled_classes"
	StorageVersion            = "storage_version"
	Markers                   = "markers"
)

// ChainTablesCfg is the single global table enumeration; the tables an
// Environment actually opens are the ones package storage registers.
// Nothing reshapes it at runtime; changing a wrapper
// or flags entry is a new binary plus a migration step, not a config
// option.
var ChainTablesCfg = map[string]TableCfgItem{
	Headers: {
		Name: Headers, Flags: Default, Wrapper: VersionZero,
	},
	BlockHashToNumber: {
		Name: BlockHashToNumber, Flags: Default, Wrapper: NoVersion,
	},
	BlockSignatures: {
		Name: BlockSignatures, Flags: Default, Wrapper: VersionZero,
	},
	Transactions: {
		Name: Transactions, Flags: Default, Wrapper: VersionZero,
	},
	TransactionOutputs: {
		Name: TransactionOutputs, Flags: Default, Wrapper: VersionZero,
	},
	TxHashToIndex: {
		Name: TxHashToIndex, Flags: Default, Wrapper: NoVersion,
	},
	Events: {
		Name: Events, Flags: Default, Wrapper: NoVersion,
	},
	StateDiffs: {
		Name: StateDiffs, Flags: Default, Wrapper: NoVersion, FileStore: FileStoreStateDiff,
	},
	DeployedContracts: {
		Name: DeployedContracts, Flags: Default, Wrapper: NoVersion,
	},
	ContractStorage: {
		// (addr, key, block) is itself the unique key: block is not a
		// DupSort suffix over a shared (addr,key) value, it is the third
		// component of a distinct primary key, per the data model.
		Name: ContractStorage, Flags: Default, Wrapper: NoVersion,
	},
	Nonces: {
		Name: Nonces, Flags: Default, Wrapper: NoVersion,
	},
	DeclaredClasses: {
		Name: DeclaredClasses, Flags: Default, Wrapper: NoVersion, FileStore: FileStoreClass,
	},
	DeprecatedDeclaredClasses: {
		Name: DeprecatedDeclaredClasses, Flags: Default, Wrapper: NoVersion, FileStore: FileStoreDeprecatedClass,
	},
	CompiledClasses: {
		Name: CompiledClasses, Flags: Default, Wrapper: NoVersion, FileStore: FileStoreCasm,
	},
	StorageVersion: {
		Name: StorageVersion, Flags: Default, Wrapper: NoVersion,
	},
	Markers: {
		// One row per MarkerKind, keyed by its single discriminant byte.
		Name: Markers, Flags: Default, Wrapper: NoVersion,
	},
}

// Names returns every table name in ChainTablesCfg, in map iteration
// order.
func Names() []string {
	out := make([]string, 0, len(ChainTablesCfg))
	for name := range ChainTablesCfg {
		out = append(out, name)
	}
	return out
}

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
	"github.com/c2h5oh/datasize"
)

// Scope selects which domains a store retains long-term.
type Scope int

const (
	// FullArchive keeps every domain indefinitely.
	FullArchive Scope = iota
	// StateOnly permits bodies and events to be pruned once their state
	// effects are durable; headers and state are always retained.
	StateOnly
)

// DBConfig sizes the underlying mdbx environment.
type DBConfig struct {
	// Path is not read by Open: the environment's mdbx.dat/mdbx.lck
	// always live in <PathPrefix>/<ChainID>/mdbx.
	Path string `yaml:"path"`

	// MinSize is the environment's starting map size.
	MinSize datasize.ByteSize `yaml:"min_size"`

	// GrowthStep is applied each time the map needs to grow.
	GrowthStep datasize.ByteSize `yaml:"growth_step"`

	// MaxSize is the hard ceiling; writes past it fail with ErrStorageFull.
	MaxSize datasize.ByteSize `yaml:"max_size"`

	// MaxTables bounds how many named DBIs mdbx reserves room for.
	MaxTables int `yaml:"max_tables"`

	// EnforceFileExists refuses to initialize a brand-new store, for
	// operators who want "open" to mean "attach to existing data" and
	// catch a wrong path instead of silently creating one.
	EnforceFileExists bool `yaml:"enforce_file_exists"`
}

// FileStoreConfig sizes one append-only file store.
type FileStoreConfig struct {
	// SegmentMaxSize caps a single segment file before rollover.
	SegmentMaxSize datasize.ByteSize `yaml:"segment_max_size"`

	// GrowthStep is passed through to filestore.Config, but the store
	// does not consult it: a segment never grows past SegmentMaxSize,
	// and an object that would overflow it starts a new segment.
	GrowthStep datasize.ByteSize `yaml:"growth_step"`

	// MaxObjectSize refuses to store any single object larger than this.
	MaxObjectSize datasize.ByteSize `yaml:"max_object_size"`
}

// StorageConfig is the top-level configuration for one chain's storage
// core: its KV environment, its four append-only file stores, and the
// pruning scope it runs under.
type StorageConfig struct {
	// PathPrefix is the root directory; the chain's data lives under
	// <PathPrefix>/<ChainID>/.
	PathPrefix string `yaml:"path_prefix"`

	// ChainID names the subdirectory and is logged on every open.
	ChainID string `yaml:"chain_id"`

	DB          DBConfig        `yaml:"db"`
	StateDiffs  FileStoreConfig `yaml:"state_diffs"`
	Classes     FileStoreConfig `yaml:"classes"`
	Deprecated  FileStoreConfig `yaml:"deprecated_classes"`
	Casm        FileStoreConfig `yaml:"casm"`

	// Scope bounds which domains this store retains.
	Scope Scope `yaml:"scope"`

	// CasmCacheSize is the number of compiled classes kept in the
	// in-memory CASM cache; 0 disables caching.
	CasmCacheSize int `yaml:"casm_cache_size"`

	// CompressionLevel is passed to the zstd blob codec used for
	// state diffs and class bodies.
	CompressionLevel int `yaml:"compression_level"`
}

// DefaultStorageConfig returns reasonable development defaults: a 1 GiB
// starting map growing by 256 MiB steps up to 64 GiB, 512 MiB file-store
// segments, and a 16 MiB per-object ceiling.
func DefaultStorageConfig(pathPrefix, chainID string) StorageConfig {
	fsCfg := FileStoreConfig{
		SegmentMaxSize: 512 * datasize.MB,
		GrowthStep:     64 * datasize.MB,
		MaxObjectSize:  16 * datasize.MB,
	}
	return StorageConfig{
		PathPrefix: pathPrefix,
		ChainID:    chainID,
		DB: DBConfig{
			MinSize:    1 * datasize.GB,
			GrowthStep: 256 * datasize.MB,
			MaxSize:    64 * datasize.GB,
			MaxTables:  32,
		},
		StateDiffs:       fsCfg,
		Classes:          fsCfg,
		Deprecated:       fsCfg,
		Casm:             fsCfg,
		Scope:            FullArchive,
		CasmCacheSize:    4096,
		CompressionLevel: 3,
	}
}

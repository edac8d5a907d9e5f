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
	"context"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/starknetcore/storage/felt"
	"github.com/starknetcore/storage/log"
	"github.com/starknetcore/storage/storage/compress"
	"github.com/starknetcore/storage/storage/db"
	"github.com/starknetcore/storage/storage/filestore"
	"github.com/starknetcore/storage/storage/migration"
)

// Storage is the assembled storage core for one chain: the mdbx
// environment and its bound tables, the four append-only file stores,
// the blob codec shared across them, and the optional CASM cache. Every
// domain file's methods hang off *Storage so they share these without
// each needing its own constructor.
type Storage struct {
	env *db.Environment

	stateDiffStore       *filestore.Store
	classStore           *filestore.Store
	deprecatedClassStore *filestore.Store
	casmStore            *filestore.Store

	blobCodec compress.Compressor
	casmCache *lru.Cache[felt.ClassHash, []byte]
	eventIdx  *eventIndex

	scope Scope
}

// Open assembles a Storage for chainID under cfg.PathPrefix: opens the
// mdbx environment (binding every schema table plus storage_version),
// runs migration.Open/Run, and opens the four append-only file stores.
func Open(ctx context.Context, cfg StorageConfig) (*Storage, error) {
	root := filepath.Join(cfg.PathPrefix, cfg.ChainID)

	env, err := db.Open(
		filepath.Join(root, "mdbx"),
		db.Geometry{
			MinSize:    int64(cfg.DB.MinSize),
			GrowthStep: int64(cfg.DB.GrowthStep),
			MaxSize:    int64(cfg.DB.MaxSize),
		},
		cfg.DB.MaxTables,
		cfg.ChainID,
		registerTables,
	)
	if err != nil {
		return nil, err
	}

	if err := migration.Open(ctx, env, cfg.DB.EnforceFileExists); err != nil {
		env.Close()
		return nil, err
	}

	blobCodec, err := compress.NewZstd(zstd.EncoderLevelFromZstd(cfg.CompressionLevel))
	if err != nil {
		env.Close()
		return nil, err
	}

	s := &Storage{
		env:       env,
		blobCodec: blobCodec,
		eventIdx:  newEventIndex(),
		scope:     cfg.Scope,
	}

	if s.stateDiffStore, err = openFileStore(root, "state_diffs", cfg.StateDiffs); err != nil {
		s.Close()
		return nil, err
	}
	if s.classStore, err = openFileStore(root, "classes", cfg.Classes); err != nil {
		s.Close()
		return nil, err
	}
	if s.deprecatedClassStore, err = openFileStore(root, "deprecated_classes", cfg.Deprecated); err != nil {
		s.Close()
		return nil, err
	}
	if s.casmStore, err = openFileStore(root, "casm", cfg.Casm); err != nil {
		s.Close()
		return nil, err
	}

	if cfg.CasmCacheSize > 0 {
		s.casmCache, err = lru.New[felt.ClassHash, []byte](cfg.CasmCacheSize)
		if err != nil {
			s.Close()
			return nil, err
		}
	}

	s.reportFileStoreStats()
	log.Info("storage: opened", "chain", cfg.ChainID, "path", root, "scope", cfg.Scope)
	return s, nil
}

// reportFileStoreStats publishes each file store's current write offset;
// called after Open and after every AppendX call that writes a blob.
func (s *Storage) reportFileStoreStats() {
	observeFileStoreSize("state_diffs", int64(s.stateDiffStore.Stats().WriteOffset))
	observeFileStoreSize("classes", int64(s.classStore.Stats().WriteOffset))
	observeFileStoreSize("deprecated_classes", int64(s.deprecatedClassStore.Stats().WriteOffset))
	observeFileStoreSize("casm", int64(s.casmStore.Stats().WriteOffset))
}

func openFileStore(root, name string, cfg FileStoreConfig) (*filestore.Store, error) {
	return filestore.Open(filepath.Join(root, name), filestore.Config{
		SegmentMaxSize: uint64(cfg.SegmentMaxSize),
		GrowthStep:     uint64(cfg.GrowthStep),
		MaxObjectSize:  uint64(cfg.MaxObjectSize),
	}, filestore.Location{})
}

// registerTables binds every domain table plus storage_version to the
// environment being opened; it is the single place that must name a new
// table for it to become durable.
func registerTables(reg func(db.TableBinder)) {
	reg(headersTable)
	reg(blockHashToNumberTable)
	reg(blockSignaturesTable)
	reg(transactionsTable)
	reg(transactionOutputsTable)
	reg(txHashToIndexTable)
	reg(eventsTable)
	reg(stateDiffsTable)
	reg(deployedContractsTable)
	reg(contractStorageTable)
	reg(noncesTable)
	reg(declaredClassesTable)
	reg(deprecatedDeclaredClassesTable)
	reg(compiledClassesTable)
	reg(markersTable)
	reg(migration.VersionTable)
}

// Close releases every open resource: the mdbx environment and the four
// file stores.
func (s *Storage) Close() error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.stateDiffStore != nil {
		record(s.stateDiffStore.Close())
	}
	if s.classStore != nil {
		record(s.classStore.Close())
	}
	if s.deprecatedClassStore != nil {
		record(s.deprecatedClassStore.Close())
	}
	if s.casmStore != nil {
		record(s.casmStore.Close())
	}
	if z, ok := s.blobCodec.(*compress.Zstd); ok {
		z.Close()
	}
	if s.env != nil {
		record(s.env.Close())
	}
	return firstErr
}

// SchemaVersion reports the on-disk storage_version row; after a
// successful Open this always equals migration.CurrentVersion.
func (s *Storage) SchemaVersion() (string, error) {
	v, _, err := migration.ReadVersion(s.env)
	return v, err
}

// BeginRO starts a read-only transaction pinning a consistent MVCC
// snapshot as of this call.
func (s *Storage) BeginRO() (*db.RoTx, error) { return s.env.BeginRO() }

// BeginRW blocks until the single process-wide write permit is
// available (or ctx is cancelled), then starts a read-write transaction.
func (s *Storage) BeginRW(ctx context.Context) (*db.RwTx, error) { return s.env.BeginRW(ctx) }

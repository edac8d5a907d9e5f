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

// Package db is the typed wrapper over the memory-mapped B-tree store
// (github.com/erigontech/mdbx-go): environments, read-only/read-write
// transactions, typed tables and cursors. Nothing outside this package
// imports mdbx directly.
package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/erigontech/mdbx-go/mdbx"
	"github.com/gofrs/flock"
	"golang.org/x/sync/semaphore"

	"github.com/starknetcore/storage/log"
)

// TableBinder lets Environment open DBIs for a heterogeneous set of
// TableID[K,V] instances without itself being generic.
type TableBinder interface {
	bind(txn *mdbx.Txn) error
	name() string
}

func (id *TableID[K, V]) bind(txn *mdbx.Txn) error {
	dbi, err := txn.OpenDBI(id.Name, id.Flags.mdbxFlags(), nil, nil)
	if err != nil {
		return err
	}
	id.dbi = dbi
	id.isSet = true
	return nil
}

func (id *TableID[K, V]) name() string { return id.Name }

// Geometry bounds the memory-mapped region: a starting size, a growth
// step applied on demand, and a hard maximum.
type Geometry struct {
	MinSize    int64
	GrowthStep int64
	MaxSize    int64
}

// Environment owns one mdbx environment: its memory-mapped region, its
// fixed set of tables, and the single process-wide write permit. At
// most one RW transaction exists at any instant; TryBeginRW/BeginRW is
// the only way to obtain one.
type Environment struct {
	env     *mdbx.Env
	path    string
	writer  *semaphore.Weighted
	tables  []TableBinder
	runID   string
	dirLock *flock.Flock
}

// Open creates (if absent) and opens the mdbx environment rooted at
// path with the given geometry, then binds every previously-registered
// table to a DBI inside a single bootstrap RW transaction. Before
// touching mdbx at all, it acquires an advisory process-level lock on a
// LOCK sentinel file in path's parent directory, so two node processes
// pointed at the same chain directory fail fast here instead of racing
// mdbx's own lock file.
func Open(path string, geom Geometry, maxTables int, runID string, register func(reg func(TableBinder))) (*Environment, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	dirLock := flock.New(filepath.Join(dir, "LOCK"))
	locked, err := dirLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("db: acquiring directory lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("db: %s is already locked by another process", dir)
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		dirLock.Unlock()
		return nil, err
	}
	env, err := mdbx.NewEnv()
	if err != nil {
		dirLock.Unlock()
		return nil, err
	}
	if err := env.SetGeometry(int(geom.MinSize), int(geom.MinSize), int(geom.MaxSize), int(geom.GrowthStep), -1, -1); err != nil {
		env.Close()
		dirLock.Unlock()
		return nil, err
	}
	if err := env.SetOption(mdbx.OptMaxDB, uint64(maxTables)); err != nil {
		env.Close()
		dirLock.Unlock()
		return nil, err
	}
	if err := env.Open(path, 0, 0o644); err != nil {
		env.Close()
		dirLock.Unlock()
		return nil, err
	}

	e := &Environment{
		env:     env,
		path:    path,
		writer:  semaphore.NewWeighted(1),
		runID:   runID,
		dirLock: dirLock,
	}

	register(func(tb TableBinder) {
		e.tables = append(e.tables, tb)
	})

	txn, err := env.BeginTxn(nil, 0)
	if err != nil {
		env.Close()
		dirLock.Unlock()
		return nil, err
	}
	for _, tb := range e.tables {
		if err := tb.bind(txn); err != nil {
			txn.Abort()
			env.Close()
			dirLock.Unlock()
			return nil, err
		}
	}
	if _, err := txn.Commit(); err != nil {
		env.Close()
		dirLock.Unlock()
		return nil, err
	}

	log.Info("db: environment opened", "path", path, "tables", len(e.tables), "run", runID)
	return e, nil
}

// Close releases the environment and its directory lock. Any
// transaction still open against it at this point is a caller bug;
// mdbx itself will error loudly.
func (e *Environment) Close() error {
	e.env.Close()
	if e.dirLock != nil {
		e.dirLock.Unlock()
	}
	return nil
}

// BeginRO starts a read-only transaction pinning a consistent MVCC
// snapshot as of this call.
func (e *Environment) BeginRO() (*RoTx, error) {
	txn, err := e.env.BeginTxn(nil, mdbx.Readonly)
	if err != nil {
		return nil, err
	}
	return &RoTx{txn: txn}, nil
}

// BeginRW blocks until the single process-wide write permit is
// available (or ctx is cancelled), then starts a read-write
// transaction.
func (e *Environment) BeginRW(ctx context.Context) (*RwTx, error) {
	if err := e.writer.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	txn, err := e.env.BeginTxn(nil, 0)
	if err != nil {
		e.writer.Release(1)
		return nil, err
	}
	return &RwTx{txn: txn, release: func() { e.writer.Release(1) }}, nil
}

// TryBeginRW attempts to start a read-write transaction without
// blocking, returning ErrWriterBusy if one is already active.
func (e *Environment) TryBeginRW() (*RwTx, error) {
	if !e.writer.TryAcquire(1) {
		return nil, ErrWriterBusy
	}
	txn, err := e.env.BeginTxn(nil, 0)
	if err != nil {
		e.writer.Release(1)
		return nil, err
	}
	return &RwTx{txn: txn, release: func() { e.writer.Release(1) }}, nil
}

// Path returns the directory this environment's mdbx.dat/mdbx.lck live in.
func (e *Environment) Path() string { return e.path }

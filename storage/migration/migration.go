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

// Package migration detects the on-disk storage_version, refuses to
// open a store newer than this binary supports, and applies ordered
// migration steps to bring an older store up to CurrentVersion.
// Adapted from the teacher's params.SetN42Version insert-if-absent
// idea, generalized from "write a single global version key once" to
// an ordered, multi-step chain gated by real version comparison.
package migration

import (
	"context"

	"github.com/Masterminds/semver/v3"

	"github.com/starknetcore/storage/log"
	apierrors "github.com/starknetcore/storage/pkg/errors"
	"github.com/starknetcore/storage/storage/db"
)

// CurrentVersion is the on-disk schema version this binary writes and
// expects. Bump it, and add a Step to migrations, whenever a table's
// wrapper or key/value shape changes.
const CurrentVersion = "1.0.0"

// VersionTable is the storage_version table's TableID; callers
// assembling an Environment's full table set (package storage's Open)
// register this alongside every schema-derived table so migration.Open
// can read and write it against a live DBI.
var VersionTable = db.NewTableID[string, string]("storage_version", db.Default,
	db.Codec[string]{
		Encode: func(s string) []byte { return []byte(s) },
		Decode: func(b []byte) (string, error) { return string(b), nil },
	},
	db.Codec[string]{
		Encode: func(s string) []byte { return []byte(s) },
		Decode: func(b []byte) (string, error) { return string(b), nil },
	},
)

// versionKey is the table's single row key, matching the literal
// "storage_version" → semver string mapping of the schema.
const versionKey = "storage_version"

// Step is one pure migration: it either completes and the caller bumps
// storage_version in the same commit, or returns an error and the whole
// RW transaction (version bump included) is rolled back by the caller.
type Step struct {
	FromVersion string
	ToVersion   string
	Apply       func(tx *db.RwTx) error
}

// Registry is the ordered chain of steps from an empty store up to
// CurrentVersion. Appended to as the schema evolves; never reordered or
// edited in place once a version has shipped.
var Registry []Step

// ErrUnsupportedNewerVersion is returned by Open when the on-disk
// version is newer than CurrentVersion: an older binary must never
// silently reinterpret a newer schema.
type ErrUnsupportedNewerVersion struct {
	OnDisk  string
	Current string
}

func (e *ErrUnsupportedNewerVersion) Error() string {
	return "migration: on-disk storage_version " + e.OnDisk + " is newer than this binary's " + e.Current
}

// ErrEmptyStoreNotAllowed is returned by Open when storage_version is
// absent and the caller's StorageConfig.DB.EnforceFileExists forbids
// treating that as a fresh, empty store.
var ErrEmptyStoreNotAllowed = &emptyStoreError{}

type emptyStoreError struct{}

func (e *emptyStoreError) Error() string {
	return "migration: storage_version is absent and an empty store is not permitted here"
}

// Open reads storage_version, refuses a newer-than-supported on-disk
// version, and runs any pending migration steps to bring an older
// store up to CurrentVersion. enforceFileExists mirrors
// StorageConfig.DB.EnforceFileExists.
func Open(ctx context.Context, env *db.Environment, enforceFileExists bool) error {
	onDisk, found, err := readVersion(env)
	if err != nil {
		return err
	}
	if !found {
		if enforceFileExists {
			return ErrEmptyStoreNotAllowed
		}
		return initializeVersion(ctx, env)
	}

	current, err := semver.NewVersion(CurrentVersion)
	if err != nil {
		return err
	}
	disk, err := semver.NewVersion(onDisk)
	if err != nil {
		return err
	}

	switch disk.Compare(current) {
	case 0:
		return nil
	case 1:
		return &ErrUnsupportedNewerVersion{OnDisk: onDisk, Current: CurrentVersion}
	default:
		return Run(ctx, env, onDisk)
	}
}

// Run applies every Registry step in order starting from fromVersion,
// each in its own RW transaction, until CurrentVersion is reached.
func Run(ctx context.Context, env *db.Environment, fromVersion string) error {
	version := fromVersion
	for _, step := range Registry {
		if step.FromVersion != version {
			continue
		}
		if err := runStep(ctx, env, step); err != nil {
			return err
		}
		version = step.ToVersion
		log.Info("migration: applied step", "from", step.FromVersion, "to", step.ToVersion)
		if version == CurrentVersion {
			return nil
		}
	}
	if version != CurrentVersion {
		log.Warn("migration: no further steps registered but version is behind current",
			"version", version, "current", CurrentVersion)
	}
	return nil
}

func runStep(ctx context.Context, env *db.Environment, step Step) error {
	tx, err := env.BeginRW(ctx)
	if err != nil {
		return err
	}
	if err := step.Apply(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := writeVersionLocked(tx, step.ToVersion); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func initializeVersion(ctx context.Context, env *db.Environment) error {
	tx, err := env.BeginRW(ctx)
	if err != nil {
		return err
	}
	if err := writeVersionLocked(tx, CurrentVersion); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func writeVersionLocked(tx *db.RwTx, version string) error {
	table, err := db.OpenRwTable[string, string](tx, VersionTable)
	if err != nil {
		return err
	}
	return table.Upsert(versionKey, version)
}

// ReadVersion returns the on-disk storage_version row, or found=false if
// the store has never been initialized.
func ReadVersion(env *db.Environment) (string, bool, error) {
	return readVersion(env)
}

func readVersion(env *db.Environment) (string, bool, error) {
	tx, err := env.BeginRO()
	if err != nil {
		return "", false, err
	}
	defer tx.Close()

	table, err := db.OpenTable[string, string](tx, VersionTable)
	if err != nil {
		return "", false, err
	}
	v, err := table.Get(versionKey)
	if err != nil {
		if apierrors.Is(err, apierrors.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

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
	"github.com/starknetcore/storage/storage/filestore"
	"github.com/starknetcore/storage/storage/schema"
)

// ClassReader is the read half of the class domain.
type ClassReader interface {
	GetClass(tx db.Tx, classHash felt.ClassHash, atBlock felt.BlockNumber) (ContractClass, bool, error)
	GetDeprecatedClass(tx db.Tx, classHash felt.ClassHash, atBlock felt.BlockNumber) (DeprecatedContractClass, bool, error)
	GetClassMarker(tx db.Tx) (felt.BlockNumber, error)
}

// ClassWriter is the write half of the class domain.
type ClassWriter interface {
	AppendClasses(tx *db.RwTx, n felt.BlockNumber, sierra map[felt.ClassHash]ContractClass, deprecated map[felt.ClassHash]DeprecatedContractClass) error
}

// AppendClasses writes the compiled bytes of every class declared in
// block n's state diff, preconditioned on markers.Class == n and
// markers.State > n. Fails MissingClassDeclaration if a class declared
// at n has no supplied bytes, or ExtraClassDeclaration if a supplied
// class was not declared at n.
func (s *Storage) AppendClasses(tx *db.RwTx, n felt.BlockNumber, sierra map[felt.ClassHash]ContractClass, deprecated map[felt.ClassHash]DeprecatedContractClass) error {
	if err := requireMarker(tx, schema.MarkerClass, n); err != nil {
		return err
	}
	stateMarker, err := s.GetStateMarker(tx)
	if err != nil {
		return err
	}
	if stateMarker <= n {
		return &MarkerMismatchError{Domain: schema.MarkerState, Expected: stateMarker, Got: n + 1}
	}

	declared, err := db.OpenRwTable(tx, declaredClassesTable)
	if err != nil {
		return err
	}
	if err := writeDeclaredClassBodies(tx, s, declared, n, sierra, s.classStore); err != nil {
		return err
	}

	deprecatedTbl, err := db.OpenRwTable(tx, deprecatedDeclaredClassesTable)
	if err != nil {
		return err
	}
	if err := writeDeprecatedClassBodies(tx, s, deprecatedTbl, n, deprecated, s.deprecatedClassStore); err != nil {
		return err
	}

	if err := advanceMarker(tx, schema.MarkerClass, n); err != nil {
		return err
	}
	s.reportFileStoreStats()
	return nil
}

func writeDeclaredClassBodies(tx *db.RwTx, s *Storage, table db.RwTableHandle[felt.ClassHash, classDeclarationRow], n felt.BlockNumber, classes map[felt.ClassHash]ContractClass, store *filestore.Store) error {
	// Every class declared at n must be present exactly once, and every
	// supplied class must have been declared at n.
	seen := map[felt.ClassHash]bool{}
	c, err := table.Cursor()
	if err != nil {
		return err
	}
	defer c.Close()
	for classHash, row, ok, err := c.First(); ok; classHash, row, ok, err = c.Next() {
		if err != nil {
			return err
		}
		if row.Block != n {
			continue
		}
		bytes, supplied := classes[classHash]
		if !supplied {
			return ErrMissingClassDeclaration
		}
		seen[classHash] = true
		compressed, err := s.blobCodec.Compress(bytes.Bytes)
		if err != nil {
			return err
		}
		loc, err := store.Append(compressed)
		if err != nil {
			return err
		}
		row.Location = loc
		if err := table.Upsert(classHash, row); err != nil {
			return err
		}
	}
	for classHash := range classes {
		if !seen[classHash] {
			return ErrExtraClassDeclaration
		}
	}
	return nil
}

func writeDeprecatedClassBodies(tx *db.RwTx, s *Storage, table db.RwTableHandle[felt.ClassHash, classDeclarationRow], n felt.BlockNumber, classes map[felt.ClassHash]DeprecatedContractClass, store *filestore.Store) error {
	seen := map[felt.ClassHash]bool{}
	c, err := table.Cursor()
	if err != nil {
		return err
	}
	defer c.Close()
	for classHash, row, ok, err := c.First(); ok; classHash, row, ok, err = c.Next() {
		if err != nil {
			return err
		}
		if row.Block != n {
			continue
		}
		bytes, supplied := classes[classHash]
		if !supplied {
			return ErrMissingClassDeclaration
		}
		seen[classHash] = true
		compressed, err := s.blobCodec.Compress(bytes.Bytes)
		if err != nil {
			return err
		}
		loc, err := store.Append(compressed)
		if err != nil {
			return err
		}
		row.Location = loc
		if err := table.Upsert(classHash, row); err != nil {
			return err
		}
	}
	for classHash := range classes {
		if !seen[classHash] {
			return ErrExtraClassDeclaration
		}
	}
	return nil
}

// GetClass reads a Sierra class's compiled bytes back from the class
// file store. It reports found=false if the class was declared after
// atBlock or its bytes have not been appended yet; a class's bytes
// never change once declared, so no history walk is needed.
func (s *Storage) GetClass(tx db.Tx, classHash felt.ClassHash, atBlock felt.BlockNumber) (ContractClass, bool, error) {
	h, err := db.OpenTable(tx, declaredClassesTable)
	if err != nil {
		return ContractClass{}, false, err
	}
	row, err := h.Get(classHash)
	if err != nil {
		if apierrors.Is(err, apierrors.ErrKeyNotFound) {
			return ContractClass{}, false, nil
		}
		return ContractClass{}, false, err
	}
	if row.Block > atBlock || row.Location.IsZero() {
		return ContractClass{}, false, nil
	}
	raw, err := s.classStore.Read(row.Location)
	if err != nil {
		return ContractClass{}, false, err
	}
	decompressed, err := s.blobCodec.Decompress(raw)
	if err != nil {
		return ContractClass{}, false, err
	}
	return ContractClass{Bytes: decompressed}, true, nil
}

// GetDeprecatedClass reads a Cairo-0 class's bytes back from the
// deprecated-class file store.
func (s *Storage) GetDeprecatedClass(tx db.Tx, classHash felt.ClassHash, atBlock felt.BlockNumber) (DeprecatedContractClass, bool, error) {
	h, err := db.OpenTable(tx, deprecatedDeclaredClassesTable)
	if err != nil {
		return DeprecatedContractClass{}, false, err
	}
	row, err := h.Get(classHash)
	if err != nil {
		if apierrors.Is(err, apierrors.ErrKeyNotFound) {
			return DeprecatedContractClass{}, false, nil
		}
		return DeprecatedContractClass{}, false, err
	}
	if row.Block > atBlock || row.Location.IsZero() {
		return DeprecatedContractClass{}, false, nil
	}
	raw, err := s.deprecatedClassStore.Read(row.Location)
	if err != nil {
		return DeprecatedContractClass{}, false, err
	}
	decompressed, err := s.blobCodec.Decompress(raw)
	if err != nil {
		return DeprecatedContractClass{}, false, err
	}
	return DeprecatedContractClass{Bytes: decompressed}, true, nil
}

// GetClassMarker returns the smallest block number not yet appended to
// the class domain.
func (s *Storage) GetClassMarker(tx db.Tx) (felt.BlockNumber, error) {
	return getMarker(tx, schema.MarkerClass)
}

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
	"github.com/starknetcore/storage/storage/schema"
)

// CompiledClassReader is the read half of the compiled-class domain.
type CompiledClassReader interface {
	GetCompiledClass(tx db.Tx, classHash felt.ClassHash) (CasmContractClass, bool, error)
	GetCompiledClassMarker(tx db.Tx) (felt.BlockNumber, error)
}

// CompiledClassWriter is the write half of the compiled-class domain.
type CompiledClassWriter interface {
	AppendCompiledClass(tx *db.RwTx, classHash felt.ClassHash, casm CasmContractClass) error
}

// AppendCompiledClass writes the CASM for a Sierra class, preconditioned
// on that class having been declared. markers.CompiledClass advances
// past a block once every Sierra class declared there has its CASM
// present.
func (s *Storage) AppendCompiledClass(tx *db.RwTx, classHash felt.ClassHash, casm CasmContractClass) error {
	declared, err := db.OpenTable(tx, declaredClassesTable)
	if err != nil {
		return err
	}
	declRow, err := declared.Get(classHash)
	if err != nil {
		if apierrors.Is(err, apierrors.ErrKeyNotFound) {
			return ErrNoSierraClass
		}
		return err
	}

	compressed, err := s.blobCodec.Compress(casm.Bytes)
	if err != nil {
		return err
	}
	loc, err := s.casmStore.Append(compressed)
	if err != nil {
		return err
	}

	compiled, err := db.OpenRwTable(tx, compiledClassesTable)
	if err != nil {
		return err
	}
	if err := compiled.Upsert(classHash, loc); err != nil {
		return err
	}
	if s.casmCache != nil {
		s.casmCache.Add(classHash, casm.Bytes)
	}

	if err := s.advanceCompiledClassMarker(tx, declRow.Block); err != nil {
		return err
	}
	s.reportFileStoreStats()
	return nil
}

// advanceCompiledClassMarker advances markers.CompiledClass past
// declaringBlock once every Sierra class declared at markers.CompiledClass
// (and every earlier still-outstanding block) has a CASM present. It
// walks forward block by block rather than jumping straight to
// declaringBlock, since an earlier block may still be missing CASM for
// one of its own classes. The walk never passes markers.Class: a
// declared_classes row only placeholders a class until AppendClasses
// writes its body, so compiled classes must not outrun class bodies
// even though AppendCompiledClass itself only requires the placeholder.
func (s *Storage) advanceCompiledClassMarker(tx *db.RwTx, declaringBlock felt.BlockNumber) error {
	marker, err := getMarker(tx, schema.MarkerCompiledClass)
	if err != nil {
		return err
	}
	stateMarker, err := s.GetStateMarker(tx)
	if err != nil {
		return err
	}
	classMarker, err := s.GetClassMarker(tx)
	if err != nil {
		return err
	}
	limit := stateMarker
	if classMarker < limit {
		limit = classMarker
	}

	declared, err := db.OpenTable(tx, declaredClassesTable)
	if err != nil {
		return err
	}
	compiled, err := db.OpenTable(tx, compiledClassesTable)
	if err != nil {
		return err
	}

	for marker < limit {
		complete, err := blockFullyCompiled(declared, compiled, marker)
		if err != nil {
			return err
		}
		if !complete {
			break
		}
		marker++
	}
	return setMarker(tx, schema.MarkerCompiledClass, marker)
}

func blockFullyCompiled[V any](declared db.TableHandle[felt.ClassHash, classDeclarationRow], compiled db.TableHandle[felt.ClassHash, V], block felt.BlockNumber) (bool, error) {
	c, err := declared.Cursor()
	if err != nil {
		return false, err
	}
	defer c.Close()
	for classHash, row, ok, err := c.First(); ok; classHash, row, ok, err = c.Next() {
		if err != nil {
			return false, err
		}
		if row.Block != block {
			continue
		}
		if has, err := compiled.Has(classHash); err != nil {
			return false, err
		} else if !has {
			return false, nil
		}
	}
	return true, nil
}

// GetCompiledClass reads a class's CASM, preferring the in-memory cache.
func (s *Storage) GetCompiledClass(tx db.Tx, classHash felt.ClassHash) (CasmContractClass, bool, error) {
	if s.casmCache != nil {
		if bytes, ok := s.casmCache.Get(classHash); ok {
			return CasmContractClass{Bytes: bytes}, true, nil
		}
	}
	h, err := db.OpenTable(tx, compiledClassesTable)
	if err != nil {
		return CasmContractClass{}, false, err
	}
	loc, err := h.Get(classHash)
	if err != nil {
		if apierrors.Is(err, apierrors.ErrKeyNotFound) {
			return CasmContractClass{}, false, nil
		}
		return CasmContractClass{}, false, err
	}
	raw, err := s.casmStore.Read(loc)
	if err != nil {
		return CasmContractClass{}, false, err
	}
	decompressed, err := s.blobCodec.Decompress(raw)
	if err != nil {
		return CasmContractClass{}, false, err
	}
	if s.casmCache != nil {
		s.casmCache.Add(classHash, decompressed)
	}
	return CasmContractClass{Bytes: decompressed}, true, nil
}

// GetCompiledClassMarker returns the smallest block number whose Sierra
// classes do not all have CASM present yet.
func (s *Storage) GetCompiledClassMarker(tx db.Tx) (felt.BlockNumber, error) {
	return getMarker(tx, schema.MarkerCompiledClass)
}

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

package db

import "github.com/erigontech/mdbx-go/mdbx"

// TableFlags mirrors the small subset of mdbx DBI flags this schema
// needs, named the way erigon-lib/kv's TableCfg does.
type TableFlags uint

const (
	Default    TableFlags = 0x00
	DupSort    TableFlags = 0x04
	IntegerKey TableFlags = 0x08
)

func (f TableFlags) mdbxFlags() mdbx.DBIFlags {
	var out mdbx.DBIFlags
	out |= mdbx.Create
	if f&DupSort != 0 {
		out |= mdbx.DupSort
	}
	if f&IntegerKey != 0 {
		out |= mdbx.IntegerKey
	}
	return out
}

// Codec encodes and decodes keys or values of type T to/from the
// canonical byte form a table column commits to.
type Codec[T any] struct {
	Encode func(T) []byte
	Decode func([]byte) (T, error)
}

// TableID is a typed, zero-cost handle naming one table: its mdbx DBI
// name, flags, and the codecs for its key and value types. It is
// created once when an Environment opens and is safe to share across
// goroutines and transactions.
type TableID[K, V any] struct {
	Name    string
	Flags   TableFlags
	KeyCdc  Codec[K]
	ValCdc  Codec[V]
	dbi     mdbx.DBI
	isSet   bool
}

// NewTableID builds a TableID; call Environment.Open to bind it to a
// live DBI before using it with OpenTable.
func NewTableID[K, V any](name string, flags TableFlags, keyCdc Codec[K], valCdc Codec[V]) *TableID[K, V] {
	return &TableID[K, V]{Name: name, Flags: flags, KeyCdc: keyCdc, ValCdc: valCdc}
}

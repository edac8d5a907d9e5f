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

import (
	"bytes"

	"github.com/erigontech/mdbx-go/mdbx"

	apierrors "github.com/starknetcore/storage/pkg/errors"
)

// TableHandle is a TableID bound to one transaction: the thing callers
// actually call Get/Cursor on. OpenTable returns ErrUnknownTable if id
// was never bound to a DBI (a table Open never saw registered).
type TableHandle[K, V any] struct {
	id  *TableID[K, V]
	txn *mdbx.Txn
}

// OpenTable binds id to tx, for reading. Works against both RoTx and RwTx.
func OpenTable[K, V any](tx Tx, id *TableID[K, V]) (TableHandle[K, V], error) {
	txn, err := tx.raw()
	if err != nil {
		return TableHandle[K, V]{}, err
	}
	if !id.isSet {
		return TableHandle[K, V]{}, ErrUnknownTable
	}
	return TableHandle[K, V]{id: id, txn: txn}, nil
}

// Get looks up key, returning apierrors.ErrKeyNotFound (wrapped with the
// table name) when absent.
func (h TableHandle[K, V]) Get(key K) (V, error) {
	var zero V
	raw, err := h.txn.Get(h.id.dbi, h.id.KeyCdc.Encode(key))
	if err != nil {
		if mdbx.IsNotFound(err) {
			return zero, apierrors.Wrap(apierrors.ErrKeyNotFound, h.id.Name)
		}
		return zero, err
	}
	return h.id.ValCdc.Decode(raw)
}

// Has reports whether key is present without decoding its value.
func (h TableHandle[K, V]) Has(key K) (bool, error) {
	_, err := h.txn.Get(h.id.dbi, h.id.KeyCdc.Encode(key))
	if err != nil {
		if mdbx.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Cursor opens a cursor over the table for range scans.
func (h TableHandle[K, V]) Cursor() (Cursor[K, V], error) {
	c, err := h.txn.OpenCursor(h.id.dbi)
	if err != nil {
		return Cursor[K, V]{}, err
	}
	return Cursor[K, V]{id: h.id, cur: c}, nil
}

// RwTableHandle adds mutation to TableHandle; only reachable from an
// RwTx, so its presence in a call signature is itself the write-access
// proof the compiler enforces.
type RwTableHandle[K, V any] struct {
	TableHandle[K, V]
}

// OpenRwTable binds id to tx for both reading and writing.
func OpenRwTable[K, V any](tx *RwTx, id *TableID[K, V]) (RwTableHandle[K, V], error) {
	h, err := OpenTable[K, V](tx, id)
	if err != nil {
		return RwTableHandle[K, V]{}, err
	}
	return RwTableHandle[K, V]{TableHandle: h}, nil
}

// Upsert writes key/value unconditionally, overwriting any prior value.
func (h RwTableHandle[K, V]) Upsert(key K, val V) error {
	return h.txn.Put(h.id.dbi, h.id.KeyCdc.Encode(key), h.id.ValCdc.Encode(val), 0)
}

// Insert writes key/value only if key is absent, returning
// ErrAlreadyExists otherwise.
func (h RwTableHandle[K, V]) Insert(key K, val V) error {
	err := h.txn.Put(h.id.dbi, h.id.KeyCdc.Encode(key), h.id.ValCdc.Encode(val), mdbx.NoOverwrite)
	if mdbx.IsKeyExist(err) {
		return ErrAlreadyExists
	}
	return err
}

// Delete removes key, silently succeeding if it was already absent.
func (h RwTableHandle[K, V]) Delete(key K) error {
	err := h.txn.Del(h.id.dbi, h.id.KeyCdc.Encode(key), nil)
	if err != nil && mdbx.IsNotFound(err) {
		return nil
	}
	return err
}

// Cursor is a typed range-scan handle over one table, valid for the
// lifetime of the transaction that opened it.
type Cursor[K, V any] struct {
	id  *TableID[K, V]
	cur *mdbx.Cursor
}

// Close releases the cursor. Cursors do not need to be closed before
// their owning transaction ends, but doing so eagerly frees it for
// scans that open many short-lived cursors in one transaction.
func (c Cursor[K, V]) Close() {
	if c.cur != nil {
		c.cur.Close()
	}
}

func (c Cursor[K, V]) decode(k, v []byte) (K, V, error) {
	var zk K
	var zv V
	key, err := c.id.KeyCdc.Decode(k)
	if err != nil {
		return zk, zv, err
	}
	val, err := c.id.ValCdc.Decode(v)
	if err != nil {
		return zk, zv, err
	}
	return key, val, nil
}

// First positions at the lowest key in the table.
func (c Cursor[K, V]) First() (K, V, bool, error) {
	k, v, err := c.cur.Get(nil, nil, mdbx.First)
	return c.ret(k, v, err)
}

// Last positions at the highest key in the table.
func (c Cursor[K, V]) Last() (K, V, bool, error) {
	k, v, err := c.cur.Get(nil, nil, mdbx.Last)
	return c.ret(k, v, err)
}

// Next advances to the following key in ascending order.
func (c Cursor[K, V]) Next() (K, V, bool, error) {
	k, v, err := c.cur.Get(nil, nil, mdbx.Next)
	return c.ret(k, v, err)
}

// Prev steps back to the preceding key in ascending order.
func (c Cursor[K, V]) Prev() (K, V, bool, error) {
	k, v, err := c.cur.Get(nil, nil, mdbx.Prev)
	return c.ret(k, v, err)
}

// Seek positions at key exactly, returning found=false if key is absent.
func (c Cursor[K, V]) Seek(key K) (K, V, bool, error) {
	k, v, err := c.cur.Get(c.id.KeyCdc.Encode(key), nil, mdbx.SetKey)
	return c.ret(k, v, err)
}

// LowerBound positions at the smallest key >= key.
func (c Cursor[K, V]) LowerBound(key K) (K, V, bool, error) {
	k, v, err := c.cur.Get(c.id.KeyCdc.Encode(key), nil, mdbx.SetRange)
	return c.ret(k, v, err)
}

// UpperBound positions at the smallest key > key: SetRange lands on the
// smallest key >= key, so an exact match is stepped past with Next.
func (c Cursor[K, V]) UpperBound(key K) (K, V, bool, error) {
	enc := c.id.KeyCdc.Encode(key)
	k, v, err := c.cur.Get(enc, nil, mdbx.SetRange)
	if err != nil {
		if mdbx.IsNotFound(err) {
			var zk K
			var zv V
			return zk, zv, false, nil
		}
		var zk K
		var zv V
		return zk, zv, false, err
	}
	if bytes.Equal(k, enc) {
		k, v, err = c.cur.Get(nil, nil, mdbx.Next)
	}
	return c.ret(k, v, err)
}

func (c Cursor[K, V]) ret(k, v []byte, err error) (K, V, bool, error) {
	var zk K
	var zv V
	if err != nil {
		if mdbx.IsNotFound(err) {
			return zk, zv, false, nil
		}
		return zk, zv, false, err
	}
	key, val, err := c.decode(k, v)
	if err != nil {
		return zk, zv, false, err
	}
	return key, val, true, nil
}

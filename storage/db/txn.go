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

// Tx is satisfied by both RoTx and RwTx: whatever OpenTable needs to
// reach the underlying mdbx transaction. Callers never see mdbx.Txn
// directly.
type Tx interface {
	raw() (*mdbx.Txn, error)
}

// RoTx is a read-only transaction pinned to a single MVCC snapshot for
// its whole lifetime. It never commits; Close always aborts.
type RoTx struct {
	txn    *mdbx.Txn
	closed bool
}

func (t *RoTx) raw() (*mdbx.Txn, error) {
	if t.closed {
		return nil, ErrTxClosed
	}
	return t.txn, nil
}

// Close releases the snapshot this transaction was reading. It is safe
// to call more than once.
func (t *RoTx) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	t.txn.Abort()
	return nil
}

// RwTx is the single live read-write transaction at any instant. Commit
// and Rollback both release the process-wide write permit exactly
// once, however the caller reaches them.
type RwTx struct {
	txn     *mdbx.Txn
	release func()
	closed  bool
}

func (t *RwTx) raw() (*mdbx.Txn, error) {
	if t.closed {
		return nil, ErrTxClosed
	}
	return t.txn, nil
}

// Commit durably applies every write this transaction made and
// releases the write permit.
func (t *RwTx) Commit() error {
	if t.closed {
		return ErrTxClosed
	}
	t.closed = true
	defer t.release()
	_, err := t.txn.Commit()
	return err
}

// Rollback discards every write this transaction made and releases the
// write permit. Safe to call after Commit has already run; it is then
// a no-op.
func (t *RwTx) Rollback() error {
	if t.closed {
		return nil
	}
	t.closed = true
	defer t.release()
	t.txn.Abort()
	return nil
}

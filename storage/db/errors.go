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

import "errors"

var (
	// ErrAlreadyExists is returned by Insert when the key is already present.
	ErrAlreadyExists = errors.New("db: key already exists")
	// ErrStorageFull maps mdbx's MDBX_MAP_FULL: the environment has grown
	// to its configured max_size and cannot accept the write.
	ErrStorageFull = errors.New("db: storage full (map size exhausted)")
	// ErrWriterBusy is returned by TryBeginRW when another RW transaction
	// is already in flight.
	ErrWriterBusy = errors.New("db: a read-write transaction is already active")
	// ErrTxClosed is returned by any operation against a transaction that
	// has already committed, rolled back, or aborted.
	ErrTxClosed = errors.New("db: transaction already closed")
	// ErrUnknownTable is returned when a TableID has no corresponding DBI
	// in the opened environment (a schema/DBI mismatch).
	ErrUnknownTable = errors.New("db: unknown table")
)

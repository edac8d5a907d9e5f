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

// HeaderReader is the read half of the header domain, split out the way
// the teacher splits ChainReader from ChainWriter so read-only call
// sites never gain write access by accident.
type HeaderReader interface {
	GetHeader(tx db.Tx, n felt.BlockNumber) (BlockHeader, bool, error)
	GetBlockNumberByHash(tx db.Tx, h felt.BlockHash) (felt.BlockNumber, bool, error)
	GetHeaderMarker(tx db.Tx) (felt.BlockNumber, error)
}

// HeaderWriter is the write half of the header domain.
type HeaderWriter interface {
	AppendHeader(tx *db.RwTx, n felt.BlockNumber, h BlockHeader) error
}

// AppendHeader writes header h at block n, preconditioned on
// markers.Header == n. On success markers.Header becomes n+1.
func AppendHeader(tx *db.RwTx, n felt.BlockNumber, h BlockHeader) error {
	if err := requireMarker(tx, schema.MarkerHeader, n); err != nil {
		return err
	}

	hashes, err := db.OpenRwTable(tx, blockHashToNumberTable)
	if err != nil {
		return err
	}
	if err := hashes.Insert(h.Hash, n); err != nil {
		if err == db.ErrAlreadyExists {
			return ErrDuplicateHash
		}
		return err
	}

	headers, err := db.OpenRwTable(tx, headersTable)
	if err != nil {
		return err
	}
	if err := headers.Upsert(n, h); err != nil {
		return err
	}

	return advanceMarker(tx, schema.MarkerHeader, n)
}

// GetHeader returns the header stored at block n, or found=false if n
// is at or beyond the header marker.
func GetHeader(tx db.Tx, n felt.BlockNumber) (BlockHeader, bool, error) {
	h, err := db.OpenTable(tx, headersTable)
	if err != nil {
		return BlockHeader{}, false, err
	}
	v, err := h.Get(n)
	if err != nil {
		if apierrors.Is(err, apierrors.ErrKeyNotFound) {
			return BlockHeader{}, false, nil
		}
		return BlockHeader{}, false, err
	}
	return v, true, nil
}

// GetBlockNumberByHash resolves a block hash to its block number.
func GetBlockNumberByHash(tx db.Tx, hash felt.BlockHash) (felt.BlockNumber, bool, error) {
	h, err := db.OpenTable(tx, blockHashToNumberTable)
	if err != nil {
		return 0, false, err
	}
	n, err := h.Get(hash)
	if err != nil {
		if apierrors.Is(err, apierrors.ErrKeyNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return n, true, nil
}

// GetHeaderMarker returns the smallest block number not yet appended
// to the header domain.
func GetHeaderMarker(tx db.Tx) (felt.BlockNumber, error) {
	return getMarker(tx, schema.MarkerHeader)
}

// AppendBlockSignature records the (0 or 1) signature over block n's
// header. It carries no marker of its own; it is valid once n has a
// header.
func AppendBlockSignature(tx *db.RwTx, n felt.BlockNumber, sig BlockSignature) error {
	marker, err := GetHeaderMarker(tx)
	if err != nil {
		return err
	}
	if n >= marker {
		return &MarkerMismatchError{Domain: schema.MarkerHeader, Expected: marker, Got: n}
	}
	h, err := db.OpenRwTable(tx, blockSignaturesTable)
	if err != nil {
		return err
	}
	return h.Upsert(n, sig)
}

// GetBlockSignature returns the signature recorded for block n, if any.
func GetBlockSignature(tx db.Tx, n felt.BlockNumber) (BlockSignature, bool, error) {
	h, err := db.OpenTable(tx, blockSignaturesTable)
	if err != nil {
		return BlockSignature{}, false, err
	}
	sig, err := h.Get(n)
	if err != nil {
		if apierrors.Is(err, apierrors.ErrKeyNotFound) {
			return BlockSignature{}, false, nil
		}
		return BlockSignature{}, false, err
	}
	return sig, true, nil
}

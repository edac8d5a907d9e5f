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

func markerKindKeyCodec() db.Codec[schema.MarkerKind] {
	return db.Codec[schema.MarkerKind]{
		Encode: func(k schema.MarkerKind) []byte { return []byte{byte(k)} },
		Decode: func(b []byte) (schema.MarkerKind, error) {
			if len(b) != 1 {
				return 0, apierrors.New("markers: malformed marker key")
			}
			return schema.MarkerKind(b[0]), nil
		},
	}
}

var markersTable = db.NewTableID[schema.MarkerKind, felt.BlockNumber](
	schema.Markers, db.Default, markerKindKeyCodec(), blockNumberKeyCodec(),
)

// readMarkers loads every marker, defaulting absent rows to 0 (the
// state of a fresh store before any append_* call).
func readMarkers(tx db.Tx) (schema.Markers, error) {
	var out schema.Markers
	h, err := db.OpenTable(tx, markersTable)
	if err != nil {
		return out, err
	}
	for kind := schema.MarkerHeader; kind <= schema.MarkerBaseLayer; kind++ {
		n, err := h.Get(kind)
		if err != nil {
			if apierrors.Is(err, apierrors.ErrKeyNotFound) {
				continue
			}
			return out, err
		}
		out.Set(kind, n)
	}
	return out, nil
}

// getMarker reads a single marker, defaulting to 0 if no row exists yet.
func getMarker(tx db.Tx, kind schema.MarkerKind) (felt.BlockNumber, error) {
	h, err := db.OpenTable(tx, markersTable)
	if err != nil {
		return 0, err
	}
	n, err := h.Get(kind)
	if err != nil {
		if apierrors.Is(err, apierrors.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

// setMarker overwrites one marker's value within an in-flight RW transaction.
func setMarker(tx *db.RwTx, kind schema.MarkerKind, n felt.BlockNumber) error {
	h, err := db.OpenRwTable(tx, markersTable)
	if err != nil {
		return err
	}
	if err := h.Upsert(kind, n); err != nil {
		return err
	}
	observeMarker(kind, uint64(n))
	return nil
}

// requireMarker returns MarkerMismatchError unless the domain's marker
// currently equals want, the shared precondition check for every
// append_* operation.
func requireMarker(tx db.Tx, kind schema.MarkerKind, want felt.BlockNumber) error {
	got, err := getMarker(tx, kind)
	if err != nil {
		return err
	}
	if got != want {
		return &MarkerMismatchError{Domain: kind, Expected: got, Got: want}
	}
	return nil
}

// advanceMarker sets kind's marker to n+1, the postcondition every
// append_* operation shares.
func advanceMarker(tx *db.RwTx, kind schema.MarkerKind, n felt.BlockNumber) error {
	return setMarker(tx, kind, n+1)
}

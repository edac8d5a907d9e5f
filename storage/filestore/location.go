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

// Package filestore is the append-only secondary storage for large,
// write-once, read-few values (raw state diffs, contract classes, CASM)
// that the KV tables address only by Location. Segments are ordinary
// files read and written with the standard library; no third-party mmap
// library appears anywhere in the retrieved example pack, so this is a
// deliberate stdlib boundary (see DESIGN.md).
package filestore

import (
	"encoding/binary"

	"github.com/starknetcore/storage/storage/serde"
)

// Location addresses a byte range within one segment of one file
// store. It is the only thing a KV value column ever stores for a
// file-store-backed table.
type Location struct {
	Segment uint32
	Offset  uint64
	Length  uint64
}

// End returns the first byte offset past this Location within its segment.
func (l Location) End() uint64 { return l.Offset + l.Length }

// IsZero reports whether l is the zero Location, used as the
// declared-but-not-yet-filled placeholder for declared_classes rows
// written before their class bytes land.
func (l Location) IsZero() bool { return l == Location{} }

// After reports whether l is strictly later in file-store order than
// other: a higher segment, or the same segment at a later offset.
// Segments are filled strictly in order, so this totally orders every
// Location ever issued by one Store.
func (l Location) After(other Location) bool {
	if l.Segment != other.Segment {
		return l.Segment > other.Segment
	}
	return l.End() > other.End()
}

// Encode writes Location as a fixed 20-byte big-endian record:
// segment(4) | offset(8) | length(8).
func (l Location) Encode() []byte {
	buf := make([]byte, 20)
	binary.BigEndian.PutUint32(buf[0:4], l.Segment)
	binary.BigEndian.PutUint64(buf[4:12], l.Offset)
	binary.BigEndian.PutUint64(buf[12:20], l.Length)
	return buf
}

// DecodeLocation parses the fixed 20-byte record Encode produces.
func DecodeLocation(b []byte) (Location, error) {
	if len(b) != 20 {
		return Location{}, serde.ErrMalformed
	}
	return Location{
		Segment: binary.BigEndian.Uint32(b[0:4]),
		Offset:  binary.BigEndian.Uint64(b[4:12]),
		Length:  binary.BigEndian.Uint64(b[12:20]),
	}, nil
}

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

// Package serde implements the canonical byte encoding every stored type
// uses: fixed-width big-endian integers so key byte order equals numeric
// order, length-prefixed sequences, one-byte-discriminant options and
// sum types, and a version-prefix wrapper chosen once per table column.
package serde

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/starknetcore/storage/internal/bufpool"
)

// Sentinel errors mirroring SerdeError::{Io,Malformed,UnknownVersion}.
var (
	ErrIO             = errors.New("serde: io error")
	ErrMalformed      = errors.New("serde: malformed input")
	ErrTrailingBytes   = fmt.Errorf("%w: trailing bytes after decode", ErrMalformed)
	ErrUnknownVersion = errors.New("serde: unknown version byte")
)

// Encoder marshals a value to its canonical byte form.
type Encoder interface {
	Encode() ([]byte, error)
}

// Decoder unmarshals a value from its canonical byte form. Decode must
// return ErrTrailingBytes if rest is non-empty after consuming the value.
type Decoder[T any] func(b []byte) (value T, err error)

// PutUint64 appends the big-endian encoding of v to dst.
func PutUint64(dst []byte, v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return append(dst, buf[:]...)
}

// GetUint64 reads a big-endian uint64 from the front of b, returning the
// value and the remaining bytes.
func GetUint64(b []byte) (uint64, []byte, error) {
	if len(b) < 8 {
		return 0, nil, fmt.Errorf("%w: need 8 bytes for uint64, have %d", ErrMalformed, len(b))
	}
	return binary.BigEndian.Uint64(b[:8]), b[8:], nil
}

// PutUint32 appends the big-endian encoding of v to dst.
func PutUint32(dst []byte, v uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return append(dst, buf[:]...)
}

// GetUint32 reads a big-endian uint32 from the front of b.
func GetUint32(b []byte) (uint32, []byte, error) {
	if len(b) < 4 {
		return 0, nil, fmt.Errorf("%w: need 4 bytes for uint32, have %d", ErrMalformed, len(b))
	}
	return binary.BigEndian.Uint32(b[:4]), b[4:], nil
}

// Composite concatenates fixed-size or length-prefixed components, in
// the order given, to form a composite table key whose byte order
// matches the declared tuple order.
func Composite(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// PutBytes appends a 4-byte length prefix followed by b (the "Sequence"
// framing rule, reused for any length-prefixed byte blob).
func PutBytes(dst []byte, b []byte) []byte {
	dst = PutUint32(dst, uint32(len(b)))
	return append(dst, b...)
}

// GetBytes reads a length-prefixed byte blob from the front of b.
func GetBytes(b []byte) ([]byte, []byte, error) {
	n, rest, err := GetUint32(b)
	if err != nil {
		return nil, nil, err
	}
	if uint32(len(rest)) < n {
		return nil, nil, fmt.Errorf("%w: need %d bytes, have %d", ErrMalformed, n, len(rest))
	}
	return rest[:n], rest[n:], nil
}

// RequireExhausted returns ErrTrailingBytes if rest is non-empty; every
// top-level Decode call must end with this check.
func RequireExhausted(rest []byte) error {
	if len(rest) != 0 {
		return ErrTrailingBytes
	}
	return nil
}

// PutSequence encodes a 4-byte length followed by each element encoded
// by encode, in order.
func PutSequence[T any](dst []byte, items []T, encode func(dst []byte, v T) []byte) []byte {
	dst = PutUint32(dst, uint32(len(items)))
	for _, it := range items {
		dst = encode(dst, it)
	}
	return dst
}

// GetSequence decodes a length-prefixed sequence written by PutSequence.
func GetSequence[T any](b []byte, decode func(b []byte) (T, []byte, error)) ([]T, []byte, error) {
	n, rest, err := GetUint32(b)
	if err != nil {
		return nil, nil, err
	}
	items := make([]T, 0, n)
	for i := uint32(0); i < n; i++ {
		var v T
		v, rest, err = decode(rest)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, v)
	}
	return items, rest, nil
}

// PutOption encodes presence as a single discriminant byte (1 = Some, 0
// = None) followed by the inner encoding when present.
func PutOption[T any](dst []byte, v *T, encode func(dst []byte, v T) []byte) []byte {
	if v == nil {
		return append(dst, 0)
	}
	dst = append(dst, 1)
	return encode(dst, *v)
}

// GetOption decodes a value written by PutOption.
func GetOption[T any](b []byte, decode func(b []byte) (T, []byte, error)) (*T, []byte, error) {
	if len(b) < 1 {
		return nil, nil, fmt.Errorf("%w: missing option discriminant", ErrMalformed)
	}
	disc, rest := b[0], b[1:]
	switch disc {
	case 0:
		return nil, rest, nil
	case 1:
		v, rest2, err := decode(rest)
		if err != nil {
			return nil, nil, err
		}
		return &v, rest2, nil
	default:
		return nil, nil, fmt.Errorf("%w: option discriminant %d", ErrMalformed, disc)
	}
}

// Scratch returns a pooled byte buffer with the given capacity hint;
// callers must return it via bufpool.Put when done encoding.
func Scratch(hint int) []byte {
	return bufpool.Get(hint)
}

// Release returns b to the shared pool.
func Release(b []byte) {
	bufpool.Put(b)
}

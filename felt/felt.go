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

// Package felt defines the primitive domain types of the storage core:
// the 32-byte Stark field element and the small fixed-width integers used
// as block/tx/event coordinates. All of them are total-ordered by their
// byte encoding, which is what lets MDBX-style byte-lex key comparison
// double as numeric/tuple comparison.
package felt

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/holiman/uint256"
)

// Size is the width, in bytes, of a Felt.
const Size = 32

// Felt is a Stark field element, stored big-endian. It backs ClassHash,
// CompiledClassHash, ContractAddress, Nonce, StorageKey, TxHash and
// BlockHash.
type Felt [Size]byte

// Type aliases: distinct names for documentation purposes, identical
// encoding and comparison behavior.
type (
	BlockHash         = Felt
	ClassHash         = Felt
	CompiledClassHash = Felt
	ContractAddress   = Felt
	Nonce             = Felt
	StorageKey        = Felt
	TxHash            = Felt
)

// BlockNumber is the height of a block, big-endian on disk so byte-lex
// key order equals numeric order.
type BlockNumber uint64

// TxOffsetInBlock is the zero-based position of a transaction within its
// block's transaction sequence.
type TxOffsetInBlock uint32

// EventIndexInTx is the zero-based position of an event within the
// events emitted by a single transaction.
type EventIndexInTx uint32

// FromBytes copies b (must be exactly Size bytes) into a new Felt.
func FromBytes(b []byte) (Felt, error) {
	var f Felt
	if len(b) != Size {
		return f, fmt.Errorf("felt: want %d bytes, got %d", Size, len(b))
	}
	copy(f[:], b)
	return f, nil
}

// FromUint64 embeds a uint64 into the low-order bytes of a Felt.
func FromUint64(v uint64) Felt {
	var f Felt
	binary.BigEndian.PutUint64(f[Size-8:], v)
	return f
}

// FromUint256 converts a 256-bit integer into its big-endian Felt form.
func FromUint256(v *uint256.Int) Felt {
	var f Felt
	v.WriteToSlice(f[:])
	return f
}

// Uint256 reinterprets the felt as a 256-bit unsigned integer.
func (f Felt) Uint256() *uint256.Int {
	return new(uint256.Int).SetBytes(f[:])
}

// IsZero reports whether f is the all-zero felt.
func (f Felt) IsZero() bool {
	return f == Felt{}
}

// Bytes returns the big-endian byte slice backing f.
func (f Felt) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, f[:])
	return out
}

// String renders f as a 0x-prefixed hex string.
func (f Felt) String() string {
	return "0x" + hex.EncodeToString(f[:])
}

// Compare implements the byte-lexicographic total order every table key
// built from a Felt relies on.
func (f Felt) Compare(other Felt) int {
	for i := range f {
		if f[i] != other[i] {
			if f[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Uint64 returns the low 8 bytes of n as-is; callers encode it
// big-endian via PutUint64 elsewhere (storage/serde) to keep the
// encoding rule centralized in one package.
func (n BlockNumber) Uint64() uint64 { return uint64(n) }

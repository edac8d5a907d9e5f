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

package serde

import "fmt"

// PutDiscriminant appends a single variant-tag byte, the entry point
// for every closed sum type in this domain (transactions, transaction
// outputs, contract-class ABI entries): one discriminant byte
// identifying the variant, then the variant payload.
func PutDiscriminant(dst []byte, tag byte) []byte {
	return append(dst, tag)
}

// GetDiscriminant reads the variant-tag byte from the front of b.
func GetDiscriminant(b []byte) (byte, []byte, error) {
	if len(b) < 1 {
		return 0, nil, fmt.Errorf("%w: missing sum-type discriminant", ErrMalformed)
	}
	return b[0], b[1:], nil
}

// ErrUnknownVariant is returned when a discriminant byte does not match
// any known closed-sum variant. Sum types in this domain are sealed: an
// unrecognized tag is malformed input, never an extension point.
var ErrUnknownVariant = fmt.Errorf("%w: unknown sum-type variant", ErrMalformed)

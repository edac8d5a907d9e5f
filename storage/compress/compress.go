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

// Package compress provides transparent, pluggable compression for
// large, repetitive payloads (programs, ABIs, state diffs). Compression
// is orthogonal to serialization: every compressed blob this package
// produces is stored by its caller with its own length prefix, so the
// outer byte stream stays self-delimiting regardless of which
// compressor wrote it.
package compress

import "errors"

// ErrUnknownDictionary is returned by Decompress when a blob names a
// dictionary version this binary does not have loaded.
var ErrUnknownDictionary = errors.New("compress: unknown dictionary version")

// Compressor is a pluggable compress/decompress pair.
type Compressor interface {
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error)
}

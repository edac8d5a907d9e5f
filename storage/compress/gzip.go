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

package compress

import (
	"bytes"
	stdgzip "compress/gzip"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Gzip compresses with klauspost/compress's gzip, a drop-in faster
// encoder than the standard library's. It is used for ABI and program
// payloads that compress well under a generic DEFLATE pass.
type Gzip struct {
	Level int
}

// NewGzip builds a Gzip compressor at the given klauspost compression
// level (gzip.DefaultCompression if 0).
func NewGzip(level int) Gzip {
	if level == 0 {
		level = gzip.DefaultCompression
	}
	return Gzip{Level: level}
}

func (g Gzip) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, g.Level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(src); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g Gzip) Decompress(src []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// DecodeLegacy decodes a blob written by the standard library's
// compress/gzip, for compatibility with archives produced by a binary
// predating the switch to klauspost's encoder. Decode-only: this
// implementation never writes in the legacy framing.
func DecodeLegacy(src []byte) ([]byte, error) {
	r, err := stdgzip.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

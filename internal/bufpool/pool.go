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

// Package bufpool provides size-classed, pooled byte buffers for the
// hot encode/decode and batch-write paths. It is the domain-neutral
// half of the teacher's RLP buffer pool: the size-class bucketing
// strategy is kept, the RLP-specific encoder wrapper is not.
package bufpool

import (
	"bytes"
	"sync"
)

// BufferPool supplies pooled bytes.Buffer instances.
var bufferPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// GetBuffer retrieves a zeroed buffer from the pool.
func GetBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer returns a buffer to the pool, discarding ones that grew
// past the retention threshold so the pool doesn't pin large arenas.
func PutBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 64*1024 {
		return
	}
	buf.Reset()
	bufferPool.Put(buf)
}

const (
	sliceSizeClasses = 20 // 64B .. 32MB
	sliceBaseSize    = 64
)

var slicePools = make([]*sync.Pool, sliceSizeClasses)

func init() {
	for i := range slicePools {
		size := sliceBaseSize << uint(i)
		slicePools[i] = &sync.Pool{
			New: func() interface{} {
				b := make([]byte, size)
				return &b
			},
		}
	}
}

// sliceSizeClass returns the pool index holding buffers >= size, or -1
// if size exceeds every size class.
func sliceSizeClass(size int) int {
	if size <= sliceBaseSize {
		return 0
	}
	class := 0
	s := (size - 1) >> 6
	for s > 0 {
		s >>= 1
		class++
	}
	if class >= len(slicePools) {
		return -1
	}
	return class
}

// Get returns a byte slice of length size, reused from the pool when a
// size class exists for it.
func Get(size int) []byte {
	class := sliceSizeClass(size)
	if class < 0 {
		return make([]byte, size)
	}
	bp := slicePools[class].Get().(*[]byte)
	return (*bp)[:size]
}

// Put returns b to the pool matching its capacity; slices whose
// capacity isn't an exact size-class boundary (e.g. grown via append)
// are simply dropped rather than pooled.
func Put(b []byte) {
	class := sliceSizeClass(cap(b))
	if class < 0 || class >= len(slicePools) {
		return
	}
	expected := sliceBaseSize << uint(class)
	if cap(b) != expected {
		return
	}
	bp := b[:cap(b)]
	slicePools[class].Put(&bp)
}

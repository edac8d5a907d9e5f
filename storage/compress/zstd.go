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
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zstd"
)

// Zstd compresses with klauspost/compress/zstd, used for state-diff
// and class payloads: large, repetitive, worth the heavier ratio.
type Zstd struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewZstd builds a Zstd compressor at the given encoder level.
func NewZstd(level zstd.EncoderLevel) (*Zstd, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &Zstd{encoder: enc, decoder: dec}, nil
}

func (z *Zstd) Compress(src []byte) ([]byte, error) {
	return z.encoder.EncodeAll(src, nil), nil
}

func (z *Zstd) Decompress(src []byte) ([]byte, error) {
	return z.decoder.DecodeAll(src, nil)
}

// Close releases the underlying encoder/decoder goroutines.
func (z *Zstd) Close() {
	z.encoder.Close()
	z.decoder.Close()
}

// dictCodec is the lazily-built encoder/decoder pair for one
// dictionary version; constructing either is not free (zstd parses and
// digests the whole dictionary), so pairs are cached rather than
// rebuilt per call.
type dictCodec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// DictStore is a content-addressed, versioned set of zstd dictionaries.
// A compressed blob's leading byte names the dictionary version used;
// Decompress refuses a version this binary has not loaded, per the
// dictionary-assisted compression contract. Built codec pairs are kept
// in a bounded LRU so registering many historical dictionary versions
// doesn't pin every one of their encoder/decoder states in memory.
type DictStore struct {
	mu    sync.Mutex
	raw   map[byte][]byte
	cache *lru.Cache[byte, *dictCodec]
}

// NewDictStore builds an empty dictionary store holding up to
// cacheSize built codec pairs; dictionaries are registered via Register
// before use.
func NewDictStore(cacheSize int) (*DictStore, error) {
	if cacheSize <= 0 {
		cacheSize = 8
	}
	c, err := lru.New[byte, *dictCodec](cacheSize)
	if err != nil {
		return nil, err
	}
	return &DictStore{raw: make(map[byte][]byte), cache: c}, nil
}

// Register loads dictionary content under the given version byte. The
// codec pair is built lazily on first use, not at Register time.
func (d *DictStore) Register(version byte, dict []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.raw[version] = dict
	d.cache.Remove(version)
}

func (d *DictStore) codec(version byte) (*dictCodec, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if c, ok := d.cache.Get(version); ok {
		return c, nil
	}
	dict, ok := d.raw[version]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDictionary, version)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderDict(dict))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderDicts(dict))
	if err != nil {
		enc.Close()
		return nil, err
	}
	c := &dictCodec{encoder: enc, decoder: dec}
	d.cache.Add(version, c)
	return c, nil
}

// Compress encodes src against the named dictionary version, prefixing
// the result with that version byte.
func (d *DictStore) Compress(version byte, src []byte) ([]byte, error) {
	c, err := d.codec(version)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 1, len(src)+1)
	out[0] = version
	return c.encoder.EncodeAll(src, out), nil
}

// Decompress reads the leading dictionary-version byte and decodes the
// remainder against that dictionary, refusing unknown versions.
func (d *DictStore) Decompress(src []byte) ([]byte, error) {
	if len(src) < 1 {
		return nil, fmt.Errorf("%w: empty input", ErrUnknownDictionary)
	}
	version, payload := src[0], src[1:]
	c, err := d.codec(version)
	if err != nil {
		return nil, err
	}
	return c.decoder.DecodeAll(payload, nil)
}

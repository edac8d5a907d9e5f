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

package filestore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring"

	"github.com/starknetcore/storage/log"
)

// Config bounds one Store's segment geometry and per-object ceiling,
// the Go-typed form of StorageConfig.FileStore.
type Config struct {
	SegmentMaxSize uint64
	GrowthStep     uint64
	MaxObjectSize  uint64
}

const segmentFileExt = ".bin"

func segmentFileName(id uint32) string {
	return fmt.Sprintf("%08d%s", id, segmentFileExt)
}

// Store is one append-only directory of sequentially numbered segment
// files. Only the highest-numbered segment is ever opened for writing;
// earlier segments are immutable once rolled past.
type Store struct {
	mu sync.Mutex

	dir string
	cfg Config

	segments    map[uint32]*os.File
	currentID   uint32
	writeOffset uint64

	openSegments *roaring.Bitmap
}

// Open scans dir for existing segment files and re-derives the write
// cursor. maxReferencedLocation is the highest Location the caller
// found reachable from the KV side during its own open sequence (the
// zero Location if the table is empty); it implements the orphan-
// recovery rule of the write protocol: bytes written past it were never
// committed to the KV and are treated as orphans, reclaimed by the next
// Append rather than left as a permanent gap.
func Open(dir string, cfg Config, maxReferencedLocation Location) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var ids []uint32
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), segmentFileExt) {
			continue
		}
		idStr := strings.TrimSuffix(e.Name(), segmentFileExt)
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint32(id))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	s := &Store{
		dir:          dir,
		cfg:          cfg,
		segments:     make(map[uint32]*os.File),
		openSegments: roaring.New(),
	}

	if len(ids) == 0 {
		f, err := os.OpenFile(filepath.Join(dir, segmentFileName(1)), os.O_RDWR|os.O_CREATE, 0o644)
		if err != nil {
			return nil, err
		}
		s.segments[1] = f
		s.openSegments.Add(1)
		s.currentID = 1
		s.writeOffset = 0
		return s, nil
	}

	currentID := ids[len(ids)-1]
	for _, id := range ids {
		flag := os.O_RDONLY
		if id == currentID {
			flag = os.O_RDWR
		}
		f, err := os.OpenFile(filepath.Join(dir, segmentFileName(id)), flag, 0o644)
		if err != nil {
			return nil, err
		}
		s.segments[id] = f
		s.openSegments.Add(id)
	}

	info, err := s.segments[currentID].Stat()
	if err != nil {
		return nil, err
	}
	fileEnd := uint64(info.Size())

	cursor := fileEnd
	switch {
	case maxReferencedLocation.Segment > currentID:
		return nil, ErrOrphanRecovery
	case maxReferencedLocation.Segment == currentID:
		if maxReferencedLocation.End() > fileEnd {
			return nil, ErrOrphanRecovery
		}
		if maxReferencedLocation.End() < fileEnd {
			log.Warn("filestore: reclaiming orphan bytes past last referenced location",
				"dir", dir, "segment", currentID, "fileEnd", fileEnd, "referencedEnd", maxReferencedLocation.End())
		}
		cursor = maxReferencedLocation.End()
	}

	s.currentID = currentID
	s.writeOffset = cursor
	return s, nil
}

// Append serializes no further than the caller already has: payload is
// written verbatim. It implements steps (1)-(3) of the write protocol;
// the caller (a domain writer in package storage) performs the
// remaining steps — inserting the returned Location into its KV table
// and committing — since only the caller knows the owning transaction.
func (s *Store) Append(payload []byte) (Location, error) {
	if s.cfg.MaxObjectSize != 0 && uint64(len(payload)) > s.cfg.MaxObjectSize {
		return Location{}, ErrObjectTooLarge
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	loc, err := s.appendLocked(payload)
	if err == ErrSegmentFull {
		if err := s.rollLocked(); err != nil {
			return Location{}, err
		}
		loc, err = s.appendLocked(payload)
	}
	return loc, err
}

func (s *Store) appendLocked(payload []byte) (Location, error) {
	if s.cfg.SegmentMaxSize != 0 && s.writeOffset+uint64(len(payload)) > s.cfg.SegmentMaxSize {
		return Location{}, ErrSegmentFull
	}
	f := s.segments[s.currentID]
	loc := Location{Segment: s.currentID, Offset: s.writeOffset, Length: uint64(len(payload))}
	if _, err := f.WriteAt(payload, int64(loc.Offset)); err != nil {
		return Location{}, err
	}
	if err := f.Sync(); err != nil {
		return Location{}, err
	}
	s.writeOffset += uint64(len(payload))
	return loc, nil
}

func (s *Store) rollLocked() error {
	nextID := s.currentID + 1
	f, err := os.OpenFile(filepath.Join(s.dir, segmentFileName(nextID)), os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	s.segments[nextID] = f
	s.openSegments.Add(nextID)
	s.currentID = nextID
	s.writeOffset = 0
	log.Info("filestore: segment rollover", "dir", s.dir, "segment", nextID)
	return nil
}

// Read returns the bytes addressed by loc. Callers decide whether they
// must own a copy beyond the lifetime of the owning RO transaction;
// Read always returns a fresh copy, since these segments are read with
// ReadAt rather than mapped into the process address space (see
// DESIGN.md for why this package does not mmap).
func (s *Store) Read(loc Location) ([]byte, error) {
	s.mu.Lock()
	f, ok := s.segments[loc.Segment]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("filestore: segment %d not open", loc.Segment)
	}
	buf := make([]byte, loc.Length)
	if _, err := f.ReadAt(buf, int64(loc.Offset)); err != nil {
		return nil, err
	}
	return buf, nil
}

// Close closes every open segment file handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for _, f := range s.segments {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Stats reports how many segment files this store currently has open,
// read from the in-memory bitmap rather than walking file handles.
type Stats struct {
	Segments    int
	CurrentID   uint32
	WriteOffset uint64
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Segments:    int(s.openSegments.GetCardinality()),
		CurrentID:   s.currentID,
		WriteOffset: s.writeOffset,
	}
}

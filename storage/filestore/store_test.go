// Copyright 2022-2026 The N42 Authors
// This file is part of the N42 library.

package filestore

import (
	"bytes"
	"testing"
)

func testConfig() Config {
	return Config{SegmentMaxSize: 64, GrowthStep: 0, MaxObjectSize: 32}
}

func TestAppendReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, testConfig(), Location{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	payload := []byte("hello state diff")
	loc, err := s.Append(payload)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := s.Read(loc)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch: got %q want %q", got, payload)
	}
	t.Log("✓ Append/Read round trip preserves bytes")
}

func TestSegmentRollover(t *testing.T) {
	dir := t.TempDir()
	// The 40-byte payloads exceed testConfig's 32-byte object ceiling.
	cfg := testConfig()
	cfg.MaxObjectSize = 64
	s, err := Open(dir, cfg, Location{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	first, err := s.Append(bytes.Repeat([]byte{1}, 40))
	if err != nil {
		t.Fatalf("Append 1: %v", err)
	}
	second, err := s.Append(bytes.Repeat([]byte{2}, 40))
	if err != nil {
		t.Fatalf("Append 2: %v", err)
	}
	if first.Segment == second.Segment {
		t.Fatalf("expected rollover to a new segment, both landed in %d", first.Segment)
	}
	if second.Segment != first.Segment+1 {
		t.Fatalf("expected segment ids to be sequential, got %d then %d", first.Segment, second.Segment)
	}
	t.Log("✓ Segment rolls over once segment_max_size would be exceeded")
}

func TestObjectTooLarge(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, testConfig(), Location{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	_, err = s.Append(bytes.Repeat([]byte{0}, 33))
	if err != ErrObjectTooLarge {
		t.Fatalf("expected ErrObjectTooLarge, got %v", err)
	}
	t.Log("✓ Oversized objects are rejected before any write")
}

// TestOrphanRecoveryClampsToReferencedLocation simulates a crash between
// the file write and the KV commit: Append succeeds (bytes hit disk)
// but the returned Location is never handed to Open as "referenced".
// Reopening must clamp the write cursor to the last value that WAS
// referenced, not the last value actually written, so the next Append
// overwrites the orphan bytes instead of leaving a gap.
func TestOrphanRecoveryClampsToReferencedLocation(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, testConfig(), Location{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	referenced, err := s.Append([]byte("committed"))
	if err != nil {
		t.Fatalf("Append referenced: %v", err)
	}
	// Simulate the crash: this Append's Location is never inserted into
	// a KV table, so it is never passed back into Open below.
	if _, err := s.Append([]byte("orphan")); err != nil {
		t.Fatalf("Append orphan: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(dir, testConfig(), referenced)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	stats := reopened.Stats()
	if stats.WriteOffset != referenced.End() {
		t.Fatalf("expected write cursor clamped to %d, got %d", referenced.End(), stats.WriteOffset)
	}

	next, err := reopened.Append([]byte("fresh"))
	if err != nil {
		t.Fatalf("Append after reopen: %v", err)
	}
	if next.Offset != referenced.End() {
		t.Fatalf("expected next append to reuse orphan offset %d, got %d", referenced.End(), next.Offset)
	}
	t.Log("✓ Reopen clamps the write cursor to the last KV-referenced location, reclaiming orphan bytes")
}

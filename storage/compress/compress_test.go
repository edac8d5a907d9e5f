package compress

import (
	"bytes"
	"errors"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestGzipRoundTrip(t *testing.T) {
	g := NewGzip(0)
	payload := bytes.Repeat([]byte("starknet-class-body"), 64)
	c, err := g.Compress(payload)
	if err != nil {
		t.Fatalf("compress error: %v", err)
	}
	d, err := g.Decompress(c)
	if err != nil {
		t.Fatalf("decompress error: %v", err)
	}
	if !bytes.Equal(d, payload) {
		t.Fatalf("round trip mismatch")
	}
}

func TestGzipDecodeLegacyCompat(t *testing.T) {
	g := NewGzip(0)
	payload := []byte("legacy compatible payload")
	c, err := g.Compress(payload)
	if err != nil {
		t.Fatalf("compress error: %v", err)
	}
	// klauspost's framing is a valid standard-library gzip stream too.
	d, err := DecodeLegacy(c)
	if err != nil {
		t.Fatalf("legacy decode error: %v", err)
	}
	if !bytes.Equal(d, payload) {
		t.Fatalf("legacy decode mismatch")
	}
}

func TestZstdRoundTrip(t *testing.T) {
	z, err := NewZstd(zstd.SpeedDefault)
	if err != nil {
		t.Fatalf("new zstd: %v", err)
	}
	defer z.Close()

	payload := bytes.Repeat([]byte("state-diff-payload"), 128)
	c, err := z.Compress(payload)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	d, err := z.Decompress(c)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(d, payload) {
		t.Fatalf("round trip mismatch")
	}
}

func TestDictStoreRoundTrip(t *testing.T) {
	store, err := NewDictStore(4)
	if err != nil {
		t.Fatalf("new dict store: %v", err)
	}
	dict := bytes.Repeat([]byte("common-class-abi-shapes"), 32)
	store.Register(1, dict)

	payload := []byte("a class body that shares structure with the dictionary")
	c, err := store.Compress(1, payload)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if c[0] != 1 {
		t.Fatalf("expected leading dictionary-version byte 1, got %d", c[0])
	}
	d, err := store.Decompress(c)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(d, payload) {
		t.Fatalf("round trip mismatch")
	}
}

func TestDictStoreRejectsUnknownVersion(t *testing.T) {
	store, err := NewDictStore(4)
	if err != nil {
		t.Fatalf("new dict store: %v", err)
	}
	_, err = store.Compress(9, []byte("payload"))
	if !errors.Is(err, ErrUnknownDictionary) {
		t.Fatalf("expected ErrUnknownDictionary, got %v", err)
	}

	blob := append([]byte{9}, []byte("whatever")...)
	_, err = store.Decompress(blob)
	if !errors.Is(err, ErrUnknownDictionary) {
		t.Fatalf("expected ErrUnknownDictionary on decompress, got %v", err)
	}
	t.Logf("✓ unknown dictionary version is refused on both paths")
}

package codec

import (
	"bytes"
	"testing"
)

func TestUintRoundTrip(t *testing.T) {
	if got, _, _ := ReadUint8(WriteUint8(0xAB), 0); got != 0xAB {
		t.Errorf("uint8 round-trip: got %x", got)
	}
	if got, _, _ := ReadUint16(WriteUint16(0x1234), 0); got != 0x1234 {
		t.Errorf("uint16 round-trip: got %x", got)
	}
	if got, _, _ := ReadUint32(WriteUint32(0xDEADBEEF), 0); got != 0xDEADBEEF {
		t.Errorf("uint32 round-trip: got %x", got)
	}
	if got, _, _ := ReadUint64(WriteUint64(0x0102030405060708), 0); got != 0x0102030405060708 {
		t.Errorf("uint64 round-trip: got %x", got)
	}
}

func TestUintTruncation(t *testing.T) {
	if _, _, err := ReadUint32([]byte{1, 2}, 0); err == nil {
		t.Fatal("expected ParsingError on truncated uint32")
	}
}

func TestMarkerWidth(t *testing.T) {
	cases := []struct {
		max   uint64
		width int
	}{
		{0, 1},
		{255, 1},
		{256, 2},
		{65535, 2},
		{65536, 3},
		{1<<24 - 1, 3},
		{1 << 24, 4},
		{1<<32 - 1, 4},
	}
	for _, c := range cases {
		if got := MarkerWidth(c.max); got != c.width {
			t.Errorf("MarkerWidth(%d) = %d, want %d", c.max, got, c.width)
		}
	}
}

func TestOpaqueVectorRoundTrip(t *testing.T) {
	ov := NewOpaqueVector(0, 32)
	payload := []byte("test.issuer")
	serialized := ov.Serialize(payload)

	// marker width for max=32 is 1 byte
	if serialized[0] != byte(len(payload)) {
		t.Fatalf("unexpected marker byte: %d", serialized[0])
	}

	parsed, n, err := ov.Parse(serialized, 0)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if n != len(serialized) {
		t.Errorf("parse consumed %d bytes, want %d", n, len(serialized))
	}
	if !bytes.Equal(parsed, payload) {
		t.Errorf("parsed %q, want %q", parsed, payload)
	}

	skipN, err := ov.Skip(serialized, 0)
	if err != nil {
		t.Fatalf("skip failed: %v", err)
	}
	if skipN != n {
		t.Errorf("skip offset %d != parse offset %d", skipN, n)
	}
}

func TestOpaqueVectorOutOfBounds(t *testing.T) {
	ov := NewOpaqueVector(1, 4)
	// Declare a marker claiming 5 bytes, which exceeds max_length=4.
	data := append([]byte{5}, []byte("abcde")...)
	if _, _, err := ov.Parse(data, 0); err == nil {
		t.Fatal("expected ParsingError for out-of-range length marker")
	}
}

func TestVectorRoundTrip(t *testing.T) {
	spec := NewVectorSpec(0, 65535)
	items := []uint16{1, 2, 3, 0xFFFF}

	serialize := func(v uint16) []byte { return WriteUint16(v) }
	parse := func(data []byte, offset int, opts Options) (uint16, int, error) {
		return ReadUint16(data, offset)
	}

	serialized := SerializeVector(spec, items, serialize)
	parsed, n, err := ParseVector(spec, serialized, 0, Default(), parse)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if n != len(serialized) {
		t.Errorf("parse consumed %d, want %d", n, len(serialized))
	}
	if len(parsed) != len(items) {
		t.Fatalf("parsed %d items, want %d", len(parsed), len(items))
	}
	for i := range items {
		if parsed[i] != items[i] {
			t.Errorf("item %d: got %d, want %d", i, parsed[i], items[i])
		}
	}

	skipN, err := SkipVector(spec, serialized, 0)
	if err != nil {
		t.Fatalf("skip failed: %v", err)
	}
	if skipN != n {
		t.Errorf("skip offset %d != parse offset %d", skipN, n)
	}
}

func TestArrayRoundTrip(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	parsed, n, err := ParseArray(data, 0, 4)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !bytes.Equal(parsed, data) {
		t.Errorf("parsed %v, want %v", parsed, data)
	}
	skipN, err := SkipArray(data, 0, 4)
	if err != nil {
		t.Fatalf("skip failed: %v", err)
	}
	if skipN != n {
		t.Errorf("skip offset %d != parse offset %d", skipN, n)
	}
}

package codec

import "encoding/binary"

// WriteUint8/16/32/64 serialize a big-endian unsigned integer of the
// named width. The reference calls these "UIntN" with N in {1,2,4,8}.

func WriteUint8(v uint8) []byte { return []byte{v} }

func WriteUint16(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}

func WriteUint32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func WriteUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// ReadUint8/16/32/64 parse a big-endian unsigned integer of the named
// width starting at offset, returning the value and the offset just past
// it. They fail with ParsingError on truncation.

func ReadUint8(data []byte, offset int) (uint8, int, error) {
	if offset < 0 || offset+1 > len(data) {
		return 0, offset, parseErr("uint8", "truncated stream: need 1 byte at offset %d, have %d", offset, len(data)-offset)
	}
	return data[offset], offset + 1, nil
}

func ReadUint16(data []byte, offset int) (uint16, int, error) {
	if offset < 0 || offset+2 > len(data) {
		return 0, offset, parseErr("uint16", "truncated stream: need 2 bytes at offset %d, have %d", offset, len(data)-offset)
	}
	return binary.BigEndian.Uint16(data[offset : offset+2]), offset + 2, nil
}

func ReadUint32(data []byte, offset int) (uint32, int, error) {
	if offset < 0 || offset+4 > len(data) {
		return 0, offset, parseErr("uint32", "truncated stream: need 4 bytes at offset %d, have %d", offset, len(data)-offset)
	}
	return binary.BigEndian.Uint32(data[offset : offset+4]), offset + 4, nil
}

func ReadUint64(data []byte, offset int) (uint64, int, error) {
	if offset < 0 || offset+8 > len(data) {
		return 0, offset, parseErr("uint64", "truncated stream: need 8 bytes at offset %d, have %d", offset, len(data)-offset)
	}
	return binary.BigEndian.Uint64(data[offset : offset+8]), offset + 8, nil
}

// MarkerWidth returns the smallest marker width, in bytes, able to encode
// maxLength: 1, 2, 3, or 4. Per spec §4.1, 3-byte markers are permitted
// for values in [2^16, 2^24).
func MarkerWidth(maxLength uint64) int {
	switch {
	case maxLength < 1<<8:
		return 1
	case maxLength < 1<<16:
		return 2
	case maxLength < 1<<24:
		return 3
	default:
		return 4
	}
}

// WriteMarker serializes n as a big-endian unsigned integer occupying
// exactly width bytes (1, 2, 3, or 4).
func WriteMarker(width int, n uint64) []byte {
	b := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		b[i] = byte(n)
		n >>= 8
	}
	return b
}

// ReadMarker parses a width-byte big-endian length marker at offset. It
// fails if the marker itself would run past the end of data.
func ReadMarker(data []byte, offset, width int) (uint64, int, error) {
	if offset < 0 || offset+width > len(data) {
		return 0, offset, parseErr("marker", "truncated stream: need %d marker bytes at offset %d, have %d", width, offset, len(data)-offset)
	}
	var n uint64
	for i := 0; i < width; i++ {
		n = n<<8 | uint64(data[offset+i])
	}
	return n, offset + width, nil
}

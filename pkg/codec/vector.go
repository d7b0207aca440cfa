package codec

// VectorSpec names a Vector<T> type's bounds: the payload byte length
// must lie in [MinLength, MaxLength], and MarkerWidth is derived from
// MaxLength via MarkerWidth(MaxLength) — callers store the derived width
// once rather than recomputing it per call.
type VectorSpec struct {
	MinLength   int
	MaxLength   int
	MarkerWidth int
}

// NewVectorSpec builds a VectorSpec, deriving the marker width from
// maxLength per spec §4.1.
func NewVectorSpec(minLength, maxLength int) VectorSpec {
	return VectorSpec{
		MinLength:   minLength,
		MaxLength:   maxLength,
		MarkerWidth: MarkerWidth(uint64(maxLength)),
	}
}

// SerializeVector encodes items as a length-prefixed vector: a marker
// giving the total payload byte length, followed by the concatenation of
// each element's own serialization.
func SerializeVector[T any](spec VectorSpec, items []T, serialize func(T) []byte) []byte {
	var payload []byte
	for _, item := range items {
		payload = append(payload, serialize(item)...)
	}
	out := make([]byte, 0, spec.MarkerWidth+len(payload))
	out = append(out, WriteMarker(spec.MarkerWidth, uint64(len(payload)))...)
	out = append(out, payload...)
	return out
}

// ParseVector reads a length-prefixed vector starting at offset: the
// marker, then repeated calls to parseElem until the payload is
// consumed. It fails if the marker exceeds the remaining bytes, the
// payload length falls outside [MinLength, MaxLength], or parseElem
// does not consume exactly the declared payload.
func ParseVector[T any](spec VectorSpec, data []byte, offset int, opts Options, parseElem func([]byte, int, Options) (T, int, error)) ([]T, int, error) {
	payloadLen, next, err := ReadMarker(data, offset, spec.MarkerWidth)
	if err != nil {
		return nil, offset, err
	}
	if int(payloadLen) < spec.MinLength || int(payloadLen) > spec.MaxLength {
		return nil, offset, parseErr("vector", "payload length %d out of bounds [%d, %d]", payloadLen, spec.MinLength, spec.MaxLength)
	}
	if next+int(payloadLen) > len(data) {
		return nil, offset, parseErr("vector", "truncated stream: payload of %d bytes at offset %d, have %d", payloadLen, next, len(data)-next)
	}

	end := next + int(payloadLen)
	var items []T
	cursor := next
	for cursor < end {
		item, newCursor, err := parseElem(data, cursor, opts)
		if err != nil {
			return nil, offset, err
		}
		if newCursor <= cursor || newCursor > end {
			return nil, offset, parseErr("vector", "element parse overran declared payload bound")
		}
		items = append(items, item)
		cursor = newCursor
	}
	if cursor != end {
		return nil, offset, parseErr("vector", "element parse did not exactly consume declared payload")
	}
	return items, end, nil
}

// SkipVector advances past a length-prefixed vector without
// materializing its elements, consistent with ParseVector: it must land
// on the same offset ParseVector would return.
func SkipVector(spec VectorSpec, data []byte, offset int) (int, error) {
	payloadLen, next, err := ReadMarker(data, offset, spec.MarkerWidth)
	if err != nil {
		return offset, err
	}
	if int(payloadLen) < spec.MinLength || int(payloadLen) > spec.MaxLength {
		return offset, parseErr("vector", "payload length %d out of bounds [%d, %d]", payloadLen, spec.MinLength, spec.MaxLength)
	}
	if next+int(payloadLen) > len(data) {
		return offset, parseErr("vector", "truncated stream: payload of %d bytes at offset %d, have %d", payloadLen, next, len(data)-next)
	}
	return next + int(payloadLen), nil
}

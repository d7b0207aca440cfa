package codec

// OpaqueVector is a Vector<T> specialized to raw bytes: the payload *is*
// the byte length, with no per-element framing.
type OpaqueVector struct {
	Spec VectorSpec
}

// NewOpaqueVector builds the marker/bounds spec for an opaque byte vector.
func NewOpaqueVector(minLength, maxLength int) OpaqueVector {
	return OpaqueVector{Spec: NewVectorSpec(minLength, maxLength)}
}

// Serialize writes the marker followed by the raw bytes.
func (o OpaqueVector) Serialize(b []byte) []byte {
	out := make([]byte, 0, o.Spec.MarkerWidth+len(b))
	out = append(out, WriteMarker(o.Spec.MarkerWidth, uint64(len(b)))...)
	out = append(out, b...)
	return out
}

// Parse reads the marker and the following raw bytes, bounds-checked
// against the vector's declared [MinLength, MaxLength].
func (o OpaqueVector) Parse(data []byte, offset int) ([]byte, int, error) {
	n, next, err := ReadMarker(data, offset, o.Spec.MarkerWidth)
	if err != nil {
		return nil, offset, err
	}
	if int(n) < o.Spec.MinLength || int(n) > o.Spec.MaxLength {
		return nil, offset, parseErr("opaque", "length %d out of bounds [%d, %d]", n, o.Spec.MinLength, o.Spec.MaxLength)
	}
	if next+int(n) > len(data) {
		return nil, offset, parseErr("opaque", "truncated stream: need %d bytes at offset %d, have %d", n, next, len(data)-next)
	}
	out := make([]byte, n)
	copy(out, data[next:next+int(n)])
	return out, next + int(n), nil
}

// Skip advances past an opaque vector without copying its payload.
func (o OpaqueVector) Skip(data []byte, offset int) (int, error) {
	n, next, err := ReadMarker(data, offset, o.Spec.MarkerWidth)
	if err != nil {
		return offset, err
	}
	if int(n) < o.Spec.MinLength || int(n) > o.Spec.MaxLength {
		return offset, parseErr("opaque", "length %d out of bounds [%d, %d]", n, o.Spec.MinLength, o.Spec.MaxLength)
	}
	if next+int(n) > len(data) {
		return offset, parseErr("opaque", "truncated stream: need %d bytes at offset %d, have %d", n, next, len(data)-next)
	}
	return next + int(n), nil
}

// Array is a fixed-length byte field with no length marker: exactly N
// raw bytes. It is represented directly as [N]byte by callers; these
// helpers provide the shared parse/skip bounds-checking.

// ParseArray reads exactly n raw bytes at offset.
func ParseArray(data []byte, offset, n int) ([]byte, int, error) {
	if offset < 0 || offset+n > len(data) {
		return nil, offset, parseErr("array", "truncated stream: need %d bytes at offset %d, have %d", n, offset, len(data)-offset)
	}
	out := make([]byte, n)
	copy(out, data[offset:offset+n])
	return out, offset + n, nil
}

// SkipArray advances past n raw bytes.
func SkipArray(data []byte, offset, n int) (int, error) {
	if offset < 0 || offset+n > len(data) {
		return offset, parseErr("array", "truncated stream: need %d bytes at offset %d, have %d", n, offset, len(data)-offset)
	}
	return offset + n, nil
}

package mtc

import (
	"crypto/sha256"

	"github.com/Mindburn-Labs/mtc/pkg/codec"
)

// HashHead is the shared prefix of every Merkle hash input: which kind
// of node is being hashed (Distinguisher), which issuer's tree it
// belongs to, and which batch.
type HashHead struct {
	Distinguisher Distinguisher
	IssuerID      IssuerID
	BatchNumber   uint32
}

func (h HashHead) Serialize() []byte {
	out := h.Distinguisher.Serialize()
	out = append(out, h.IssuerID.Serialize()...)
	out = append(out, codec.WriteUint32(h.BatchNumber)...)
	return out
}

// NewHashHead builds the HashHead for distinguisher d under the given
// issuer and batch.
func NewHashHead(d Distinguisher, issuerID IssuerID, batchNumber uint32) HashHead {
	return HashHead{Distinguisher: d, IssuerID: issuerID, BatchNumber: batchNumber}
}

// HashEmptyInput is hashed in place of a padding node: a subtree at
// (level, index) that no source assertion covers.
type HashEmptyInput struct {
	Head  HashHead
	Index uint64
	Level uint8
}

func (h HashEmptyInput) Serialize() []byte {
	out := h.Head.Serialize()
	out = append(out, codec.WriteUint64(h.Index)...)
	out = append(out, codec.WriteUint8(h.Level)...)
	return out
}

// Hash computes H(HashEmptyInput).
func (h HashEmptyInput) Hash() SHA256Hash {
	return sha256.Sum256(h.Serialize())
}

// HashNodeInput is hashed for an internal node whose two children are
// both present (populated or themselves empty-hashed).
type HashNodeInput struct {
	Head  HashHead
	Index uint64
	Level uint8
	Left  SHA256Hash
	Right SHA256Hash
}

func (h HashNodeInput) Serialize() []byte {
	out := h.Head.Serialize()
	out = append(out, codec.WriteUint64(h.Index)...)
	out = append(out, codec.WriteUint8(h.Level)...)
	out = append(out, h.Left.Serialize()...)
	out = append(out, h.Right.Serialize()...)
	return out
}

// Hash computes H(HashNodeInput).
func (h HashNodeInput) Hash() SHA256Hash {
	return sha256.Sum256(h.Serialize())
}

// HashAssertionInput is hashed for a leaf: the assertion at the given
// index in the batch.
type HashAssertionInput struct {
	Head      HashHead
	Index     uint64
	Assertion Assertion
}

func (h HashAssertionInput) Serialize() []byte {
	out := h.Head.Serialize()
	out = append(out, codec.WriteUint64(h.Index)...)
	out = append(out, h.Assertion.Serialize()...)
	return out
}

// Hash computes H(HashAssertionInput).
func (h HashAssertionInput) Hash() SHA256Hash {
	return sha256.Sum256(h.Serialize())
}

// LeafHash hashes assertion at index i under head.
func LeafHash(head HashHead, index uint64, assertion Assertion) SHA256Hash {
	head.Distinguisher = DistinguisherHashAssertionInput
	return HashAssertionInput{Head: head, Index: index, Assertion: assertion}.Hash()
}

// NodeHash hashes an internal node from its two children.
func NodeHash(head HashHead, index uint64, level uint8, left, right SHA256Hash) SHA256Hash {
	head.Distinguisher = DistinguisherHashNodeInput
	return HashNodeInput{Head: head, Index: index, Level: level, Left: left, Right: right}.Hash()
}

// EmptyHash computes the on-demand hash for an unpopulated (level,
// index) subtree, replacing the conventional duplicate-last-leaf
// padding.
func EmptyHash(head HashHead, index uint64, level uint8) SHA256Hash {
	head.Distinguisher = DistinguisherHashEmptyInput
	return HashEmptyInput{Head: head, Index: index, Level: level}.Hash()
}

// sha256VectorSpec bounds a SHA256Vector payload to [0, 2^16-1] bytes (a
// 2-byte marker), each element a fixed 32-byte hash.
var sha256VectorSpec = codec.NewVectorSpec(0, 1<<16-1)

// SHA256Vector is a Vector<SHA256Hash>, used as an inclusion path.
type SHA256Vector struct {
	Hashes []SHA256Hash
}

func (v SHA256Vector) Serialize() []byte {
	return codec.SerializeVector(sha256VectorSpec, v.Hashes, SHA256Hash.Serialize)
}

// ParseSHA256Vector reads a length-prefixed vector of SHA256Hash values.
func ParseSHA256Vector(data []byte, offset int, opts codec.Options) (SHA256Vector, int, error) {
	hashes, next, err := codec.ParseVector(sha256VectorSpec, data, offset, opts, func(d []byte, o int, _ codec.Options) (SHA256Hash, int, error) {
		return ParseSHA256Hash(d, o)
	})
	if err != nil {
		return SHA256Vector{}, offset, err
	}
	return SHA256Vector{Hashes: hashes}, next, nil
}

// SkipSHA256Vector advances past a SHA256Vector.
func SkipSHA256Vector(data []byte, offset int) (int, error) {
	return codec.SkipVector(sha256VectorSpec, data, offset)
}

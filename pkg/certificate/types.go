// Package certificate packages inclusion proofs into certificates and
// implements the verification algorithm that checks one against a
// signed validity window.
package certificate

import (
	"fmt"

	"github.com/Mindburn-Labs/mtc/pkg/codec"
	"github.com/Mindburn-Labs/mtc/pkg/mtc"
)

// ProofType enumerates the kind of trust anchor / proof body a
// certificate carries. Serialized as a 2-byte enum. Only
// ProofTypeMerkleTreeSHA256 is defined today; the dispatch tables below
// are kept open so a new proof type is a data change, not a code
// change.
type ProofType uint16

const ProofTypeMerkleTreeSHA256 ProofType = 0

func (t ProofType) Serialize() []byte { return codec.WriteUint16(uint16(t)) }

func ParseProofType(data []byte, offset int) (ProofType, int, error) {
	v, next, err := codec.ReadUint16(data, offset)
	if err != nil {
		return 0, offset, err
	}
	return ProofType(v), next, nil
}

// MerkleTreeTrustAnchor names the (issuer, batch) a merkle_tree_sha256
// proof is checked against.
type MerkleTreeTrustAnchor struct {
	IssuerID    mtc.IssuerID
	BatchNumber uint32
}

func (a MerkleTreeTrustAnchor) Serialize() []byte {
	out := a.IssuerID.Serialize()
	out = append(out, codec.WriteUint32(a.BatchNumber)...)
	return out
}

func parseMerkleTreeTrustAnchor(data []byte, offset int) (MerkleTreeTrustAnchor, int, error) {
	issuerID, next, err := mtc.ParseIssuerID(data, offset)
	if err != nil {
		return MerkleTreeTrustAnchor{}, offset, err
	}
	batch, next, err := codec.ReadUint32(data, next)
	if err != nil {
		return MerkleTreeTrustAnchor{}, offset, err
	}
	return MerkleTreeTrustAnchor{IssuerID: issuerID, BatchNumber: batch}, next, nil
}

// trustAnchorBodyParsers maps a ProofType tag to the parser for its
// TrustAnchor body. Adding a proof type means adding an entry here.
var trustAnchorBodyParsers = map[ProofType]func([]byte, int) (interface{}, int, error){
	ProofTypeMerkleTreeSHA256: func(data []byte, offset int) (interface{}, int, error) {
		return parseMerkleTreeTrustAnchor(data, offset)
	},
}

// TrustAnchor is a tagged union over ProofType: today only
// merkle_tree_sha256 is defined, whose body is a
// MerkleTreeTrustAnchor.
type TrustAnchor struct {
	ProofType   ProofType
	MerkleTree  MerkleTreeTrustAnchor
}

func NewMerkleTreeTrustAnchor(issuerID mtc.IssuerID, batchNumber uint32) TrustAnchor {
	return TrustAnchor{ProofType: ProofTypeMerkleTreeSHA256, MerkleTree: MerkleTreeTrustAnchor{IssuerID: issuerID, BatchNumber: batchNumber}}
}

func (a TrustAnchor) Serialize() []byte {
	out := a.ProofType.Serialize()
	switch a.ProofType {
	case ProofTypeMerkleTreeSHA256:
		out = append(out, a.MerkleTree.Serialize()...)
	}
	return out
}

// ParseTrustAnchor reads the ProofType tag, then dispatches to the
// registered body parser.
func ParseTrustAnchor(data []byte, offset int) (TrustAnchor, int, error) {
	tag, next, err := ParseProofType(data, offset)
	if err != nil {
		return TrustAnchor{}, offset, err
	}
	parse, ok := trustAnchorBodyParsers[tag]
	if !ok {
		return TrustAnchor{}, offset, &codec.ParsingError{Context: "trust_anchor", Reason: fmt.Sprintf("proof_type %d has no registered body parser", uint16(tag))}
	}
	body, next, err := parse(data, next)
	if err != nil {
		return TrustAnchor{}, offset, err
	}
	anchor := TrustAnchor{ProofType: tag}
	switch b := body.(type) {
	case MerkleTreeTrustAnchor:
		anchor.MerkleTree = b
	}
	return anchor, next, nil
}

// MerkleTreeProofSHA256 is the proof body for merkle_tree_sha256: the
// leaf index and its bottom-up sibling path.
type MerkleTreeProofSHA256 struct {
	Index uint64
	Path  mtc.SHA256Vector
}

func (p MerkleTreeProofSHA256) Serialize() []byte {
	out := codec.WriteUint64(p.Index)
	out = append(out, p.Path.Serialize()...)
	return out
}

func parseMerkleTreeProofSHA256(data []byte, offset int, opts codec.Options) (MerkleTreeProofSHA256, int, error) {
	index, next, err := codec.ReadUint64(data, offset)
	if err != nil {
		return MerkleTreeProofSHA256{}, offset, err
	}
	path, next, err := mtc.ParseSHA256Vector(data, next, opts)
	if err != nil {
		return MerkleTreeProofSHA256{}, offset, err
	}
	return MerkleTreeProofSHA256{Index: index, Path: path}, next, nil
}

// proofBodyParsers maps a ProofType tag to the parser for its Proof
// body, mirroring trustAnchorBodyParsers.
var proofBodyParsers = map[ProofType]func([]byte, int, codec.Options) (interface{}, int, error){
	ProofTypeMerkleTreeSHA256: func(data []byte, offset int, opts codec.Options) (interface{}, int, error) {
		return parseMerkleTreeProofSHA256(data, offset, opts)
	},
}

// Proof pairs a TrustAnchor with the body its proof_type selects.
type Proof struct {
	Anchor     TrustAnchor
	MerkleTree MerkleTreeProofSHA256
}

func NewMerkleTreeProof(issuerID mtc.IssuerID, batchNumber uint32, index uint64, path mtc.SHA256Vector) Proof {
	return Proof{
		Anchor:     NewMerkleTreeTrustAnchor(issuerID, batchNumber),
		MerkleTree: MerkleTreeProofSHA256{Index: index, Path: path},
	}
}

func (p Proof) Serialize() []byte {
	out := p.Anchor.Serialize()
	switch p.Anchor.ProofType {
	case ProofTypeMerkleTreeSHA256:
		out = append(out, p.MerkleTree.Serialize()...)
	}
	return out
}

// ParseProof reads the TrustAnchor, then dispatches the matching proof
// body parser on TrustAnchor.ProofType.
func ParseProof(data []byte, offset int, opts codec.Options) (Proof, int, error) {
	anchor, next, err := ParseTrustAnchor(data, offset)
	if err != nil {
		return Proof{}, offset, err
	}
	parse, ok := proofBodyParsers[anchor.ProofType]
	if !ok {
		return Proof{}, offset, &codec.ParsingError{Context: "proof", Reason: fmt.Sprintf("proof_type %d has no registered proof body parser", uint16(anchor.ProofType))}
	}
	body, next, err := parse(data, next, opts)
	if err != nil {
		return Proof{}, offset, err
	}
	p := Proof{Anchor: anchor}
	switch b := body.(type) {
	case MerkleTreeProofSHA256:
		p.MerkleTree = b
	}
	return p, next, nil
}

// BikeshedCertificate is self-contained: the assertion fully determines
// the leaf hash, and the proof carries everything needed to recompute
// the root.
type BikeshedCertificate struct {
	Assertion mtc.Assertion
	Proof     Proof
}

func (c BikeshedCertificate) Serialize() []byte {
	out := c.Assertion.Serialize()
	out = append(out, c.Proof.Serialize()...)
	return out
}

// ParseBikeshedCertificate reads assertion then proof in declared
// order — the shape of a ".mtc" certificate file.
func ParseBikeshedCertificate(data []byte, offset int, opts codec.Options) (BikeshedCertificate, int, error) {
	a, next, err := mtc.ParseAssertion(data, offset, opts)
	if err != nil {
		return BikeshedCertificate{}, offset, err
	}
	p, next, err := ParseProof(data, next, opts)
	if err != nil {
		return BikeshedCertificate{}, offset, err
	}
	return BikeshedCertificate{Assertion: a, Proof: p}, next, nil
}

// Package validitywindow maintains the sliding window of recent Merkle
// tree roots an issuer publishes, builds the labeled signing input, and
// signs/verifies it with Ed25519.
package validitywindow

import (
	"crypto/ed25519"
	"fmt"

	"github.com/Mindburn-Labs/mtc/pkg/codec"
	"github.com/Mindburn-Labs/mtc/pkg/mtc"
)

// treeHeadsSpec gives TreeHeads an explicit 3-byte marker (not derived
// from a byte-length bound) since the payload is a raw run of 32-byte
// hashes and its length must be a positive multiple of 32.
var treeHeadsSpec = codec.VectorSpec{MinLength: 32, MaxLength: 1<<24 - 1, MarkerWidth: 3}

// TreeHeads is the Vector<SHA256Hash> of recent batch roots, newest
// last. Its payload length must be a positive multiple of 32.
type TreeHeads struct {
	Heads []mtc.SHA256Hash
}

func (h TreeHeads) Serialize() []byte {
	return codec.SerializeVector(treeHeadsSpec, h.Heads, mtc.SHA256Hash.Serialize)
}

func (h TreeHeads) Validate() error {
	if len(h.Heads) == 0 {
		return &codec.ValidationError{Field: "tree_heads", Code: "EMPTY", Message: "tree_heads must hold at least one head"}
	}
	return nil
}

// ParseTreeHeads reads a length-prefixed run of SHA256Hash values with
// an explicit 3-byte marker.
func ParseTreeHeads(data []byte, offset int, opts codec.Options) (TreeHeads, int, error) {
	heads, next, err := codec.ParseVector(treeHeadsSpec, data, offset, opts, func(d []byte, o int, _ codec.Options) (mtc.SHA256Hash, int, error) {
		return mtc.ParseSHA256Hash(d, o)
	})
	if err != nil {
		return TreeHeads{}, offset, err
	}
	h := TreeHeads{Heads: heads}
	if !opts.SkipValidate {
		if err := h.Validate(); err != nil {
			return TreeHeads{}, offset, err
		}
	}
	return h, next, nil
}

// ValidityWindow names the batch range [batch_number-window_size+1,
// batch_number] and carries the root of each, newest last.
type ValidityWindow struct {
	BatchNumber uint32
	Heads       TreeHeads
}

func (w ValidityWindow) Serialize() []byte {
	out := codec.WriteUint32(w.BatchNumber)
	out = append(out, w.Heads.Serialize()...)
	return out
}

// WindowSize is the count of heads retained, i.e. len(Heads.Heads).
func (w ValidityWindow) WindowSize() int { return len(w.Heads.Heads) }

// ParseValidityWindow reads batch_number then tree_heads in declared
// order.
func ParseValidityWindow(data []byte, offset int, opts codec.Options) (ValidityWindow, int, error) {
	batch, next, err := codec.ReadUint32(data, offset)
	if err != nil {
		return ValidityWindow{}, offset, err
	}
	heads, next, err := ParseTreeHeads(data, next, opts)
	if err != nil {
		return ValidityWindow{}, offset, err
	}
	return ValidityWindow{BatchNumber: batch, Heads: heads}, next, nil
}

// validityWindowLabelText is the fixed 32-byte label prefixed to every
// signed validity window, including its trailing NUL.
var validityWindowLabelText = [32]byte{}

func init() {
	copy(validityWindowLabelText[:], "Merkle Tree Crts ValidityWindow\x00")
}

// ValidityWindowLabel is the fixed 32-byte domain label
// "Merkle Tree Crts ValidityWindow\0".
type ValidityWindowLabel [32]byte

// Label returns the one defined ValidityWindowLabel value.
func Label() ValidityWindowLabel { return ValidityWindowLabel(validityWindowLabelText) }

func (l ValidityWindowLabel) Serialize() []byte { return l[:] }

func (l ValidityWindowLabel) Validate() error {
	if l != ValidityWindowLabel(validityWindowLabelText) {
		return &codec.ValidationError{Field: "validity_window_label", Code: "BAD_LABEL", Message: "validity_window_label does not match the fixed MTC label"}
	}
	return nil
}

// ParseValidityWindowLabel reads the fixed 32-byte label.
func ParseValidityWindowLabel(data []byte, offset int, opts codec.Options) (ValidityWindowLabel, int, error) {
	b, next, err := codec.ParseArray(data, offset, 32)
	if err != nil {
		return ValidityWindowLabel{}, offset, err
	}
	var l ValidityWindowLabel
	copy(l[:], b)
	if !opts.SkipValidate {
		if err := l.Validate(); err != nil {
			return ValidityWindowLabel{}, offset, err
		}
	}
	return l, next, nil
}

// LabeledValidityWindow is the exact message the issuer signs.
type LabeledValidityWindow struct {
	Label    ValidityWindowLabel
	IssuerID mtc.IssuerID
	Window   ValidityWindow
}

func (l LabeledValidityWindow) Serialize() []byte {
	out := l.Label.Serialize()
	out = append(out, l.IssuerID.Serialize()...)
	out = append(out, l.Window.Serialize()...)
	return out
}

// signatureSpec bounds Signature to exactly 64 bytes, a 1-byte marker.
var signatureSpec = codec.NewOpaqueVector(64, 64)

// Signature is the Ed25519 signature over a serialized
// LabeledValidityWindow.
type Signature []byte

func (s Signature) Serialize() []byte { return signatureSpec.Serialize(s) }

func (s Signature) Validate() error {
	if len(s) != ed25519.SignatureSize {
		return &codec.ValidationError{Field: "signature", Code: "BAD_LENGTH", Message: fmt.Sprintf("signature is %d bytes, want %d", len(s), ed25519.SignatureSize)}
	}
	return nil
}

// ParseSignature reads the fixed-length signature opaque vector.
func ParseSignature(data []byte, offset int) (Signature, int, error) {
	b, next, err := signatureSpec.Parse(data, offset)
	if err != nil {
		return nil, offset, err
	}
	return Signature(b), next, nil
}

// SignedValidityWindow is the published artifact: a ValidityWindow plus
// the issuer's signature over its labeled form.
type SignedValidityWindow struct {
	Window    ValidityWindow
	Signature Signature
}

func (s SignedValidityWindow) Serialize() []byte {
	out := s.Window.Serialize()
	out = append(out, s.Signature.Serialize()...)
	return out
}

// ParseSignedValidityWindow reads window then signature in declared
// order.
func ParseSignedValidityWindow(data []byte, offset int, opts codec.Options) (SignedValidityWindow, int, error) {
	w, next, err := ParseValidityWindow(data, offset, opts)
	if err != nil {
		return SignedValidityWindow{}, offset, err
	}
	sig, next, err := ParseSignature(data, next)
	if err != nil {
		return SignedValidityWindow{}, offset, err
	}
	sv := SignedValidityWindow{Window: w, Signature: sig}
	if !opts.SkipValidate {
		if err := sv.Signature.Validate(); err != nil {
			return SignedValidityWindow{}, offset, err
		}
	}
	return sv, next, nil
}

// CreateSignedValidityWindow implements the rotation protocol of spec
// §4.4: a fresh window starts as [R_b]; a rotation requires
// prev.batch_number+1 == b, and appends R_b after dropping the oldest
// head once the window is at capacity.
func CreateSignedValidityWindow(signer ed25519.PrivateKey, issuerID mtc.IssuerID, prev *SignedValidityWindow, windowSize int, batchNumber uint32, root mtc.SHA256Hash) (SignedValidityWindow, error) {
	if windowSize < 1 {
		return SignedValidityWindow{}, fmt.Errorf("validitywindow: window_size must be at least 1, got %d", windowSize)
	}

	var heads []mtc.SHA256Hash
	if prev == nil {
		heads = []mtc.SHA256Hash{root}
	} else {
		if prev.Window.BatchNumber+1 != batchNumber {
			return SignedValidityWindow{}, NewVerificationError(ReasonNonContiguousBatch, "previous batch_number %d, got %d", prev.Window.BatchNumber, batchNumber)
		}
		heads = append([]mtc.SHA256Hash{}, prev.Window.Heads.Heads...)
		if len(heads) >= windowSize {
			heads = heads[len(heads)-windowSize+1:]
		}
		heads = append(heads, root)
	}

	window := ValidityWindow{BatchNumber: batchNumber, Heads: TreeHeads{Heads: heads}}
	labeled := LabeledValidityWindow{Label: Label(), IssuerID: issuerID, Window: window}
	sig := ed25519.Sign(signer, labeled.Serialize())

	return SignedValidityWindow{Window: window, Signature: Signature(sig)}, nil
}

// VerifySignature checks the Ed25519 signature over the labeled form of
// w.Window against pubKey, using issuerID as the signed issuer_id.
func (s SignedValidityWindow) VerifySignature(pubKey ed25519.PublicKey, issuerID mtc.IssuerID) bool {
	labeled := LabeledValidityWindow{Label: Label(), IssuerID: issuerID, Window: s.Window}
	return ed25519.Verify(pubKey, labeled.Serialize(), s.Signature)
}

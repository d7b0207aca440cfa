package certificate

import (
	"crypto/ed25519"

	"github.com/Mindburn-Labs/mtc/pkg/merkle"
	"github.com/Mindburn-Labs/mtc/pkg/mtc"
	"github.com/Mindburn-Labs/mtc/pkg/validitywindow"
)

// VerifyCertificate implements the six-step algorithm of spec §4.3: it
// checks the certificate's trust anchor names the expected issuer,
// confirms the claimed batch is covered by the signed validity window,
// recomputes the Merkle root from the assertion and inclusion path, and
// finally checks the window's own Ed25519 signature. Every failing step
// yields a validitywindow.VerificationError with a specific reason.
func VerifyCertificate(cert BikeshedCertificate, signedWindow validitywindow.SignedValidityWindow, issuerPublicKey ed25519.PublicKey, expectedIssuerID mtc.IssuerID) error {
	// Step 1: trust anchor type and issuer.
	if cert.Proof.Anchor.ProofType != ProofTypeMerkleTreeSHA256 {
		return validitywindow.NewVerificationError(validitywindow.ReasonUnknownProofType, "certificate proof_type %d is not merkle_tree_sha256", uint16(cert.Proof.Anchor.ProofType))
	}
	anchor := cert.Proof.Anchor.MerkleTree
	if string(anchor.IssuerID) != string(expectedIssuerID) {
		return validitywindow.NewVerificationError(validitywindow.ReasonWrongIssuer, "certificate issuer_id %q does not match expected issuer_id %q", anchor.IssuerID, expectedIssuerID)
	}
	b := anchor.BatchNumber
	index := cert.Proof.MerkleTree.Index

	// Step 2: window coverage.
	window := signedWindow.Window
	current := window.BatchNumber
	windowSize := window.WindowSize()
	lower := current - uint32(windowSize) + 1
	if b < lower || b > current {
		return validitywindow.NewVerificationError(validitywindow.ReasonOutOfWindow, "batch %d is not covered by the window [%d, %d]", b, lower, current)
	}

	// Step 3 + 4: recompute the root from the assertion and path.
	head := mtc.NewHashHead(0, expectedIssuerID, b)
	leaf := mtc.LeafHash(head, index, cert.Assertion)
	recomputed := merkle.RecomputeRoot(head, int(index), leaf, cert.Proof.MerkleTree.Path)

	// Step 5: compare against the window's entry for the claimed batch.
	wantHead := window.Heads.Heads[b-lower]
	if recomputed != wantHead {
		return validitywindow.NewVerificationError(validitywindow.ReasonRootMismatch, "recomputed root does not match the window's head for batch %d", b)
	}

	// Step 6: signature over the labeled validity window.
	if !signedWindow.VerifySignature(issuerPublicKey, expectedIssuerID) {
		return validitywindow.NewVerificationError(validitywindow.ReasonBadSignature, "signature over the labeled validity window does not verify")
	}

	return nil
}

package certificate

import (
	"crypto/ed25519"
	"errors"
	"testing"

	"github.com/Mindburn-Labs/mtc/pkg/codec"
	"github.com/Mindburn-Labs/mtc/pkg/merkle"
	"github.com/Mindburn-Labs/mtc/pkg/mtc"
	"github.com/Mindburn-Labs/mtc/pkg/validitywindow"
)

func dnsAssertion(name string) mtc.Assertion {
	return mtc.Assertion{
		SubjectType: mtc.SubjectTypeTLS,
		SubjectInfo: mtc.SubjectInfo{},
		Claims:      mtc.ClaimList{Claims: []mtc.Claim{mtc.NewDNSClaim(mtc.DNSName(name))}},
	}
}

func issueBatch(t *testing.T, issuer mtc.IssuerID, priv ed25519.PrivateKey, prev *validitywindow.SignedValidityWindow, windowSize int, batch uint32, assertions []mtc.Assertion) (*merkle.Tree, validitywindow.SignedValidityWindow) {
	t.Helper()
	tree, err := merkle.Build(issuer, batch, assertions)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	sw, err := validitywindow.CreateSignedValidityWindow(priv, issuer, prev, windowSize, batch, tree.Root())
	if err != nil {
		t.Fatalf("create window failed: %v", err)
	}
	return tree, sw
}

// Property 5: proof soundness.
func TestVerifyCertificateSucceedsForCoveredBatch(t *testing.T) {
	pub, priv, _ := ed25519.GenerateKey(nil)
	issuer := mtc.IssuerID("test.issuer")
	assertions := []mtc.Assertion{dnsAssertion("a.example.com"), dnsAssertion("b.example.com"), dnsAssertion("c.example.com")}

	tree, sw := issueBatch(t, issuer, priv, nil, 3, 0, assertions)

	for i := range assertions {
		cert, err := CreateBikeshedCertificate(tree, issuer, 0, assertions, i)
		if err != nil {
			t.Fatalf("create certificate for index %d failed: %v", i, err)
		}
		if err := VerifyCertificate(cert, sw, pub, issuer); err != nil {
			t.Fatalf("verification failed for index %d: %v", i, err)
		}
	}
}

// Property 6: proof uniqueness under tampering.
func TestVerifyCertificateRejectsTamperedPath(t *testing.T) {
	pub, priv, _ := ed25519.GenerateKey(nil)
	issuer := mtc.IssuerID("test.issuer")
	assertions := []mtc.Assertion{dnsAssertion("a.example.com"), dnsAssertion("b.example.com")}

	tree, sw := issueBatch(t, issuer, priv, nil, 3, 0, assertions)
	cert, err := CreateBikeshedCertificate(tree, issuer, 0, assertions, 1)
	if err != nil {
		t.Fatalf("create certificate failed: %v", err)
	}

	cert.Proof.MerkleTree.Path.Hashes[0][0] ^= 0xFF
	var verr *validitywindow.VerificationError
	if err := VerifyCertificate(cert, sw, pub, issuer); err == nil {
		t.Fatal("expected tampered path to fail verification")
	} else if !errors.As(err, &verr) || verr.Reason != validitywindow.ReasonRootMismatch {
		t.Fatalf("expected root_mismatch, got %v", err)
	}
}

func TestVerifyCertificateRejectsTamperedBatchNumber(t *testing.T) {
	pub, priv, _ := ed25519.GenerateKey(nil)
	issuer := mtc.IssuerID("test.issuer")
	assertions := []mtc.Assertion{dnsAssertion("a.example.com")}

	tree, sw := issueBatch(t, issuer, priv, nil, 3, 0, assertions)
	cert, err := CreateBikeshedCertificate(tree, issuer, 0, assertions, 0)
	if err != nil {
		t.Fatalf("create certificate failed: %v", err)
	}

	cert.Proof.Anchor.MerkleTree.BatchNumber = 5
	if err := VerifyCertificate(cert, sw, pub, issuer); err == nil {
		t.Fatal("expected tampered batch_number to fail verification")
	}
}

// E6: cross-issuer — certificate was issued for one issuer, checked
// against another.
func TestVerifyCertificateRejectsWrongIssuer(t *testing.T) {
	pub, priv, _ := ed25519.GenerateKey(nil)
	issuer := mtc.IssuerID("test.issuer")
	other := mtc.IssuerID("other.issuer")
	assertions := []mtc.Assertion{dnsAssertion("a.example.com")}

	tree, sw := issueBatch(t, issuer, priv, nil, 3, 0, assertions)
	cert, err := CreateBikeshedCertificate(tree, issuer, 0, assertions, 0)
	if err != nil {
		t.Fatalf("create certificate failed: %v", err)
	}

	var verr *validitywindow.VerificationError
	if err := VerifyCertificate(cert, sw, pub, other); err == nil {
		t.Fatal("expected cross-issuer verification to fail")
	} else if !errors.As(err, &verr) || verr.Reason != validitywindow.ReasonWrongIssuer {
		t.Fatalf("expected wrong_issuer, got %v", err)
	}
}

// Property 8 / E4: out-of-window rejection.
func TestVerifyCertificateRejectsOutOfWindowBatch(t *testing.T) {
	pub, priv, _ := ed25519.GenerateKey(nil)
	issuer := mtc.IssuerID("test.issuer")
	assertions := []mtc.Assertion{dnsAssertion("a.example.com")}

	tree0, _ := issueBatch(t, issuer, priv, nil, 2, 0, assertions)
	cert, err := CreateBikeshedCertificate(tree0, issuer, 0, assertions, 0)
	if err != nil {
		t.Fatalf("create certificate failed: %v", err)
	}

	var prev *validitywindow.SignedValidityWindow
	var sw validitywindow.SignedValidityWindow
	for b := uint32(0); b <= 2; b++ {
		_, cur := issueBatch(t, issuer, priv, prev, 2, b, assertions)
		saved := cur
		prev = &saved
		sw = cur
	}

	var verr *validitywindow.VerificationError
	if err := VerifyCertificate(cert, sw, pub, issuer); err == nil {
		t.Fatal("expected batch 0 to be out of window after rotating past it")
	} else if !errors.As(err, &verr) || verr.Reason != validitywindow.ReasonOutOfWindow {
		t.Fatalf("expected out_of_window, got %v", err)
	}
}

// E5: signature tamper fails before any Merkle computation would have
// succeeded.
func TestVerifyCertificateRejectsTamperedSignature(t *testing.T) {
	pub, priv, _ := ed25519.GenerateKey(nil)
	issuer := mtc.IssuerID("test.issuer")
	assertions := []mtc.Assertion{dnsAssertion("a.example.com")}

	tree, sw := issueBatch(t, issuer, priv, nil, 3, 0, assertions)
	cert, err := CreateBikeshedCertificate(tree, issuer, 0, assertions, 0)
	if err != nil {
		t.Fatalf("create certificate failed: %v", err)
	}

	sw.Signature = append(validitywindow.Signature{}, sw.Signature...)
	sw.Signature[0] ^= 0xFF

	var verr *validitywindow.VerificationError
	if err := VerifyCertificate(cert, sw, pub, issuer); err == nil {
		t.Fatal("expected tampered signature to fail verification")
	} else if !errors.As(err, &verr) || verr.Reason != validitywindow.ReasonBadSignature {
		t.Fatalf("expected bad_signature, got %v", err)
	}
}

func TestCertificateRoundTrip(t *testing.T) {
	issuer := mtc.IssuerID("test.issuer")
	assertions := []mtc.Assertion{dnsAssertion("a.example.com"), dnsAssertion("b.example.com")}
	tree, err := merkle.Build(issuer, 0, assertions)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	cert, err := CreateBikeshedCertificate(tree, issuer, 0, assertions, 1)
	if err != nil {
		t.Fatalf("create certificate failed: %v", err)
	}

	serialized := cert.Serialize()
	parsed, n, err := ParseBikeshedCertificate(serialized, 0, codec.Default())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if n != len(serialized) {
		t.Errorf("consumed %d bytes, want %d", n, len(serialized))
	}
	if parsed.Proof.MerkleTree.Index != 1 {
		t.Errorf("index mismatch after round trip")
	}
}

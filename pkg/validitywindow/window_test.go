package validitywindow

import (
	"crypto/ed25519"
	"testing"

	"github.com/Mindburn-Labs/mtc/pkg/codec"
	"github.com/Mindburn-Labs/mtc/pkg/mtc"
)

func rootFor(n byte) mtc.SHA256Hash {
	var h mtc.SHA256Hash
	h[0] = n
	return h
}

// E4: window rotation — with window_size=3, issuing batches 0..3 leaves
// heads=[R1,R2,R3], batch_number=3.
func TestWindowRotation(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}
	issuer := mtc.IssuerID("test.issuer")

	var prev *SignedValidityWindow
	for b := uint32(0); b <= 3; b++ {
		sw, err := CreateSignedValidityWindow(priv, issuer, prev, 3, b, rootFor(byte(b)))
		if err != nil {
			t.Fatalf("create window for batch %d failed: %v", b, err)
		}
		if !sw.VerifySignature(pub, issuer) {
			t.Fatalf("signature should verify for batch %d", b)
		}
		saved := sw
		prev = &saved
	}

	if prev.Window.BatchNumber != 3 {
		t.Fatalf("final batch_number = %d, want 3", prev.Window.BatchNumber)
	}
	if len(prev.Window.Heads.Heads) != 3 {
		t.Fatalf("final window holds %d heads, want 3", len(prev.Window.Heads.Heads))
	}
	want := []byte{1, 2, 3}
	for i, b := range want {
		if prev.Window.Heads.Heads[i][0] != b {
			t.Fatalf("head[%d] = %d, want %d", i, prev.Window.Heads.Heads[i][0], b)
		}
	}
}

// Property 7: window monotonicity.
func TestWindowRejectsNonContiguousBatch(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	issuer := mtc.IssuerID("test.issuer")

	first, err := CreateSignedValidityWindow(priv, issuer, nil, 3, 0, rootFor(0))
	if err != nil {
		t.Fatalf("create first window failed: %v", err)
	}
	if _, err := CreateSignedValidityWindow(priv, issuer, &first, 3, 2, rootFor(2)); err == nil {
		t.Fatal("expected non-contiguous batch_number to fail")
	}
	if _, err := CreateSignedValidityWindow(priv, issuer, &first, 3, 1, rootFor(1)); err != nil {
		t.Fatalf("contiguous batch_number should succeed: %v", err)
	}
}

// E5: signature tamper — flipping any bit in the signature fails
// verification.
func TestSignatureTamperFailsVerification(t *testing.T) {
	pub, priv, _ := ed25519.GenerateKey(nil)
	issuer := mtc.IssuerID("test.issuer")

	sw, err := CreateSignedValidityWindow(priv, issuer, nil, 3, 0, rootFor(0))
	if err != nil {
		t.Fatalf("create window failed: %v", err)
	}
	if !sw.VerifySignature(pub, issuer) {
		t.Fatal("untampered signature should verify")
	}

	tampered := sw
	tampered.Signature = append(Signature{}, sw.Signature...)
	tampered.Signature[0] ^= 0xFF
	if tampered.VerifySignature(pub, issuer) {
		t.Fatal("tampered signature should not verify")
	}
}

func TestRoundTrip(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	issuer := mtc.IssuerID("test.issuer")
	sw, err := CreateSignedValidityWindow(priv, issuer, nil, 3, 0, rootFor(0))
	if err != nil {
		t.Fatalf("create window failed: %v", err)
	}

	serialized := sw.Serialize()
	parsed, n, err := ParseSignedValidityWindow(serialized, 0, codec.Default())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if n != len(serialized) {
		t.Errorf("consumed %d bytes, want %d", n, len(serialized))
	}
	if parsed.Window.BatchNumber != sw.Window.BatchNumber {
		t.Errorf("batch_number mismatch after round trip")
	}
}

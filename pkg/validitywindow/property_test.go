//go:build property
// +build property

package validitywindow_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/Mindburn-Labs/mtc/pkg/mtc"
	"github.com/Mindburn-Labs/mtc/pkg/validitywindow"
)

func fakeRoot(i int) mtc.SHA256Hash {
	return sha256.Sum256([]byte{byte(i), byte(i >> 8)})
}

// TestWindowRotationMonotonic verifies property 7: after rotating a
// window of fixed depth across a run of contiguous batches, the window
// always covers exactly the most recent min(windowSize, batchCount)
// batches, newest last.
func TestWindowRotationMonotonic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	_, signer, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	issuerID := mtc.IssuerID("issuer")

	properties.Property("window always covers the trailing windowSize batches", prop.ForAll(
		func(windowSize, batchCount int) bool {
			var prev *validitywindow.SignedValidityWindow
			for b := 0; b < batchCount; b++ {
				signed, err := validitywindow.CreateSignedValidityWindow(signer, issuerID, prev, windowSize, uint32(b), fakeRoot(b))
				if err != nil {
					return false
				}
				prev = &signed
			}
			want := batchCount
			if want > windowSize {
				want = windowSize
			}
			if prev.Window.WindowSize() != want {
				return false
			}
			if prev.Window.Heads.Heads[len(prev.Window.Heads.Heads)-1] != fakeRoot(batchCount-1) {
				return false
			}
			return true
		},
		gen.IntRange(1, 10),
		gen.IntRange(1, 30),
	))

	properties.TestingRun(t)
}

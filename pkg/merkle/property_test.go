//go:build property
// +build property

package merkle_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/Mindburn-Labs/mtc/pkg/merkle"
	"github.com/Mindburn-Labs/mtc/pkg/mtc"
)

func genAssertions(n int) []mtc.Assertion {
	out := make([]mtc.Assertion, n)
	for i := range out {
		out[i] = mtc.Assertion{
			SubjectType: mtc.SubjectTypeTLS,
			Claims: mtc.ClaimList{Claims: []mtc.Claim{
				mtc.NewDNSClaim(mtc.DNSName([]byte{byte('a' + i%26), 'x', 'y'})),
			}},
		}
	}
	return out
}

// TestMerkleTreeDeterminism verifies property 4: building the same
// batch twice yields the same root.
func TestMerkleTreeDeterminism(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("tree construction is deterministic", prop.ForAll(
		func(n int) bool {
			if n < 1 {
				return true
			}
			assertions := genAssertions(n)
			t1, err1 := merkle.Build(mtc.IssuerID("issuer"), 0, assertions)
			t2, err2 := merkle.Build(mtc.IssuerID("issuer"), 0, assertions)
			if err1 != nil || err2 != nil {
				return err1 != nil && err2 != nil
			}
			return t1.Root() == t2.Root()
		},
		gen.IntRange(1, 64),
	))

	properties.TestingRun(t)
}

// TestMerkleProofSoundness verifies property 5: every extracted
// inclusion proof recomputes to the tree's root.
func TestMerkleProofSoundness(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("every inclusion proof recomputes to the root", prop.ForAll(
		func(n int) bool {
			if n < 1 {
				return true
			}
			assertions := genAssertions(n)
			issuerID := mtc.IssuerID("issuer")
			tree, err := merkle.Build(issuerID, 0, assertions)
			if err != nil {
				return false
			}
			for i := 0; i < n; i++ {
				path, err := merkle.ExtractProof(tree, i)
				if err != nil {
					return false
				}
				leaf := mtc.LeafHash(tree.Head, uint64(i), assertions[i])
				if merkle.RecomputeRoot(tree.Head, i, leaf, path) != tree.Root() {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 64),
	))

	properties.TestingRun(t)
}

// TestMerkleProofTamperSensitivity verifies property 6: corrupting any
// single sibling hash in a proof breaks recomputation, for batches
// large enough to have a nonempty path.
func TestMerkleProofTamperSensitivity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("tampering with a sibling hash breaks the proof", prop.ForAll(
		func(n int) bool {
			if n < 2 {
				return true
			}
			assertions := genAssertions(n)
			issuerID := mtc.IssuerID("issuer")
			tree, err := merkle.Build(issuerID, 0, assertions)
			if err != nil || tree.Height() == 0 {
				return true
			}
			path, err := merkle.ExtractProof(tree, 0)
			if err != nil || len(path.Hashes) == 0 {
				return true
			}
			path.Hashes[0][0] ^= 0xFF
			leaf := mtc.LeafHash(tree.Head, 0, assertions[0])
			return merkle.RecomputeRoot(tree.Head, 0, leaf, path) != tree.Root()
		},
		gen.IntRange(2, 64),
	))

	properties.TestingRun(t)
}

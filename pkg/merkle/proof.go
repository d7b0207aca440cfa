package merkle

import (
	"fmt"

	"github.com/Mindburn-Labs/mtc/pkg/mtc"
)

// ExtractProof returns the bottom-up sibling path for leaf index in
// tree: at level l, the sibling index is (index >> l) ^ 1, falling back
// to the on-demand empty hash when that sibling lies outside the
// populated range.
func ExtractProof(t *Tree, index int) (mtc.SHA256Vector, error) {
	if index < 0 || index >= t.N {
		return mtc.SHA256Vector{}, fmt.Errorf("merkle: index %d out of range [0, %d)", index, t.N)
	}

	path := make([]mtc.SHA256Hash, 0, t.Height())
	for l := 0; l < t.Height(); l++ {
		siblingIndex := (index >> l) ^ 1
		path = append(path, t.NodeAt(l, siblingIndex))
	}
	return mtc.SHA256Vector{Hashes: path}, nil
}

// RecomputeRoot walks an inclusion path from a leaf hash back to a
// root, mirroring the verifier's algorithm: at level l, idx = index >>
// l; if idx is even the leaf side is the left child, else the right.
func RecomputeRoot(head mtc.HashHead, index int, leaf mtc.SHA256Hash, path mtc.SHA256Vector) mtc.SHA256Hash {
	current := leaf
	for l, sibling := range path.Hashes {
		idx := index >> l
		var left, right mtc.SHA256Hash
		if idx%2 == 0 {
			left, right = current, sibling
		} else {
			left, right = sibling, current
		}
		current = mtc.NodeHash(head, uint64(idx>>1), uint8(l+1), left, right)
	}
	return current
}

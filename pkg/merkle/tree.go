// Package merkle builds the domain-separated Merkle tree over a batch
// of assertions and extracts inclusion proofs from it. It deliberately
// avoids the conventional "duplicate the last leaf" padding scheme:
// unpopulated subtrees are hashed on demand via mtc.EmptyHash instead of
// being materialized, so an unbalanced batch costs no more than a
// balanced one of the same size.
package merkle

import (
	"fmt"

	"github.com/Mindburn-Labs/mtc/pkg/mtc"
)

// Tree holds every computed node, organized as nodes[level][index], for
// a single batch. Level 0 holds leaf hashes; the last level holds the
// single root. Only populated nodes are stored — callers asking for an
// index past len(nodes[level]) are asking for an empty subtree, whose
// hash is computed on demand via mtc.EmptyHash and never stored here.
type Tree struct {
	Head        mtc.HashHead
	N           int
	nodes       [][]mtc.SHA256Hash
}

// Build constructs the full node table for assertions under the given
// issuer and batch number. n must be at least 1.
func Build(issuerID mtc.IssuerID, batchNumber uint32, assertions []mtc.Assertion) (*Tree, error) {
	n := len(assertions)
	if n < 1 {
		return nil, fmt.Errorf("merkle: batch must contain at least one assertion, got %d", n)
	}

	head := mtc.NewHashHead(0, issuerID, batchNumber)
	levels := treeHeight(n) + 1

	nodes := make([][]mtc.SHA256Hash, levels)
	leaves := make([]mtc.SHA256Hash, n)
	for i, a := range assertions {
		leaves[i] = mtc.LeafHash(head, uint64(i), a)
	}
	nodes[0] = leaves

	for l := 1; l < levels; l++ {
		prev := nodes[l-1]
		width := (len(prev) + 1) / 2
		level := make([]mtc.SHA256Hash, width)
		for i := 0; i < width; i++ {
			left := childAt(head, prev, l-1, 2*i)
			right := childAt(head, prev, l-1, 2*i+1)
			level[i] = mtc.NodeHash(head, uint64(i), uint8(l), left, right)
		}
		nodes[l] = level
	}

	return &Tree{Head: head, N: n, nodes: nodes}, nil
}

// Root returns the single node at the top level.
func (t *Tree) Root() mtc.SHA256Hash {
	top := t.nodes[len(t.nodes)-1]
	return top[0]
}

// Height is the number of levels above the leaves (i.e. the length of
// an inclusion path).
func (t *Tree) Height() int {
	return len(t.nodes) - 1
}

// NodeAt returns the hash at (level, index), computing the on-demand
// empty hash if that subtree has no populated node.
func (t *Tree) NodeAt(level int, index int) mtc.SHA256Hash {
	return childAt(t.Head, t.nodes[level], level, index)
}

// childAt returns nodes[index] if populated, else the empty hash for
// (level, index).
func childAt(head mtc.HashHead, level []mtc.SHA256Hash, l int, index int) mtc.SHA256Hash {
	if index < len(level) {
		return level[index]
	}
	return mtc.EmptyHash(head, uint64(index), uint8(l))
}

// treeHeight returns the number of internal levels (above the leaves)
// needed to reduce n leaves to one root: ceil(log2(n)), at least 0.
func treeHeight(n int) int {
	height := 0
	for width := n; width > 1; width = (width + 1) / 2 {
		height++
	}
	return height
}

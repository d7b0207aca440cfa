package certificate

import (
	"github.com/Mindburn-Labs/mtc/pkg/merkle"
	"github.com/Mindburn-Labs/mtc/pkg/mtc"
)

// CreateBikeshedCertificate extracts the inclusion proof for index from
// tree and packages it with the assertion at that index into a
// self-contained certificate. Certificate issuance for many indices in
// the same batch reuses tree's node table.
func CreateBikeshedCertificate(tree *merkle.Tree, issuerID mtc.IssuerID, batchNumber uint32, assertions []mtc.Assertion, index int) (BikeshedCertificate, error) {
	path, err := merkle.ExtractProof(tree, index)
	if err != nil {
		return BikeshedCertificate{}, err
	}
	proof := NewMerkleTreeProof(issuerID, batchNumber, uint64(index), path)
	return BikeshedCertificate{Assertion: assertions[index], Proof: proof}, nil
}

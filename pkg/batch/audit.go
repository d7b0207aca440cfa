package batch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/gowebpki/jcs"
)

// AuditHash computes a canonical SHA-256 hash of a batch document for
// the batch index's audit trail. JSON fields can be reordered or
// reformatted by intermediate tooling without changing meaning, so the
// raw bytes are not an acceptable audit key; RFC 8785 canonicalization
// (JCS) is applied first, making the hash stable across equivalent
// encodings of the same document.
func AuditHash(raw []byte) (string, error) {
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("batch: canonicalize document for audit hash: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Mindburn-Labs/mtc/pkg/batch"
	"github.com/Mindburn-Labs/mtc/pkg/keys"
	"github.com/Mindburn-Labs/mtc/pkg/merkle"
	"github.com/Mindburn-Labs/mtc/pkg/validitywindow"
)

// writeTestSignedWindow builds and signs the validity window for batch
// 7 over the fixture document in dir/batch.json, using the key pair
// keygen wrote into dir, and writes it to outPath.
func writeTestSignedWindow(t *testing.T, dir, outPath string) error {
	t.Helper()

	raw, err := os.ReadFile(filepath.Join(dir, "batch.json"))
	if err != nil {
		return err
	}
	ingested, err := batch.Parse(raw)
	if err != nil {
		return err
	}

	tree, err := merkle.Build(ingested.IssuerID, 7, ingested.Assertions.List)
	if err != nil {
		return err
	}

	signer, err := keys.LoadSignerFromPEM(filepath.Join(dir, "issuer.key.pem"))
	if err != nil {
		return err
	}

	signed, err := validitywindow.CreateSignedValidityWindow(signer, ingested.IssuerID, nil, 14, 7, tree.Root())
	if err != nil {
		return err
	}

	return os.WriteFile(outPath, signed.Serialize(), 0644)
}

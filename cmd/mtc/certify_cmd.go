package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Mindburn-Labs/mtc/pkg/batch"
	"github.com/Mindburn-Labs/mtc/pkg/certificate"
	"github.com/Mindburn-Labs/mtc/pkg/merkle"
)

// runCertifyCmd rebuilds the Merkle tree for a previously issued batch
// from its source document — tree construction is a pure function of
// (issuer, batch number, assertions), so this never needs the original
// issuance process's state — and extracts one assertion's certificate.
func runCertifyCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("certify", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		batchDocPath string
		batchNumber  uint
		index        uint
		outPath      string
	)
	cmd.StringVar(&batchDocPath, "batch", "", "Path to the batch JSON document used at issuance (REQUIRED)")
	cmd.UintVar(&batchNumber, "batch-number", 0, "Batch number the document was issued as (REQUIRED)")
	cmd.UintVar(&index, "index", 0, "Index of the assertion to certify within the batch")
	cmd.StringVar(&outPath, "out", "", "Path to write the .mtc certificate (REQUIRED)")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	batchNumberSet := false
	cmd.Visit(func(f *flag.Flag) {
		if f.Name == "batch-number" {
			batchNumberSet = true
		}
	})
	if batchDocPath == "" || !batchNumberSet || outPath == "" {
		fmt.Fprintln(stderr, "mtc certify: --batch, --batch-number, and --out are required")
		return 2
	}

	raw, err := os.ReadFile(batchDocPath)
	if err != nil {
		fmt.Fprintf(stderr, "mtc certify: %v\n", err)
		return 2
	}
	ingested, err := batch.Parse(raw)
	if err != nil {
		fmt.Fprintf(stderr, "mtc certify: %v\n", err)
		return 1
	}
	if int(index) >= len(ingested.Assertions.List) {
		fmt.Fprintf(stderr, "mtc certify: index %d out of range for %d assertions\n", index, len(ingested.Assertions.List))
		return 2
	}

	tree, err := merkle.Build(ingested.IssuerID, uint32(batchNumber), ingested.Assertions.List)
	if err != nil {
		fmt.Fprintf(stderr, "mtc certify: %v\n", err)
		return 1
	}

	cert, err := certificate.CreateBikeshedCertificate(tree, ingested.IssuerID, uint32(batchNumber), ingested.Assertions.List, int(index))
	if err != nil {
		fmt.Fprintf(stderr, "mtc certify: %v\n", err)
		return 1
	}

	if err := os.WriteFile(outPath, cert.Serialize(), 0644); err != nil {
		fmt.Fprintf(stderr, "mtc certify: %v\n", err)
		return 2
	}

	fmt.Fprintf(stdout, "wrote %s (issuer %s, batch %d, index %d)\n", outPath, hex.EncodeToString(ingested.IssuerID), batchNumber, index)
	return 0
}

package main

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"github.com/Mindburn-Labs/mtc/pkg/keys"
)

func runKeygenCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("keygen", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		outDir     string
		passphrase string
	)
	cmd.StringVar(&outDir, "out-dir", "", "Directory to write the key pair into (REQUIRED)")
	cmd.StringVar(&passphrase, "passphrase", "", "If set, seal the private key in a passphrase-protected keystore instead of plain PEM")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if outDir == "" {
		fmt.Fprintln(stderr, "mtc keygen: --out-dir is required")
		return 2
	}

	pub, priv, err := keys.GenerateKeyPair()
	if err != nil {
		fmt.Fprintf(stderr, "mtc keygen: %v\n", err)
		return 1
	}

	pubPath := filepath.Join(outDir, "issuer.pub.pem")
	if err := keys.WritePublicPEM(pubPath, pub); err != nil {
		fmt.Fprintf(stderr, "mtc keygen: %v\n", err)
		return 1
	}

	if passphrase != "" {
		keystorePath := filepath.Join(outDir, "issuer.keystore.json")
		if err := keys.SealPassphraseProtected(keystorePath, priv, passphrase); err != nil {
			fmt.Fprintf(stderr, "mtc keygen: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "wrote %s and %s\n", pubPath, keystorePath)
		return 0
	}

	privPath := filepath.Join(outDir, "issuer.key.pem")
	if err := keys.WritePrivatePEM(privPath, priv); err != nil {
		fmt.Fprintf(stderr, "mtc keygen: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "wrote %s and %s\n", pubPath, privPath)
	return 0
}

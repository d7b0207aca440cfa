package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Mindburn-Labs/mtc/pkg/certificate"
	"github.com/Mindburn-Labs/mtc/pkg/codec"
	"github.com/Mindburn-Labs/mtc/pkg/keys"
	"github.com/Mindburn-Labs/mtc/pkg/observability"
	"github.com/Mindburn-Labs/mtc/pkg/validitywindow"
)

// runVerifyCmd implements `mtc verify`: check a .mtc certificate
// against a signed validity window under the issuer's public key.
//
// Exit codes:
//
//	0 = verification passed
//	1 = verification failed
//	2 = runtime error (bad flags, unreadable files, malformed input)
func runVerifyCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("verify", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		certPath        string
		windowPath      string
		issuerKeyPath   string
		issuerIDHex     string
		otlpEndpoint    string
		noObservability bool
	)
	cmd.StringVar(&certPath, "cert", "", "Path to the .mtc certificate (REQUIRED)")
	cmd.StringVar(&windowPath, "window", "", "Path to the signed validity window (REQUIRED)")
	cmd.StringVar(&issuerKeyPath, "issuer-key", "", "Path to the issuer's PEM-encoded Ed25519 public key (REQUIRED)")
	cmd.StringVar(&issuerIDHex, "issuer-id", "", "Hex-encoded expected issuer ID (REQUIRED)")
	cmd.StringVar(&otlpEndpoint, "otlp-endpoint", "localhost:4317", "OTLP gRPC endpoint for tracing and metrics")
	cmd.BoolVar(&noObservability, "no-observability", false, "Disable OpenTelemetry export for this run")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if certPath == "" || windowPath == "" || issuerKeyPath == "" || issuerIDHex == "" {
		fmt.Fprintln(stderr, "mtc verify: --cert, --window, --issuer-key, and --issuer-id are required")
		return 2
	}

	issuerID, err := hex.DecodeString(issuerIDHex)
	if err != nil {
		fmt.Fprintf(stderr, "mtc verify: --issuer-id: %v\n", err)
		return 2
	}

	ctx := context.Background()
	obsConfig := observability.DefaultConfig()
	obsConfig.OTLPEndpoint = otlpEndpoint
	obsConfig.Enabled = !noObservability
	provider, err := observability.New(ctx, obsConfig)
	if err != nil {
		fmt.Fprintf(stderr, "mtc verify: %v\n", err)
		return 2
	}
	defer func() { _ = provider.Shutdown(ctx) }()
	correlationID := observability.NewCorrelationID()

	certData, err := os.ReadFile(certPath)
	if err != nil {
		fmt.Fprintf(stderr, "mtc verify: %v\n", err)
		return 2
	}
	cert, _, err := certificate.ParseBikeshedCertificate(certData, 0, codec.Default())
	if err != nil {
		fmt.Fprintf(stderr, "mtc verify: parse certificate: %v\n", err)
		return 2
	}

	windowData, err := os.ReadFile(windowPath)
	if err != nil {
		fmt.Fprintf(stderr, "mtc verify: %v\n", err)
		return 2
	}
	signedWindow, _, err := validitywindow.ParseSignedValidityWindow(windowData, 0, codec.Default())
	if err != nil {
		fmt.Fprintf(stderr, "mtc verify: parse signed validity window: %v\n", err)
		return 2
	}

	issuerPub, err := keys.LoadVerifierFromPEM(issuerKeyPath)
	if err != nil {
		fmt.Fprintf(stderr, "mtc verify: %v\n", err)
		return 2
	}

	_, doneVerify := provider.TrackCertificateVerify(ctx, correlationID, issuerIDHex)
	verifyErr := certificate.VerifyCertificate(cert, signedWindow, issuerPub, issuerID)
	doneVerify(verifyErr)
	provider.RecordVerification(ctx, issuerIDHex, verifyErr == nil)
	if verifyErr != nil {
		fmt.Fprintf(stdout, "FAILED: %v\n", verifyErr)
		return 1
	}

	fmt.Fprintln(stdout, "OK: certificate verifies against the signed validity window")
	return 0
}

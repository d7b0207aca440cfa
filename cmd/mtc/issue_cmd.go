package main

import (
	"context"
	"crypto/ed25519"
	"database/sql"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Mindburn-Labs/mtc/pkg/batch"
	"github.com/Mindburn-Labs/mtc/pkg/certificate"
	"github.com/Mindburn-Labs/mtc/pkg/codec"
	"github.com/Mindburn-Labs/mtc/pkg/config"
	"github.com/Mindburn-Labs/mtc/pkg/coordination"
	"github.com/Mindburn-Labs/mtc/pkg/keys"
	"github.com/Mindburn-Labs/mtc/pkg/merkle"
	"github.com/Mindburn-Labs/mtc/pkg/mtc"
	"github.com/Mindburn-Labs/mtc/pkg/observability"
	"github.com/Mindburn-Labs/mtc/pkg/policy"
	"github.com/Mindburn-Labs/mtc/pkg/store"
	"github.com/Mindburn-Labs/mtc/pkg/validitywindow"
)

// runIssueCmd implements batch issuance end to end: parse the batch
// document, acquire the cross-process issuance lock for its issuer, gate
// assertions against issuer policy, build the tree, sign the rotated
// validity window, publish the artifacts and every per-assertion
// certificate, and record the batch in the local index.
func runIssueCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("issue", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		batchDocPath    string
		issuerKey       string
		keystorePath    string
		passphrase      string
		policyPath      string
		batchIndex      string
		batchNumber     uint
		certOutDir      string
		redisAddr       string
		redisPassword   string
		lockTTL         time.Duration
		noLock          bool
		otlpEndpoint    string
		noObservability bool
		backend         publishBackendFlags
	)
	registerPublishBackendFlags(cmd, &backend)
	cmd.StringVar(&batchDocPath, "batch", "", "Path to the batch JSON document (REQUIRED)")
	cmd.StringVar(&issuerKey, "issuer-key", "", "Path to the issuer's PEM-encoded Ed25519 private key (plain)")
	cmd.StringVar(&keystorePath, "keystore", "", "Path to a passphrase-sealed issuer keystore, as an alternative to --issuer-key")
	cmd.StringVar(&passphrase, "passphrase", "", "Passphrase unlocking --keystore")
	cmd.StringVar(&policyPath, "policy", "", "Path to the issuer policy YAML document (REQUIRED)")
	cmd.StringVar(&batchIndex, "batch-index", "mtc-batches.db", "Path to the SQLite batch index")
	cmd.UintVar(&batchNumber, "batch-number", 0, "Batch number for this issuance (REQUIRED)")
	cmd.StringVar(&certOutDir, "cert-out-dir", "", "If set, write one .mtc certificate per assertion into this directory")
	cmd.StringVar(&redisAddr, "redis-addr", "localhost:6379", "Redis address backing the cross-process issuance lock")
	cmd.StringVar(&redisPassword, "redis-password", "", "Redis password, if required")
	cmd.DurationVar(&lockTTL, "lock-ttl", 5*time.Minute, "Issuance lock lease duration")
	cmd.BoolVar(&noLock, "no-lock", false, "Skip the Redis issuance lock, for single-process development use")
	cmd.StringVar(&otlpEndpoint, "otlp-endpoint", "localhost:4317", "OTLP gRPC endpoint for tracing and metrics")
	cmd.BoolVar(&noObservability, "no-observability", false, "Disable OpenTelemetry export for this run")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	batchNumberSet := false
	cmd.Visit(func(f *flag.Flag) {
		if f.Name == "batch-number" {
			batchNumberSet = true
		}
	})
	if batchDocPath == "" || !batchNumberSet || policyPath == "" {
		fmt.Fprintln(stderr, "mtc issue: --batch, --batch-number, and --policy are required")
		return 2
	}
	if (issuerKey == "") == (keystorePath == "") {
		fmt.Fprintln(stderr, "mtc issue: exactly one of --issuer-key or --keystore is required")
		return 2
	}

	ctx := context.Background()

	obsConfig := observability.DefaultConfig()
	obsConfig.OTLPEndpoint = otlpEndpoint
	obsConfig.Enabled = !noObservability
	provider, err := observability.New(ctx, obsConfig)
	if err != nil {
		fmt.Fprintf(stderr, "mtc issue: %v\n", err)
		return 2
	}
	defer func() { _ = provider.Shutdown(ctx) }()
	correlationID := observability.NewCorrelationID()

	raw, err := os.ReadFile(batchDocPath)
	if err != nil {
		fmt.Fprintf(stderr, "mtc issue: %v\n", err)
		return 2
	}

	ingested, err := batch.Parse(raw)
	if err != nil {
		fmt.Fprintf(stderr, "mtc issue: %v\n", err)
		return 1
	}
	issuerIDHex := hex.EncodeToString(ingested.IssuerID)

	if !noLock {
		lock := coordination.NewIssuanceLock(redisAddr, redisPassword, 0, lockTTL)
		held, ok, err := lock.Acquire(ctx, issuerIDHex)
		if err != nil {
			fmt.Fprintf(stderr, "mtc issue: acquire issuance lock: %v\n", err)
			return 2
		}
		if !ok {
			fmt.Fprintf(stderr, "mtc issue: issuer %s is already being issued by another process\n", issuerIDHex)
			return 1
		}
		defer func() { _ = held.Release(ctx) }()
	}

	issuerPolicy, err := config.LoadIssuerPolicy(policyPath)
	if err != nil {
		fmt.Fprintf(stderr, "mtc issue: %v\n", err)
		return 2
	}

	assertions, err := gateAssertions(ingested.Assertions.List, issuerPolicy)
	if err != nil {
		fmt.Fprintf(stderr, "mtc issue: %v\n", err)
		return 1
	}
	if len(assertions) == 0 {
		fmt.Fprintln(stderr, "mtc issue: no assertions survived policy gating")
		return 1
	}

	_, doneBuild := provider.TrackBatchBuild(ctx, correlationID, issuerIDHex, uint32(batchNumber))
	tree, err := merkle.Build(ingested.IssuerID, uint32(batchNumber), assertions)
	doneBuild(err)
	if err != nil {
		fmt.Fprintf(stderr, "mtc issue: %v\n", err)
		return 1
	}

	var signer ed25519.PrivateKey
	if keystorePath != "" {
		signer, err = keys.OpenPassphraseProtected(keystorePath, passphrase)
	} else {
		signer, err = keys.LoadSignerFromPEM(issuerKey)
	}
	if err != nil {
		fmt.Fprintf(stderr, "mtc issue: %v\n", err)
		return 2
	}

	publisher, err := openPublisher(ctx, &backend)
	if err != nil {
		fmt.Fprintf(stderr, "mtc issue: %v\n", err)
		return 2
	}

	var prevWindow *validitywindow.SignedValidityWindow
	if latest, err := publisher.GetLatest(ctx); err == nil {
		if data, err := publisher.GetSignedValidityWindow(ctx, latest); err == nil {
			parsed, _, err := validitywindow.ParseSignedValidityWindow(data, 0, codec.Default())
			if err == nil {
				prevWindow = &parsed
			}
		}
	}

	_, doneSign := provider.TrackValidityWindowSign(ctx, correlationID, issuerIDHex, uint32(batchNumber))
	signed, err := validitywindow.CreateSignedValidityWindow(signer, ingested.IssuerID, prevWindow, int(issuerPolicy.WindowSize), uint32(batchNumber), tree.Root())
	doneSign(err)
	if err != nil {
		fmt.Fprintf(stderr, "mtc issue: %v\n", err)
		return 1
	}

	if err := publisher.PutTree(ctx, uint32(batchNumber), mtc.Assertions{List: assertions}.Serialize()); err != nil {
		fmt.Fprintf(stderr, "mtc issue: %v\n", err)
		return 2
	}
	if err := publisher.PutSignedValidityWindow(ctx, uint32(batchNumber), signed.Serialize()); err != nil {
		fmt.Fprintf(stderr, "mtc issue: %v\n", err)
		return 2
	}
	if err := publisher.PutLatest(ctx, uint32(batchNumber)); err != nil {
		fmt.Fprintf(stderr, "mtc issue: %v\n", err)
		return 2
	}

	auditHash, err := batch.AuditHash(raw)
	if err != nil {
		fmt.Fprintf(stderr, "mtc issue: %v\n", err)
		return 2
	}

	db, err := sql.Open("sqlite", batchIndex)
	if err != nil {
		fmt.Fprintf(stderr, "mtc issue: open batch index: %v\n", err)
		return 2
	}
	defer db.Close()
	idx, err := store.NewBatchIndex(db)
	if err != nil {
		fmt.Fprintf(stderr, "mtc issue: %v\n", err)
		return 2
	}
	root := tree.Root()
	if err := idx.Insert(ctx, store.BatchRecord{
		BatchNumber:    uint32(batchNumber),
		IssuerID:       issuerIDHex,
		AssertionCount: len(assertions),
		Root:           store.RootHex(root),
		AuditHash:      auditHash,
		CreatedAt:      time.Now(),
	}); err != nil {
		fmt.Fprintf(stderr, "mtc issue: %v\n", err)
		return 2
	}
	provider.RecordBatchIssued(ctx, issuerIDHex, len(assertions))

	if certOutDir != "" {
		if err := os.MkdirAll(certOutDir, 0755); err != nil {
			fmt.Fprintf(stderr, "mtc issue: %v\n", err)
			return 2
		}
		for i := range assertions {
			cert, err := certificate.CreateBikeshedCertificate(tree, ingested.IssuerID, uint32(batchNumber), assertions, i)
			if err != nil {
				fmt.Fprintf(stderr, "mtc issue: certificate %d: %v\n", i, err)
				return 1
			}
			path := filepath.Join(certOutDir, fmt.Sprintf("%d.mtc", i))
			if err := os.WriteFile(path, cert.Serialize(), 0644); err != nil {
				fmt.Fprintf(stderr, "mtc issue: %v\n", err)
				return 2
			}
		}
	}

	fmt.Fprintf(stdout, "issued batch %d (correlation %s): %d assertions, root %s\n", batchNumber, correlationID, len(assertions), store.RootHex(root))
	return 0
}

// gateAssertions drops assertions not authorized by the issuer's
// per-claim-type CEL policies, logging nothing on its own — the CLI
// prints a summary count instead.
func gateAssertions(assertions []mtc.Assertion, issuerPolicy *config.IssuerPolicy) ([]mtc.Assertion, error) {
	if len(issuerPolicy.ClaimPolicies) == 0 {
		return assertions, nil
	}

	gates := make(map[string]*policy.ClaimGate, len(issuerPolicy.ClaimPolicies))
	for _, cp := range issuerPolicy.ClaimPolicies {
		gate, err := policy.NewClaimGate(cp.Allow)
		if err != nil {
			return nil, fmt.Errorf("compile claim policy for %s: %w", cp.ClaimType, err)
		}
		gates[cp.ClaimType] = gate
	}

	var out []mtc.Assertion
	for _, a := range assertions {
		allowed := true
		for _, c := range a.Claims.Claims {
			gate, ok := gates[c.Type.String()]
			if !ok {
				continue
			}
			ok2, err := gate.Allow(a)
			if err != nil {
				return nil, err
			}
			if !ok2 {
				allowed = false
				break
			}
		}
		if allowed {
			out = append(out, a)
		}
	}
	return out, nil
}

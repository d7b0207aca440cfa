package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/Mindburn-Labs/mtc/pkg/server"
)

// runServeCmd implements `mtc serve`: a read-only HTTP endpoint over the
// local or S3 publication backend selected by the shared backend flags, for
// relying parties that pull signed validity
// windows instead of mirroring the publication backend themselves.
func runServeCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("serve", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		addr        string
		rps         int
		burst       int
		jwtKeyPath  string
		issuerScope string
		backend     publishBackendFlags
	)
	registerPublishBackendFlags(cmd, &backend)
	cmd.StringVar(&addr, "addr", "localhost:8443", "Address to listen on")
	cmd.IntVar(&rps, "rate-limit-rps", 10, "Per-IP requests/second")
	cmd.IntVar(&burst, "rate-limit-burst", 20, "Per-IP burst size")
	cmd.StringVar(&jwtKeyPath, "jwt-key", "", "If set, require a bearer JWT signed with this key")
	cmd.StringVar(&issuerScope, "issuer-scope", "", "If set alongside --jwt-key, require the token's issuer_scope to match")

	if err := cmd.Parse(args); err != nil {
		return 2
	}

	publisher, err := openPublisher(context.Background(), &backend)
	if err != nil {
		fmt.Fprintf(stderr, "mtc serve: %v\n", err)
		return 2
	}

	var authorize func(*http.Request) error
	if jwtKeyPath != "" {
		key, err := os.ReadFile(jwtKeyPath)
		if err != nil {
			fmt.Fprintf(stderr, "mtc serve: %v\n", err)
			return 2
		}
		authorize = server.BearerAuthorizer(key, issuerScope)
	}

	srv := server.New(publisher, rps, burst, authorize)
	fmt.Fprintf(stdout, "serving signed validity windows from %s backend on %s\n", backend.backend, addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		fmt.Fprintf(stderr, "mtc serve: %v\n", err)
		return 1
	}
	return 0
}

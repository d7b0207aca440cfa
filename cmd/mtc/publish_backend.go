package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/Mindburn-Labs/mtc/pkg/publish"
)

// publishBackendFlags are the flags shared by every subcommand that
// opens a Publisher, so `--publish-backend=s3` behaves identically
// whether it is issuing or serving.
type publishBackendFlags struct {
	backend    string
	root       string
	s3Bucket   string
	s3Region   string
	s3Endpoint string
	s3Prefix   string
}

func registerPublishBackendFlags(cmd *flag.FlagSet, f *publishBackendFlags) {
	cmd.StringVar(&f.backend, "publish-backend", "local", "Publication backend: local or s3")
	cmd.StringVar(&f.root, "publish-root", "", "Local publication root directory (required for --publish-backend=local)")
	cmd.StringVar(&f.s3Bucket, "s3-bucket", "", "S3 bucket name (required for --publish-backend=s3)")
	cmd.StringVar(&f.s3Region, "s3-region", "us-east-1", "S3 region")
	cmd.StringVar(&f.s3Endpoint, "s3-endpoint", "", "Optional custom S3 endpoint, for MinIO/LocalStack")
	cmd.StringVar(&f.s3Prefix, "s3-prefix", "", "Optional key prefix within the S3 bucket")
}

// openPublisher constructs the Publisher named by f.backend.
func openPublisher(ctx context.Context, f *publishBackendFlags) (publish.Publisher, error) {
	switch f.backend {
	case "local":
		if f.root == "" {
			return nil, fmt.Errorf("--publish-root is required for --publish-backend=local")
		}
		return publish.NewLocalFS(f.root)
	case "s3":
		if f.s3Bucket == "" {
			return nil, fmt.Errorf("--s3-bucket is required for --publish-backend=s3")
		}
		return publish.NewS3(ctx, publish.S3Config{
			Bucket:   f.s3Bucket,
			Region:   f.s3Region,
			Endpoint: f.s3Endpoint,
			Prefix:   f.s3Prefix,
		})
	default:
		return nil, fmt.Errorf("unknown --publish-backend %q (want local or s3)", f.backend)
	}
}

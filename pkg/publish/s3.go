package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3 publishes the batch layout under a bucket and optional key
// prefix, for relying-party fetchers that pull over HTTPS via a CDN in
// front of the bucket.
type S3 struct {
	client *s3.Client
	bucket string
	prefix string
}

// S3Config configures an S3 publisher.
type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string // optional custom endpoint, for MinIO/LocalStack
	Prefix   string
}

// NewS3 creates an S3-backed publisher.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("publish: load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (s *S3) key(parts ...string) string {
	key := s.prefix
	for _, p := range parts {
		key += p + "/"
	}
	return key[:len(key)-1]
}

func (s *S3) put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return fmt.Errorf("publish: s3 put %s: %w", key, err)
	}
	return nil
}

func (s *S3) get(ctx context.Context, key string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("publish: s3 get %s: %w", key, err)
	}
	defer func() { _ = result.Body.Close() }()
	return io.ReadAll(result.Body)
}

func (s *S3) PutSignedValidityWindow(ctx context.Context, batchNumber uint32, data []byte) error {
	return s.put(ctx, s.key("batches", strconv.FormatUint(uint64(batchNumber), 10), "signed-validity-window"), data)
}

func (s *S3) PutTree(ctx context.Context, batchNumber uint32, data []byte) error {
	return s.put(ctx, s.key("batches", strconv.FormatUint(uint64(batchNumber), 10), "tree"), data)
}

func (s *S3) PutLatest(ctx context.Context, batchNumber uint32) error {
	return s.put(ctx, s.key("batches", "latest"), []byte(strconv.FormatUint(uint64(batchNumber), 10)))
}

func (s *S3) GetSignedValidityWindow(ctx context.Context, batchNumber uint32) ([]byte, error) {
	return s.get(ctx, s.key("batches", strconv.FormatUint(uint64(batchNumber), 10), "signed-validity-window"))
}

func (s *S3) GetTree(ctx context.Context, batchNumber uint32) ([]byte, error) {
	return s.get(ctx, s.key("batches", strconv.FormatUint(uint64(batchNumber), 10), "tree"))
}

func (s *S3) GetLatest(ctx context.Context) (uint32, error) {
	data, err := s.get(ctx, s.key("batches", "latest"))
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(string(data), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("publish: parse latest marker %q: %w", data, err)
	}
	return uint32(n), nil
}

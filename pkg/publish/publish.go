// Package publish writes the per-batch publication artifacts (the
// signed validity window and the serialized tree) to a backend, and
// points a "latest" marker at the newest batch. Layout:
//
//	<root>/batches/<batch_number>/signed-validity-window
//	<root>/batches/<batch_number>/tree
//	<root>/batches/latest
package publish

import "context"

// Publisher persists the byte blobs the core produces. The core itself
// never touches a filesystem or network; glue code calls Publisher
// after issuance.
type Publisher interface {
	PutSignedValidityWindow(ctx context.Context, batchNumber uint32, data []byte) error
	PutTree(ctx context.Context, batchNumber uint32, data []byte) error
	PutLatest(ctx context.Context, batchNumber uint32) error
	GetSignedValidityWindow(ctx context.Context, batchNumber uint32) ([]byte, error)
	GetTree(ctx context.Context, batchNumber uint32) ([]byte, error)
	GetLatest(ctx context.Context) (uint32, error)
}

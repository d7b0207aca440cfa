package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// LocalFS publishes to a directory tree on the local filesystem,
// matching the layout relying-party fetchers expect.
type LocalFS struct {
	root string
}

// NewLocalFS roots publication at root, creating it if necessary.
func NewLocalFS(root string) (*LocalFS, error) {
	if err := os.MkdirAll(filepath.Join(root, "batches"), 0755); err != nil {
		return nil, fmt.Errorf("publish: create root %s: %w", root, err)
	}
	return &LocalFS{root: root}, nil
}

func (l *LocalFS) batchDir(batchNumber uint32) string {
	return filepath.Join(l.root, "batches", strconv.FormatUint(uint64(batchNumber), 10))
}

func (l *LocalFS) PutSignedValidityWindow(_ context.Context, batchNumber uint32, data []byte) error {
	dir := l.batchDir(batchNumber)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("publish: create batch dir: %w", err)
	}
	path := filepath.Join(dir, "signed-validity-window")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("publish: write %s: %w", path, err)
	}
	return nil
}

func (l *LocalFS) PutTree(_ context.Context, batchNumber uint32, data []byte) error {
	dir := l.batchDir(batchNumber)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("publish: create batch dir: %w", err)
	}
	path := filepath.Join(dir, "tree")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("publish: write %s: %w", path, err)
	}
	return nil
}

func (l *LocalFS) PutLatest(_ context.Context, batchNumber uint32) error {
	path := filepath.Join(l.root, "batches", "latest")
	body := strconv.FormatUint(uint64(batchNumber), 10)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		return fmt.Errorf("publish: write latest marker: %w", err)
	}
	return nil
}

func (l *LocalFS) GetSignedValidityWindow(_ context.Context, batchNumber uint32) ([]byte, error) {
	path := filepath.Join(l.batchDir(batchNumber), "signed-validity-window")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("publish: read %s: %w", path, err)
	}
	return data, nil
}

func (l *LocalFS) GetTree(_ context.Context, batchNumber uint32) ([]byte, error) {
	path := filepath.Join(l.batchDir(batchNumber), "tree")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("publish: read %s: %w", path, err)
	}
	return data, nil
}

func (l *LocalFS) GetLatest(_ context.Context) (uint32, error) {
	path := filepath.Join(l.root, "batches", "latest")
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("publish: read latest marker: %w", err)
	}
	n, err := strconv.ParseUint(string(data), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("publish: parse latest marker %q: %w", data, err)
	}
	return uint32(n), nil
}

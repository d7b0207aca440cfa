// Package store persists the batch index: one row per issued batch,
// recording its root, issuer, assertion count, and the audit hash of
// the raw batch document it was built from — so an auditor can later
// confirm which document produced which tree without re-parsing it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Mindburn-Labs/mtc/pkg/mtc"
)

// BatchRecord is one row of the batch index.
type BatchRecord struct {
	BatchNumber    uint32
	IssuerID       string
	AssertionCount int
	Root           string // hex-encoded SHA-256 root
	AuditHash      string // hex-encoded JCS canonical hash of the source document
	CreatedAt      time.Time
}

// BatchIndex records one row per issued batch in a SQLite database.
type BatchIndex struct {
	db *sql.DB
}

// NewBatchIndex opens (or creates) the batch index at db, migrating
// the schema if needed.
func NewBatchIndex(db *sql.DB) (*BatchIndex, error) {
	idx := &BatchIndex{db: db}
	if err := idx.migrate(); err != nil {
		return nil, err
	}
	return idx, nil
}

func (i *BatchIndex) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS batches (
		batch_number    INTEGER PRIMARY KEY,
		issuer_id       TEXT NOT NULL,
		assertion_count INTEGER NOT NULL,
		root            TEXT NOT NULL,
		audit_hash      TEXT NOT NULL,
		created_at      DATETIME NOT NULL
	);`
	_, err := i.db.ExecContext(context.Background(), query)
	if err != nil {
		return fmt.Errorf("store: migrate batch index: %w", err)
	}
	return nil
}

// Insert records a newly issued batch. It fails if batch_number
// already exists — batches are append-only.
func (i *BatchIndex) Insert(ctx context.Context, rec BatchRecord) error {
	query := `INSERT INTO batches (batch_number, issuer_id, assertion_count, root, audit_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := i.db.ExecContext(ctx, query,
		rec.BatchNumber, rec.IssuerID, rec.AssertionCount, rec.Root, rec.AuditHash,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("store: insert batch %d: %w", rec.BatchNumber, err)
	}
	return nil
}

// Get returns the record for batchNumber.
func (i *BatchIndex) Get(ctx context.Context, batchNumber uint32) (*BatchRecord, error) {
	query := `SELECT batch_number, issuer_id, assertion_count, root, audit_hash, created_at
		FROM batches WHERE batch_number = ?`
	row := i.db.QueryRowContext(ctx, query, batchNumber)
	return scanBatchRow(row)
}

// Latest returns the highest batch_number recorded, or ok=false if the
// index is empty.
func (i *BatchIndex) Latest(ctx context.Context) (rec *BatchRecord, ok bool, err error) {
	query := `SELECT batch_number, issuer_id, assertion_count, root, audit_hash, created_at
		FROM batches ORDER BY batch_number DESC LIMIT 1`
	row := i.db.QueryRowContext(ctx, query)
	rec, err = scanBatchRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	return rec, true, nil
}

func scanBatchRow(row *sql.Row) (*BatchRecord, error) {
	var (
		rec       BatchRecord
		createdAt string
	)
	err := row.Scan(&rec.BatchNumber, &rec.IssuerID, &rec.AssertionCount, &rec.Root, &rec.AuditHash, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("store: scan batch row: %w", err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &rec, nil
}

// RootHex hex-encodes a SHA256Hash for storage.
func RootHex(h mtc.SHA256Hash) string {
	return fmt.Sprintf("%x", h[:])
}

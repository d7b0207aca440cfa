package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

// TestBatchIndexInsertWrapsDriverError exercises the error path of
// Insert against a stubbed driver, independent of modernc.org/sqlite's
// actual constraint behavior exercised in batch_index_test.go.
func TestBatchIndexInsertWrapsDriverError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))

	idx, err := NewBatchIndex(db)
	if err != nil {
		t.Fatalf("new batch index failed: %v", err)
	}

	rec := BatchRecord{
		BatchNumber:    9,
		IssuerID:       "test.issuer",
		AssertionCount: 1,
		Root:           "deadbeef",
		AuditHash:      "feedface",
		CreatedAt:      time.Now(),
	}

	mock.ExpectExec("INSERT INTO batches").
		WithArgs(rec.BatchNumber, rec.IssuerID, rec.AssertionCount, rec.Root, rec.AuditHash, sqlmock.AnyArg()).
		WillReturnError(sql.ErrConnDone)

	if err := idx.Insert(context.Background(), rec); err == nil {
		t.Fatal("expected driver error to surface from Insert")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

package metricsdb

import (
	"path/filepath"
	"testing"
)

func TestOpen_CreatesSessionAndAcceptsSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.db")

	db, err := Open(path, "/srv/repos", "/mnt/view")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if err := db.RecordSample(Sample{
		RepoCount:              3,
		BlobDescriptors:        2,
		PassthroughDescriptors: 1,
		CachedBlobs:            2,
	}); err != nil {
		t.Fatalf("RecordSample: %v", err)
	}

	var count int
	if err := db.sql.QueryRow(`SELECT COUNT(*) FROM samples WHERE session_id = ?`, db.sessionID).Scan(&count); err != nil {
		t.Fatalf("query samples: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 sample row, got %d", count)
	}
}

func TestOpen_ReopenAppliesMigrationsIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.db")

	db1, err := Open(path, "/srv/repos", "/mnt/view")
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if err := db1.Close(); err != nil {
		t.Fatalf("close first: %v", err)
	}

	db2, err := Open(path, "/srv/repos", "/mnt/view")
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer db2.Close()

	if db2.sessionID == db1.sessionID {
		t.Fatalf("expected a new session row on reopen")
	}
}

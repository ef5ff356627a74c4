package packaging

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := OpenLedger(filepath.Join(t.TempDir(), "packages.db"))
	if err != nil {
		t.Fatalf("OpenLedger() error = %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestLedgerRecordLookup(t *testing.T) {
	t.Parallel()

	l := openTestLedger(t)
	if _, ok, err := l.Lookup("geo", "1.0.0"); err != nil || ok {
		t.Fatalf("Lookup() before record = %v, %v", ok, err)
	}

	if err := l.Record("geo", "1.0.0", "https://example.com/geo.tar.gz", "abc123"); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	hash, ok, err := l.Lookup("geo", "1.0.0")
	if err != nil || !ok {
		t.Fatalf("Lookup() after record = %v, %v", ok, err)
	}
	if hash != "abc123" {
		t.Errorf("hash = %q, want abc123", hash)
	}
}

func TestLedgerRecordUpdatesExisting(t *testing.T) {
	t.Parallel()

	l := openTestLedger(t)
	if err := l.Record("geo", "1.0.0", "u1", "hash1"); err != nil {
		t.Fatal(err)
	}
	if err := l.Record("geo", "1.0.0", "u2", "hash2"); err != nil {
		t.Fatalf("re-recording the same version should update, got %v", err)
	}

	hash, ok, err := l.Lookup("geo", "1.0.0")
	if err != nil || !ok || hash != "hash2" {
		t.Errorf("Lookup() = %q, %v, %v, want hash2", hash, ok, err)
	}

	entries, err := l.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("Entries() = %d rows, want 1", len(entries))
	}
}

func TestLedgerPrune(t *testing.T) {
	t.Parallel()

	l := openTestLedger(t)
	if err := l.Record("old", "1.0.0", "u", "h"); err != nil {
		t.Fatal(err)
	}

	n, err := l.Prune(time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Prune() = %d, want 1", n)
	}
	if _, ok, _ := l.Lookup("old", "1.0.0"); ok {
		t.Error("pruned entry still present")
	}
}

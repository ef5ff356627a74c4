package packaging

import (
	"bytes"
	"testing"
)

func TestCASWriteRead_RoundTrip(t *testing.T) {
	t.Parallel()

	cas := NewCAS(t.TempDir())
	content := []byte("archive bytes, pretend this is a tar.gz")
	hash, err := cas.Write(content)
	if err != nil {
		t.Fatal(err)
	}
	if hash == "" {
		t.Fatal("expected non-empty hash")
	}

	got, err := cas.Read(hash)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("round-trip failed: got %q, want %q", got, content)
	}
}

func TestCASWrite_Dedup(t *testing.T) {
	t.Parallel()

	cas := NewCAS(t.TempDir())
	content := []byte("duplicate content")
	hash1, err := cas.Write(content)
	if err != nil {
		t.Fatal(err)
	}
	hash2, err := cas.Write(content)
	if err != nil {
		t.Fatal(err)
	}
	if hash1 != hash2 {
		t.Errorf("same content produced different hashes: %s vs %s", hash1, hash2)
	}
	if !cas.Has(hash1) {
		t.Error("Has() should report stored content")
	}
}

func TestCASWrite_DifferentContent(t *testing.T) {
	t.Parallel()

	cas := NewCAS(t.TempDir())
	hash1, err := cas.Write([]byte("content A"))
	if err != nil {
		t.Fatal(err)
	}
	hash2, err := cas.Write([]byte("content B"))
	if err != nil {
		t.Fatal(err)
	}
	if hash1 == hash2 {
		t.Error("different content should produce different hashes")
	}
}

func TestCASRead_MissingHash(t *testing.T) {
	t.Parallel()

	cas := NewCAS(t.TempDir())
	_, err := cas.Read("0000000000000000000000000000000000000000000000000000000000000000")
	if err == nil {
		t.Fatal("expected error for missing hash")
	}
}

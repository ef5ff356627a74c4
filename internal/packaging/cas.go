package packaging

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// CAS is a content-addressed store for downloaded archives. Files are keyed
// by the SHA-256 of their content and compressed with zstd, so identical
// archives are stored once no matter how many packages reference them.
type CAS struct {
	dir string
}

func NewCAS(dir string) *CAS {
	return &CAS{dir: dir}
}

// path returns the sharded file path for a hash: <dir>/<first2>/<rest>.zst
func (c *CAS) path(hash string) string {
	return filepath.Join(c.dir, hash[:2], hash[2:]+".zst")
}

// Write stores content in the CAS, returning its SHA-256 hash.
// If the content already exists, this is a no-op.
func (c *CAS) Write(content []byte) (string, error) {
	hash := fmt.Sprintf("%x", sha256.Sum256(content))

	p := c.path(hash)
	if _, err := os.Stat(p); err == nil {
		return hash, nil
	}

	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return "", fmt.Errorf("creating CAS directory: %w", err)
	}

	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		return "", fmt.Errorf("creating zstd writer: %w", err)
	}
	if _, err := w.Write(content); err != nil {
		w.Close()
		return "", fmt.Errorf("compressing CAS content: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("closing zstd writer: %w", err)
	}

	if err := os.WriteFile(p, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("writing CAS file: %w", err)
	}

	return hash, nil
}

// Read retrieves content from the CAS by hash.
func (c *CAS) Read(hash string) ([]byte, error) {
	f, err := os.Open(c.path(hash))
	if err != nil {
		return nil, fmt.Errorf("reading CAS file %s: %w", hash, err)
	}
	defer f.Close()

	r, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompressing CAS file %s: %w", hash, err)
	}
	return data, nil
}

// Has reports whether a hash is present in the store.
func (c *CAS) Has(hash string) bool {
	_, err := os.Stat(c.path(hash))
	return err == nil
}

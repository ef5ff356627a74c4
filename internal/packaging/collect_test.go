package packaging

import (
	"archive/tar"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func makeArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		if err := tw.WriteHeader(&tar.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(content)),
		}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func geoArchive(t *testing.T) []byte {
	return makeArchive(t, map[string]string{
		"contents.toml":   "[package]\nname = \"geo\"\n\n[asciidoc]\nsrc_dir = \"adoc\"\nroot_doc = \"index.adoc\"\n",
		"adoc/index.adoc": "= Geo Documentation\n",
	})
}

func TestCollectorFetchesAndCaches(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(geoArchive(t))
	}))
	defer server.Close()

	base := t.TempDir()
	cas := NewCAS(filepath.Join(base, "cas"))
	ledger, err := OpenLedger(filepath.Join(base, "packages.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer ledger.Close()

	spec := &Spec{Packages: map[string]PackageSpec{
		"geo": {Key: "geo", Name: "geo", Version: "1.0.0", Type: "http", URL: server.URL + "/geo.tar.gz"},
	}}

	collector := NewCollector(cas, ledger, filepath.Join(base, "ws1"))
	packages, err := collector.Collect(context.Background(), spec)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(packages) != 1 {
		t.Fatalf("collected %d packages, want 1", len(packages))
	}
	pkg := packages[0]
	if pkg.Contents.Name != "geo" || pkg.Contents.RootDoc != "index.adoc" {
		t.Errorf("contents = %+v", pkg.Contents)
	}
	if _, err := os.Stat(filepath.Join(pkg.Dir, "adoc", "index.adoc")); err != nil {
		t.Errorf("unpacked file missing: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("server hit %d times, want 1", hits.Load())
	}

	// A fresh workspace resolves the archive from the CAS via the ledger.
	collector2 := NewCollector(cas, ledger, filepath.Join(base, "ws2"))
	if _, err := collector2.Collect(context.Background(), spec); err != nil {
		t.Fatalf("second Collect() error = %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times after cached collect, want 1", hits.Load())
	}
}

func TestCollectorLocalPackage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "contents.toml"),
		"[package]\nname = \"extra\"\n\n[asciidoc]\nsrc_dir = \"adoc\"\n")
	writeFile(t, filepath.Join(dir, "adoc", "extra.adoc"), "= Extra\n")

	base := t.TempDir()
	ledger, err := OpenLedger(filepath.Join(base, "packages.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer ledger.Close()

	collector := NewCollector(NewCAS(filepath.Join(base, "cas")), ledger, filepath.Join(base, "ws"))
	spec := &Spec{Packages: map[string]PackageSpec{
		"extra": {Key: "extra", Name: "extra", Type: "local", PackageDir: dir},
	}}

	packages, err := collector.Collect(context.Background(), spec)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if packages[0].Dir != dir {
		t.Errorf("local package dir = %q, want %q", packages[0].Dir, dir)
	}
}

func TestUntarGzRejectsEscapingEntries(t *testing.T) {
	t.Parallel()

	archive := makeArchive(t, map[string]string{"../evil.txt": "nope"})
	if err := untarGz(archive, t.TempDir()); err == nil {
		t.Error("untarGz() should reject entries escaping the target directory")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

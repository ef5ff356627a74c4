package packaging

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/errgroup"
)

// Package is a collected package, unpacked and ready to use.
type Package struct {
	Spec     PackageSpec
	Dir      string
	Contents *Contents
}

// Collector downloads and unpacks the packages of a spec. Downloads go
// through the CAS and ledger so the same archive is fetched once.
type Collector struct {
	cas          *CAS
	ledger       *Ledger
	client       *http.Client
	workspaceDir string
}

func NewCollector(cas *CAS, ledger *Ledger, workspaceDir string) *Collector {
	return &Collector{
		cas:          cas,
		ledger:       ledger,
		client:       http.DefaultClient,
		workspaceDir: workspaceDir,
	}
}

// Collect fetches all packages of the spec in parallel. The returned slice
// is sorted by package key so callers see a stable order.
func (c *Collector) Collect(ctx context.Context, spec *Spec) ([]*Package, error) {
	keys := make([]string, 0, len(spec.Packages))
	for key := range spec.Packages {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	packages := make([]*Package, len(keys))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, key := range keys {
		i, pkg := i, spec.Packages[key]
		g.Go(func() error {
			collected, err := c.collectOne(ctx, pkg)
			if err != nil {
				return fmt.Errorf("package %s: %w", pkg.Key, err)
			}
			packages[i] = collected
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return packages, nil
}

func (c *Collector) collectOne(ctx context.Context, pkg PackageSpec) (*Package, error) {
	var dir string
	var err error
	switch pkg.Type {
	case "local":
		dir, err = c.localDir(pkg)
	case "http":
		dir, err = c.fetch(ctx, pkg)
	default:
		return nil, fmt.Errorf("unsupported source type %q", pkg.Type)
	}
	if err != nil {
		return nil, err
	}

	contents, err := ReadContents(dir)
	if err != nil {
		return nil, err
	}
	return &Package{Spec: pkg, Dir: dir, Contents: contents}, nil
}

func (c *Collector) localDir(pkg PackageSpec) (string, error) {
	dir := expand(pkg.PackageDir, pkg)
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("local package dir: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("local package dir %s is not a directory", dir)
	}
	return dir, nil
}

// fetch resolves an http package: ledger hit means the archive is already in
// the CAS, otherwise it is downloaded and recorded. Either way the archive
// is unpacked into the workspace unless a previous run already did.
func (c *Collector) fetch(ctx context.Context, pkg PackageSpec) (string, error) {
	dest := filepath.Join(c.workspaceDir, pkg.Name+"-"+pkg.Version)
	if _, err := os.Stat(filepath.Join(dest, "contents.toml")); err == nil {
		return dest, nil
	}

	url := expand(pkg.URL, pkg)

	var archive []byte
	hash, cached, err := c.ledger.Lookup(pkg.Name, pkg.Version)
	if err != nil {
		return "", err
	}
	if cached && c.cas.Has(hash) {
		archive, err = c.cas.Read(hash)
		if err != nil {
			return "", err
		}
	} else {
		log.Printf("downloading %s@%s from %s", pkg.Name, pkg.Version, url)
		archive, err = c.download(ctx, url)
		if err != nil {
			return "", err
		}
		hash, err = c.cas.Write(archive)
		if err != nil {
			return "", err
		}
		if err := c.ledger.Record(pkg.Name, pkg.Version, url, hash); err != nil {
			return "", err
		}
	}

	if err := untarGz(archive, dest); err != nil {
		return "", fmt.Errorf("unpacking %s: %w", url, err)
	}
	return dest, nil
}

func (c *Collector) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading %s: unexpected status %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// untarGz unpacks a tar.gz archive into dest. Entries escaping dest are
// rejected.
func untarGz(archive []byte, dest string) error {
	gz, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return fmt.Errorf("opening gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading archive: %w", err)
		}

		target := filepath.Join(dest, filepath.FromSlash(hdr.Name))
		if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes the target directory", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode)&0777)
			if err != nil {
				return err
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
		}
	}
}

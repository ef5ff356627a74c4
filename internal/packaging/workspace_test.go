package packaging

import (
	"context"
	"path/filepath"
	"testing"
)

func testWorkspace(t *testing.T) *Workspace {
	t.Helper()

	inputDir := t.TempDir()
	writeFile(t, filepath.Join(inputDir, "index.adoc"), "= My Docs\n")

	pkgDir := t.TempDir()
	writeFile(t, filepath.Join(pkgDir, "contents.toml"),
		"[package]\nname = \"geo\"\n\n[reference]\ntype = \"doxygen\"\ndir = \"xml\"\n\n[asciidoc]\nsrc_dir = \"adoc\"\nroot_doc = \"geo.adoc\"\n")
	writeFile(t, filepath.Join(pkgDir, "adoc", "geo.adoc"), "= Geo\n")
	writeFile(t, filepath.Join(pkgDir, "xml", "index.xml"),
		`<?xml version="1.0"?><doxygenindex></doxygenindex>`)

	contents, err := ReadContents(pkgDir)
	if err != nil {
		t.Fatalf("ReadContents() error = %v", err)
	}
	return NewWorkspace(inputDir, []*Package{{Dir: pkgDir, Contents: contents}})
}

func TestWorkspaceLoad(t *testing.T) {
	t.Parallel()

	w := testWorkspace(t)

	content, err := w.Load(InputPackage, "index.adoc")
	if err != nil {
		t.Fatalf("Load(INPUT) error = %v", err)
	}
	if content != "= My Docs\n" {
		t.Errorf("Load(INPUT) = %q", content)
	}

	content, err = w.Load("geo", "geo.adoc")
	if err != nil {
		t.Fatalf("Load(geo) error = %v", err)
	}
	if content != "= Geo\n" {
		t.Errorf("Load(geo) = %q", content)
	}

	if _, err := w.Load("unknown", "x.adoc"); err == nil {
		t.Error("Load() of an unknown package should fail")
	}
}

func TestWorkspaceExists(t *testing.T) {
	t.Parallel()

	w := testWorkspace(t)
	if !w.Exists(InputPackage, "index.adoc") {
		t.Error("Exists(INPUT, index.adoc) = false")
	}
	if w.Exists(InputPackage, "missing.adoc") {
		t.Error("Exists(INPUT, missing.adoc) = true")
	}
	if !w.Exists("geo", "geo.adoc") {
		t.Error("Exists(geo, geo.adoc) = false")
	}
}

func TestWorkspaceRootDoc(t *testing.T) {
	t.Parallel()

	w := testWorkspace(t)
	root, ok := w.RootDoc("geo")
	if !ok || root != "geo.adoc" {
		t.Errorf("RootDoc(geo) = %q, %v", root, ok)
	}
	if _, ok := w.RootDoc("unknown"); ok {
		t.Error("RootDoc(unknown) should not resolve")
	}
}

func TestWorkspaceLoadElements(t *testing.T) {
	t.Parallel()

	w := testWorkspace(t)
	groups, err := w.LoadElements(context.Background())
	if err != nil {
		t.Fatalf("LoadElements() error = %v", err)
	}
	// The geo package ships an empty reference; it still yields a group.
	if len(groups) != 1 {
		t.Errorf("LoadElements() = %d groups, want 1", len(groups))
	}
}

package packaging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/mdekker/adocgen/internal/doxml"
	"github.com/mdekker/adocgen/internal/model"
)

// InputPackage names the implicit package the user's own documentation
// directory belongs to.
const InputPackage = "INPUT"

// Workspace resolves document paths across the input directory and all
// collected packages, and loads their API reference data.
type Workspace struct {
	inputDir string
	packages map[string]*Package
	order    []string
}

func NewWorkspace(inputDir string, packages []*Package) *Workspace {
	w := &Workspace{
		inputDir: inputDir,
		packages: make(map[string]*Package),
	}
	for _, pkg := range packages {
		name := pkg.Contents.Name
		w.packages[name] = pkg
		w.order = append(w.order, name)
	}
	return w
}

// docsDir returns the directory document paths of a package resolve
// against.
func (w *Workspace) docsDir(pkg string) (string, error) {
	if pkg == "" || pkg == InputPackage {
		return w.inputDir, nil
	}
	p, ok := w.packages[pkg]
	if !ok {
		return "", fmt.Errorf("unknown package %q", pkg)
	}
	if p.Contents.DocsDir == "" {
		return "", fmt.Errorf("package %q ships no documents", pkg)
	}
	return p.Contents.DocsDir, nil
}

// Load returns the contents of a document in a package.
func (w *Workspace) Load(pkg, relPath string) (string, error) {
	dir, err := w.docsDir(pkg)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(relPath)))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Exists reports whether a document is present in a package.
func (w *Workspace) Exists(pkg, relPath string) bool {
	dir, err := w.docsDir(pkg)
	if err != nil {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(relPath)))
	return err == nil && !info.IsDir()
}

// RootDoc returns the declared root document of a package.
func (w *Workspace) RootDoc(pkg string) (string, bool) {
	p, ok := w.packages[pkg]
	if !ok || p.Contents.RootDoc == "" {
		return "", false
	}
	return p.Contents.RootDoc, true
}

// LoadElements parses the Doxygen XML of every package that ships an API
// reference. Packages are loaded in parallel; the result groups elements per
// package in collection order.
func (w *Workspace) LoadElements(ctx context.Context) ([][]*model.Element, error) {
	slots := make([][]*model.Element, len(w.order))
	g, ctx := errgroup.WithContext(ctx)

	for i, name := range w.order {
		pkg := w.packages[name]
		if pkg.Contents.ReferenceDir == "" {
			continue
		}
		i, pkg := i, pkg
		slots[i] = []*model.Element{}
		g.Go(func() error {
			elements, err := doxml.LoadDirectory(ctx, pkg.Contents.ReferenceDir)
			if err != nil {
				return fmt.Errorf("package %s: %w", pkg.Contents.Name, err)
			}
			slots[i] = append(slots[i], elements...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out [][]*model.Element
	for _, elements := range slots {
		if elements != nil {
			out = append(out, elements)
		}
	}
	return out, nil
}

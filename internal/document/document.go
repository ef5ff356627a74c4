// Package document models the tree of input documents being processed:
// which document includes which, embedding versus separate pages, titles, and
// relative paths between documents.
package document

import (
	"path"
	"strings"
)

// Document is one input file in the documentation tree.
type Document struct {
	// RelativePath is the slash-separated path of the document relative to
	// the workspace root.
	RelativePath string
	// Package names the package the document came from.
	Package string
	// Title is the first document title, detected from the content.
	Title string
	// IsRoot marks the entry-point document of the run.
	IsRoot bool

	// IncludedIn is the document that included this one, if any.
	IncludedIn *Document
	// Embedded marks documents whose content is merged into the including
	// document instead of becoming a separate page.
	Embedded bool

	children []*Document
}

func New(pkg, relativePath string) *Document {
	return &Document{Package: pkg, RelativePath: path.Clean(relativePath)}
}

// Include records that child is included by d as a separate page.
func (d *Document) Include(child *Document) {
	child.IncludedIn = d
	child.Embedded = false
	d.children = append(d.children, child)
}

// Embed records that child's content is embedded into d.
func (d *Document) Embed(child *Document) {
	child.IncludedIn = d
	child.Embedded = true
	d.children = append(d.children, child)
}

// Children returns the documents included or embedded by d, in inclusion
// order.
func (d *Document) Children() []*Document {
	return d.children
}

// IsUsed reports whether the document is reachable from the documentation
// tree root.
func (d *Document) IsUsed() bool {
	return d.IsRoot || d.IncludedIn != nil
}

// Parent returns the including document, skipping embedded intermediates so
// navigation always lands on a real page.
func (d *Document) Parent() *Document {
	p := d.IncludedIn
	for p != nil && p.Embedded {
		p = p.IncludedIn
	}
	return p
}

// Root returns the root of the documentation tree.
func (d *Document) Root() *Document {
	root := d
	for root.IncludedIn != nil {
		root = root.IncludedIn
	}
	return root
}

// pages returns the non-embedded documents of the whole tree in preorder.
func (d *Document) pages() []*Document {
	var out []*Document
	var walk func(doc *Document)
	walk = func(doc *Document) {
		if !doc.Embedded {
			out = append(out, doc)
		}
		for _, c := range doc.children {
			walk(c)
		}
	}
	walk(d.Root())
	return out
}

// PreorderNext returns the page after d in preorder traversal, or nil.
func (d *Document) PreorderNext() *Document {
	pages := d.pages()
	for i, p := range pages {
		if p == d && i+1 < len(pages) {
			return pages[i+1]
		}
	}
	return nil
}

// PreorderPrev returns the page before d in preorder traversal, or nil.
func (d *Document) PreorderPrev() *Document {
	pages := d.pages()
	for i, p := range pages {
		if p == d && i > 0 {
			return pages[i-1]
		}
	}
	return nil
}

// RelativePathTo computes the slash path from d's directory to another
// document.
func (d *Document) RelativePathTo(other *Document) string {
	return RelativePath(d.RelativePath, other.RelativePath)
}

// ResolveRelativePath resolves a path relative to d's directory.
func (d *Document) ResolveRelativePath(rel string) string {
	return path.Clean(path.Join(path.Dir(d.RelativePath), rel))
}

// Stem returns the file name without its extension, the last-resort link
// text for references to this document.
func (d *Document) Stem() string {
	base := path.Base(d.RelativePath)
	return strings.TrimSuffix(base, path.Ext(base))
}

// TitleOrStem returns the detected title, falling back to the file stem.
func (d *Document) TitleOrStem() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Stem()
}

func (d *Document) String() string {
	if d.Package != "" {
		return d.Package + ":/" + d.RelativePath
	}
	return d.RelativePath
}

// RelativePath computes the slash path from the directory of one file to
// another file.
func RelativePath(from, to string) string {
	fromParts := splitPath(path.Dir(path.Clean(from)))
	toParts := splitPath(path.Clean(to))

	common := 0
	for common < len(fromParts) && common < len(toParts)-1 &&
		fromParts[common] == toParts[common] {
		common++
	}

	var parts []string
	for range fromParts[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, toParts[common:]...)
	return path.Join(parts...)
}

func splitPath(p string) []string {
	if p == "." || p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// DetectTitle returns the first document title ("= Title") in the content,
// or the empty string.
func DetectTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "= ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

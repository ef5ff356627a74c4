package generator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mdekker/adocgen/internal/document"
)

// AnchorState tracks the lifecycle of a flexible anchor.
type AnchorState int

const (
	// AnchorDeclared means the name is registered but the owning document's
	// output file is not yet known.
	AnchorDeclared AnchorState = iota
	// AnchorBound means the owning document's output file is final and the
	// anchor can be linked to.
	AnchorBound
)

// Anchor is a named link target whose owning output file is resolved after
// declaration.
type Anchor struct {
	Name     string
	LinkText string
	Doc      *document.Document
	State    AnchorState
}

// Coordinator resolves (file, anchor) pairs into link targets: in-document
// anchor references in single-page mode, cross-file links in multi-page
// mode. References to anchors that are not yet bound are deferred and
// revisited in Finalize.
//
// Not safe for concurrent use; documents are processed sequentially.
type Coordinator struct {
	multipage bool

	anchors  map[string]*Anchor
	files    map[*document.Document]string
	deferred []deferredRef
	seq      int
}

type deferredRef struct {
	token    string
	anchor   string
	from     *document.Document
	linkText string
}

func NewCoordinator(multipage bool) *Coordinator {
	return &Coordinator{
		multipage: multipage,
		anchors:   make(map[string]*Anchor),
		files:     make(map[*document.Document]string),
	}
}

// DeclareAnchor registers a flexible anchor owned by doc. Anchor names are
// unique across a run.
func (c *Coordinator) DeclareAnchor(name, linkText string, doc *document.Document) error {
	if _, ok := c.anchors[name]; ok {
		return &DuplicateAnchorError{Name: name}
	}
	c.anchors[name] = &Anchor{Name: name, LinkText: linkText, Doc: doc}
	return nil
}

// Lookup returns the registered anchor, or nil.
func (c *Coordinator) Lookup(name string) *Anchor {
	return c.anchors[name]
}

// BindDocumentFile records the final output file of a document and moves all
// anchors declared in it to the Bound state. Called once per document when
// file assignment is final.
func (c *Coordinator) BindDocumentFile(doc *document.Document, filePath string) {
	c.files[doc] = filePath
	for _, a := range c.anchors {
		if a.Doc == doc {
			a.State = AnchorBound
		}
	}
}

// DocumentFile returns the bound output file for a document. Falls back to
// the document's own relative path if no explicit binding happened.
func (c *Coordinator) DocumentFile(doc *document.Document) string {
	if f, ok := c.files[doc]; ok {
		return f
	}
	return doc.RelativePath
}

// fileTopAnchor names the implicit anchor at the top of a document, used for
// whole-document references in single-page mode.
func fileTopAnchor(doc *document.Document) string {
	stem := strings.TrimSuffix(doc.RelativePath, ".adoc")
	return "top-" + strings.ReplaceAll(stem, "/", "-") + "-top"
}

// ResolveDocRef builds a link from one document to another. Link text
// fallback order: explicit text, then the anchor name, then the target's
// title, then its file name stem.
func (c *Coordinator) ResolveDocRef(from, target *document.Document, anchor, linkText string) string {
	text := linkText
	if text == "" {
		if anchor != "" {
			text = anchor
		} else {
			text = target.TitleOrStem()
		}
	}

	if !c.multipage {
		if anchor == "" {
			anchor = fileTopAnchor(target)
		}
		return fmt.Sprintf("<<#%s,%s>>", anchor, text)
	}

	rel := document.RelativePath(c.DocumentFile(from), c.DocumentFile(target))
	return fmt.Sprintf("<<%s#%s,%s>>", rel, anchor, text)
}

// ResolveAnchorRef builds a link to a flexible anchor. If the anchor is not
// yet bound the reference is deferred: a placeholder token is returned and
// Finalize later substitutes the real link or reports the failure.
func (c *Coordinator) ResolveAnchorRef(from *document.Document, name, linkText string) string {
	a := c.anchors[name]
	if a == nil || a.State != AnchorBound {
		c.seq++
		token := fmt.Sprintf("<<!deferred-xref-%d!>>", c.seq)
		c.deferred = append(c.deferred, deferredRef{
			token:    token,
			anchor:   name,
			from:     from,
			linkText: linkText,
		})
		return token
	}
	return c.anchorLink(from, a, linkText)
}

func (c *Coordinator) anchorLink(from *document.Document, a *Anchor, linkText string) string {
	text := linkText
	if text == "" {
		text = a.LinkText
	}
	if text == "" {
		text = a.Name
	}

	if !c.multipage {
		return fmt.Sprintf("<<#%s,%s>>", a.Name, text)
	}
	rel := document.RelativePath(c.DocumentFile(from), c.DocumentFile(a.Doc))
	return fmt.Sprintf("<<%s#%s,%s>>", rel, a.Name, text)
}

// Finalize revisits every deferred reference after all documents are bound.
// It returns the placeholder substitutions to apply to generated output, and
// one UnresolvedAnchorError per anchor that still cannot be resolved, naming
// every referencing document.
func (c *Coordinator) Finalize() (map[string]string, []error) {
	substitutions := make(map[string]string)
	unresolved := make(map[string][]*document.Document)

	for _, d := range c.deferred {
		a := c.anchors[d.anchor]
		if a == nil || a.State != AnchorBound {
			unresolved[d.anchor] = append(unresolved[d.anchor], d.from)
			continue
		}
		substitutions[d.token] = c.anchorLink(d.from, a, d.linkText)
	}

	names := make([]string, 0, len(unresolved))
	for name := range unresolved {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		errs = append(errs, &UnresolvedAnchorError{
			Name:           name,
			ReferencedFrom: unresolved[name],
		})
	}
	return substitutions, errs
}

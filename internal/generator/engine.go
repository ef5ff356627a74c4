package generator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mdekker/adocgen/internal/document"
	"github.com/mdekker/adocgen/internal/reference"
)

// Loader gives the engine access to input documents. Implementations load
// from the local documentation directory and from installed packages.
type Loader interface {
	// Load returns the contents of a document.
	Load(pkg, relPath string) (string, error)
	// Exists reports whether a document is present without loading it.
	Exists(pkg, relPath string) bool
	// RootDoc returns the declared root document of a package.
	RootDoc(pkg string) (string, bool)
}

// Settings holds the per-run generation options.
type Settings struct {
	// Multipage keeps every included document a separate output page.
	Multipage bool
	// WarningsAreErrors aborts the run on the first recoverable problem.
	WarningsAreErrors bool
	// RootPackage names the package input documents belong to.
	RootPackage string
}

// Result is the outcome of a generation run.
type Result struct {
	// Files maps output paths to generated content.
	Files map[string]string
	// Violations are elements that were linked but never inserted.
	Violations []ConsistencyViolation
	// Warnings collects the recoverable problems of the run.
	Warnings []error
}

// Engine runs the two-pass generation pipeline over a document tree: a
// preprocessing pass that collects inserts, links and anchors, then a
// generating pass that produces output with every cross-reference already
// known.
type Engine struct {
	resolver *reference.Resolver
	loader   Loader
	settings Settings

	documents map[string]*document.Document
	outputs   map[*document.Document]*strings.Builder
}

func NewEngine(resolver *reference.Resolver, loader Loader, settings Settings) *Engine {
	return &Engine{
		resolver:  resolver,
		loader:    loader,
		settings:  settings,
		documents: make(map[string]*document.Document),
		outputs:   make(map[*document.Document]*strings.Builder),
	}
}

// Run processes the tree rooted at rootPath and returns the generated pages.
func (e *Engine) Run(rootPath string) (*Result, error) {
	root := e.document(e.settings.RootPackage, rootPath)
	root.IsRoot = true

	ctx := NewContext(e.resolver, root, e.settings.Multipage, e.settings.WarningsAreErrors)
	if _, err := e.processDocument(ctx); err != nil {
		return nil, err
	}

	violations := ctx.Tracker.CheckConsistency()
	if len(violations) > 0 && e.settings.WarningsAreErrors {
		return nil, &ConsistencyError{Violations: violations}
	}

	e.bindFiles(ctx, root)

	genCtx := ctx.SubContext(root)
	genCtx.Preprocessing = false
	genCtx.Namespace = ""
	genCtx.ResetLanguage()
	genCtx.Filter = nil
	if _, err := e.processDocument(genCtx); err != nil {
		return nil, err
	}

	substitutions, unresolved := ctx.Anchors.Finalize()
	for _, err := range unresolved {
		if werr := ctx.Warn(err); werr != nil {
			return nil, werr
		}
	}

	files := make(map[string]string)
	for doc, out := range e.outputs {
		content := out.String()
		for token, link := range substitutions {
			content = strings.ReplaceAll(content, token, link)
		}
		files[ctx.Anchors.DocumentFile(doc)] = content
	}

	return &Result{Files: files, Violations: violations, Warnings: ctx.Warnings()}, nil
}

// document returns the tracked Document for a package path, creating it on
// first use so the same file is represented by a single node.
func (e *Engine) document(pkg, relPath string) *document.Document {
	key := pkg + ":" + relPath
	if doc, ok := e.documents[key]; ok {
		return doc
	}
	doc := document.New(pkg, relPath)
	e.documents[key] = doc
	return doc
}

// bindFiles assigns final output files to every page. Pages keep their own
// relative path; embedded documents bind to the page they are merged into.
// Anchors become resolvable the moment their document is bound.
func (e *Engine) bindFiles(ctx *Context, root *document.Document) {
	var walk func(doc *document.Document, page *document.Document)
	walk = func(doc, page *document.Document) {
		if !doc.Embedded {
			page = doc
		}
		ctx.Anchors.BindDocumentFile(doc, page.RelativePath)
		for _, c := range doc.Children() {
			walk(c, page)
		}
	}
	walk(root, root)
}

// processDocument runs one pass over a document: load, detect the title,
// process all directives, and in the generating pass record the page output.
// The returned content is used by the caller when the document is embedded.
func (e *Engine) processDocument(ctx *Context) (string, error) {
	doc := ctx.Document
	content, err := e.loader.Load(doc.Package, doc.RelativePath)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", doc, err)
	}
	if doc.Title == "" {
		doc.Title = document.DetectTitle(content)
	}

	out, err := e.processContent(ctx, content)
	if err != nil {
		return "", err
	}

	if !ctx.Preprocessing && !doc.Embedded {
		b := &strings.Builder{}
		b.WriteString(out)
		if ctx.Multipage {
			b.WriteString("\n")
			b.WriteString(navigationBar(doc))
		}
		e.outputs[doc] = b
	}
	return out, nil
}

// processContent expands every directive in the content. The first directive
// error aborts the pass.
func (e *Engine) processContent(ctx *Context, content string) (string, error) {
	var firstErr error
	out := directiveRe.ReplaceAllStringFunc(content, func(match string) string {
		if firstErr != nil {
			return match
		}
		groups := directiveRe.FindStringSubmatch(match)
		d := parseDirective(groups[1], groups[2])
		result, err := e.execDirective(ctx, d)
		if err != nil {
			firstErr = err
			return match
		}
		return result
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

func (e *Engine) execDirective(ctx *Context, d directive) (string, error) {
	switch d.command {
	case "namespace":
		ctx.SetNamespace(d.positional)
		return "", nil
	case "language":
		return e.execLanguage(ctx, d)
	case "filter":
		return e.execFilter(ctx, d)
	case "insert":
		return e.execInsert(ctx, d)
	case "link":
		return e.execLink(ctx, d)
	case "anchor":
		return e.execAnchor(ctx, d)
	case "cross-ref":
		return e.execCrossRef(ctx, d)
	case "include":
		return e.execInclude(ctx, d)
	default:
		err := &InvalidDirectiveError{Directive: d.command, Reason: "unknown command"}
		return "", ctx.Warn(err)
	}
}

// intArg parses a numeric directive argument such as leveloffset=+2.
func intArg(d directive, name string, fallback int) int {
	raw, ok := d.args[name]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimPrefix(raw, "+"))
	if err != nil {
		return fallback
	}
	return n
}

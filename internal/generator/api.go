package generator

import (
	"fmt"
	"strings"

	"github.com/mdekker/adocgen/internal/adoc"
	"github.com/mdekker/adocgen/internal/document"
	"github.com/mdekker/adocgen/internal/model"
)

// Directive implementations. Every command runs in both passes; the
// preprocessing pass feeds the tracker and anchor coordinator and produces
// no output, the generating pass produces the actual AsciiDoc.

func (e *Engine) execLanguage(ctx *Context, d directive) (string, error) {
	lang := d.positional
	if lang == "" || lang == "none" {
		ctx.ResetLanguage()
		return "", nil
	}
	if err := ctx.SetLanguage(lang, d.args["source"]); err != nil {
		return "", ctx.Warn(err)
	}
	return "", nil
}

func (e *Engine) execFilter(ctx *Context, d directive) (string, error) {
	filter, err := adoc.NewMemberFilter(filterSpecs(d))
	if err != nil {
		return "", ctx.Warn(&InvalidDirectiveError{Directive: "filter", Reason: err.Error()})
	}
	ctx.Filter = filter
	return "", nil
}

func (e *Engine) execInsert(ctx *Context, d directive) (string, error) {
	if d.positional == "" {
		return "", ctx.Warn(&InvalidDirectiveError{Directive: "insert", Reason: "element name is required"})
	}

	elem, err := ctx.Resolver.Resolve(d.positional,
		ctx.resolveOptions(d.args["lang"], d.args["kind"], false))
	if err != nil {
		return "", ctx.Warn(err)
	}

	filter := ctx.Filter
	if specs := filterSpecs(d); len(specs) > 0 {
		extended, err := extendFilter(filter, specs)
		if err != nil {
			return "", ctx.Warn(&InvalidDirectiveError{Directive: "insert", Reason: err.Error()})
		}
		filter = extended
	}

	if ctx.Preprocessing {
		if err := ctx.Tracker.RecordInsert(elem, ctx.Document); err != nil {
			if werr := ctx.Warn(err); werr != nil {
				return "", werr
			}
		}
		return "", nil
	}
	return adoc.RenderElement(elem, filter, intArg(d, "leveloffset", 0), e.linkResolver(ctx)), nil
}

func (e *Engine) execLink(ctx *Context, d directive) (string, error) {
	if d.positional == "" {
		return "", ctx.Warn(&InvalidDirectiveError{Directive: "link", Reason: "element name is required"})
	}

	elem, err := ctx.Resolver.Resolve(d.positional,
		ctx.resolveOptions(d.args["lang"], d.args["kind"], d.boolArg("allow-overloads", true)))
	if err != nil {
		if werr := ctx.Warn(err); werr != nil {
			return "", werr
		}
		// Degrade to plain text so the sentence still reads.
		return linkText(d, nil), nil
	}

	if ctx.Preprocessing {
		ctx.Tracker.RecordLink(elem, ctx.Document)
		return linkText(d, elem), nil
	}
	return e.elementLink(ctx, elem, linkText(d, elem)), nil
}

func (e *Engine) execAnchor(ctx *Context, d directive) (string, error) {
	name := d.positional
	if name == "" {
		return "", ctx.Warn(&InvalidDirectiveError{Directive: "anchor", Reason: "anchor name is required"})
	}

	if ctx.Preprocessing {
		if err := ctx.Anchors.DeclareAnchor(name, d.args["text"], ctx.Document); err != nil {
			if werr := ctx.Warn(err); werr != nil {
				return "", werr
			}
		}
		return "", nil
	}
	if text := d.args["text"]; text != "" {
		return fmt.Sprintf("[#%s,reftext='%s']", name, text), nil
	}
	return fmt.Sprintf("[#%s]", name), nil
}

func (e *Engine) execCrossRef(ctx *Context, d directive) (string, error) {
	file := firstNonEmpty(d.positional, d.args["file"])
	pkg := d.args["package"]
	anchor := d.args["anchor"]
	text := d.args["text"]

	if file == "" && pkg == "" && anchor == "" {
		return "", ctx.Warn(&InvalidDirectiveError{
			Directive: "cross-ref",
			Reason:    "at least one of file, package or anchor is required",
		})
	}

	// Anchor-only references go through the coordinator, which defers them
	// until the owning document's output file is known.
	if file == "" && pkg == "" {
		if ctx.Preprocessing {
			return "", nil
		}
		return ctx.Anchors.ResolveAnchorRef(ctx.Document, anchor, text), nil
	}

	target, err := e.crossRefTarget(ctx, file, pkg)
	if err != nil {
		if werr := ctx.Warn(err); werr != nil {
			return "", werr
		}
		return text, nil
	}

	if ctx.Preprocessing {
		return "", nil
	}
	if !target.IsUsed() {
		err := fmt.Errorf("cross-reference to %s, which is not included in the documentation", target)
		if werr := ctx.Warn(err); werr != nil {
			return "", werr
		}
		return text, nil
	}
	return ctx.Anchors.ResolveDocRef(ctx.Document, target, anchor, text), nil
}

// crossRefTarget locates the document a cross-ref points at. A package
// without a file refers to the package's declared root document; a file
// without a package is relative to the current document.
func (e *Engine) crossRefTarget(ctx *Context, file, pkg string) (*document.Document, error) {
	if pkg == "" {
		pkg = ctx.Document.Package
		file = ctx.Document.ResolveRelativePath(file)
	} else if file == "" {
		root, ok := e.loader.RootDoc(pkg)
		if !ok {
			return nil, fmt.Errorf("package %q has no root document", pkg)
		}
		file = root
	}
	if !e.loader.Exists(pkg, file) {
		return nil, &IncludeNotFoundError{FileName: file, Package: pkg}
	}
	return e.document(pkg, file), nil
}

func (e *Engine) execInclude(ctx *Context, d directive) (string, error) {
	if d.positional == "" {
		return "", ctx.Warn(&InvalidDirectiveError{Directive: "include", Reason: "file name is required"})
	}

	pkg := d.args["package"]
	rel := d.positional
	if pkg == "" {
		pkg = ctx.Document.Package
		rel = ctx.Document.ResolveRelativePath(rel)
	}
	if !e.loader.Exists(pkg, rel) {
		return "", ctx.Warn(&IncludeNotFoundError{FileName: rel, Package: d.args["package"]})
	}

	child := e.document(pkg, rel)
	embed := d.boolArg("embed", false)

	if ctx.Preprocessing {
		if child.IncludedIn != nil {
			err := fmt.Errorf("%s is included multiple times, first from %s", child, child.IncludedIn)
			if werr := ctx.Warn(err); werr != nil {
				return "", werr
			}
			return "", nil
		}
		if embed {
			ctx.Document.Embed(child)
		} else {
			ctx.Document.Include(child)
		}
	}

	sub := ctx.SubContext(child)
	content, err := e.processDocument(sub)
	if err != nil {
		return "", err
	}

	if ctx.Preprocessing {
		return "", nil
	}
	if embed {
		return content, nil
	}

	if ctx.Multipage {
		if !d.boolArg("link", true) {
			return "", nil
		}
		text := firstNonEmpty(d.args["link-text"], child.TitleOrStem())
		rel := document.RelativePath(ctx.Anchors.DocumentFile(ctx.Document), ctx.Anchors.DocumentFile(child))
		return fmt.Sprintf("%s<<%s#,%s>>", d.args["link-prefix"], rel, text), nil
	}

	relOut := document.RelativePath(ctx.Anchors.DocumentFile(ctx.Document), ctx.Anchors.DocumentFile(child))
	return fmt.Sprintf("[#%s]\ninclude::%s[leveloffset=+%d]",
		fileTopAnchor(child), relOut, intArg(d, "leveloffset", 1)), nil
}

// elementLink renders an xref to an inserted element. In multi-page mode the
// link crosses into the page the element was inserted in.
func (e *Engine) elementLink(ctx *Context, elem *model.Element, text string) string {
	filePart := ""
	if ctx.Multipage {
		if doc, ok := ctx.Tracker.InsertedIn(elem.ID); ok && doc != ctx.Document {
			filePart = document.RelativePath(
				ctx.Anchors.DocumentFile(ctx.Document), ctx.Anchors.DocumentFile(doc)) + "#"
		}
	}
	return fmt.Sprintf("xref:%s%s[%s]", filePart, elem.ID, text)
}

// linkResolver adapts element links inside rendered descriptions.
func (e *Engine) linkResolver(ctx *Context) func(string) string {
	return func(dest string) string {
		if elem := ctx.Resolver.FindByID(dest); elem != nil {
			return e.elementLink(ctx, elem, elem.Name)
		}
		return dest
	}
}

// linkText picks the display text for a link: explicit text, then the full
// or short element name, then the raw directive argument.
func linkText(d directive, elem *model.Element) string {
	if text := d.args["text"]; text != "" {
		return text
	}
	if elem == nil {
		name, _, _ := strings.Cut(d.positional, "(")
		return name
	}
	if d.boolArg("full-name", false) {
		return elem.FullName
	}
	return elem.Name
}

// filterSpecs reads the member filter patterns of a directive. Multiple
// patterns are separated with semicolons so commas stay available as the
// argument separator.
func filterSpecs(d directive) []string {
	raw, ok := d.args["members"]
	if !ok {
		return nil
	}
	var specs []string
	for _, s := range strings.Split(raw, ";") {
		if s = strings.TrimSpace(s); s != "" {
			specs = append(specs, s)
		}
	}
	return specs
}

func extendFilter(base *adoc.MemberFilter, specs []string) (*adoc.MemberFilter, error) {
	if base == nil {
		return adoc.NewMemberFilter(specs)
	}
	return base.Extend(specs)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

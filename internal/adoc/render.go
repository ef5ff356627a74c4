package adoc

import (
	"fmt"
	"strings"

	"github.com/mdekker/adocgen/internal/model"
)

// sourceLang maps a language tag to the AsciiDoc source highlighting name.
func sourceLang(language string) string {
	switch language {
	case "objc":
		return "objective-c"
	default:
		return language
	}
}

// RenderElement produces the AsciiDoc fragment documenting an element and
// its members. The filter selects which members are included; nil includes
// all. Leveloffset positions the top heading relative to the including
// document.
func RenderElement(e *model.Element, filter *MemberFilter, leveloffset int,
	resolveLink func(dest string) string) string {

	var b strings.Builder
	renderInto(&b, e, filter, leveloffset+1, resolveLink)
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func renderInto(b *strings.Builder, e *model.Element, filter *MemberFilter, level int,
	resolveLink func(string) string) {

	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}

	fmt.Fprintf(b, "[#%s]\n", e.ID)
	fmt.Fprintf(b, "%s %s\n\n", strings.Repeat("=", level), headingText(e))

	if e.Brief != "" {
		b.WriteString(MarkdownToAsciiDoc(e.Brief, resolveLink))
		b.WriteString("\n\n")
	}

	if e.Definition != "" || e.Kind.Callable() {
		fmt.Fprintf(b, "[source,%s]\n----\n%s\n----\n\n", sourceLang(e.Language), definition(e))
	}

	if e.Description != "" {
		b.WriteString(MarkdownToAsciiDoc(e.Description, resolveLink))
		b.WriteString("\n\n")
	}

	renderParams(b, e)
	renderReturns(b, e)
	renderMembers(b, e, filter, level, resolveLink)
}

func headingText(e *model.Element) string {
	switch e.Kind {
	case model.KindEnumValue:
		return e.Name
	default:
		return e.FullName
	}
}

func definition(e *model.Element) string {
	if e.Definition != "" {
		return e.Definition
	}
	types := e.SignatureTypes()
	params := make([]string, len(types))
	for i, t := range types {
		if name := e.Params[i].Name; name != "" {
			params[i] = t + " " + name
		} else {
			params[i] = t
		}
	}
	ret := ""
	if e.Returns != nil && e.Returns.Type != nil {
		ret = e.Returns.Type.String() + " "
	}
	return fmt.Sprintf("%s%s(%s)", ret, e.Name, strings.Join(params, ", "))
}

func renderParams(b *strings.Builder, e *model.Element) {
	var documented []model.Parameter
	for _, p := range e.Params {
		if p.Description != "" || p.Name != "" {
			documented = append(documented, p)
		}
	}
	if len(documented) == 0 {
		return
	}

	b.WriteString(".Parameters\n")
	for _, p := range documented {
		fmt.Fprintf(b, "* `%s %s`", p.Type.String(), p.Name)
		if p.Description != "" {
			fmt.Fprintf(b, ": %s", p.Description)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func renderReturns(b *strings.Builder, e *model.Element) {
	if e.Returns == nil || e.Returns.Description == "" {
		return
	}
	b.WriteString(".Returns\n")
	fmt.Fprintf(b, "`%s`: %s\n\n", e.Returns.Type.String(), e.Returns.Description)
}

func renderMembers(b *strings.Builder, e *model.Element, filter *MemberFilter, level int,
	resolveLink func(string) string) {

	for _, m := range e.Members {
		if filter != nil && !filter.Matches(m.Name) {
			continue
		}
		renderInto(b, m, filter, level+1, resolveLink)
	}
}

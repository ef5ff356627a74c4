package adoc

import (
	"strings"

	gm "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	gmparser "github.com/gomarkdown/markdown/parser"
)

// MarkdownToAsciiDoc converts Markdown description text to AsciiDoc. The
// resolveLink callback may rewrite link destinations (e.g. turning intra-doc
// references into xrefs); returning the input unchanged keeps the link as-is.
func MarkdownToAsciiDoc(src string, resolveLink func(dest string) string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	if resolveLink == nil {
		resolveLink = func(dest string) string { return dest }
	}

	doc := gm.Parse([]byte(src), gmparser.NewWithExtensions(
		gmparser.CommonExtensions|gmparser.Autolink,
	))

	c := &converter{resolveLink: resolveLink}
	c.block(doc)
	return strings.TrimRight(c.b.String(), "\n")
}

type converter struct {
	b           strings.Builder
	resolveLink func(string) string
	listDepth   int
}

func (c *converter) block(node ast.Node) {
	for _, child := range node.GetChildren() {
		switch n := child.(type) {
		case *ast.Heading:
			c.b.WriteString(strings.Repeat("=", n.Level+1))
			c.b.WriteString(" ")
			c.inline(n)
			c.b.WriteString("\n\n")
		case *ast.Paragraph:
			if c.listDepth > 0 {
				c.inline(n)
			} else {
				c.inline(n)
				c.b.WriteString("\n\n")
			}
		case *ast.CodeBlock:
			lang := string(n.Info)
			if lang != "" {
				c.b.WriteString("[source," + lang + "]\n")
			}
			c.b.WriteString("----\n")
			c.b.WriteString(strings.TrimRight(string(n.Literal), "\n"))
			c.b.WriteString("\n----\n\n")
		case *ast.List:
			c.list(n)
		case *ast.BlockQuote:
			c.b.WriteString("____\n")
			c.block(n)
			c.b.WriteString("____\n\n")
		case *ast.HorizontalRule:
			c.b.WriteString("'''\n\n")
		default:
			c.block(child)
		}
	}
}

func (c *converter) list(n *ast.List) {
	marker := "*"
	if n.ListFlags&ast.ListTypeOrdered != 0 {
		marker = "."
	}
	c.listDepth++
	for _, item := range n.GetChildren() {
		c.b.WriteString(strings.Repeat(marker, c.listDepth))
		c.b.WriteString(" ")
		c.block(item)
		c.b.WriteString("\n")
	}
	c.listDepth--
	if c.listDepth == 0 {
		c.b.WriteString("\n")
	}
}

func (c *converter) inline(node ast.Node) {
	for _, child := range node.GetChildren() {
		switch n := child.(type) {
		case *ast.Text:
			c.b.WriteString(string(n.Literal))
		case *ast.Emph:
			c.b.WriteString("_")
			c.inline(n)
			c.b.WriteString("_")
		case *ast.Strong:
			c.b.WriteString("*")
			c.inline(n)
			c.b.WriteString("*")
		case *ast.Code:
			c.b.WriteString("`" + string(n.Literal) + "`")
		case *ast.Link:
			dest := c.resolveLink(string(n.Destination))
			c.b.WriteString("link:" + dest + "[")
			c.inline(n)
			c.b.WriteString("]")
		case *ast.Image:
			c.b.WriteString("image:" + string(n.Destination) + "[")
			c.inline(n)
			c.b.WriteString("]")
		case *ast.Hardbreak:
			c.b.WriteString(" +\n")
		case *ast.Softbreak:
			c.b.WriteString("\n")
		default:
			c.inline(child)
		}
	}
}

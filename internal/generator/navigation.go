package generator

import (
	"fmt"
	"strings"

	"github.com/mdekker/adocgen/internal/document"
)

// navigationBar renders the footer table linking a multi-page document to
// its neighbours in the tree: previous and next page in reading order, the
// including page, and the root page.
func navigationBar(doc *document.Document) string {
	prev := navLink(doc, doc.PreorderPrev())
	next := navLink(doc, doc.PreorderNext())
	up := navLink(doc, doc.Parent())

	home := ""
	if root := doc.Root(); root != doc {
		home = navLink(doc, root)
	}

	middle := up
	if home != "" && home != up {
		if middle != "" {
			middle += " +\n"
		}
		middle += home
	}

	var b strings.Builder
	b.WriteString("[frame=none, grid=none, cols=\"<.^,^.^,>.^\"]\n")
	b.WriteString("|===\n")
	fmt.Fprintf(&b, "|%s\n", prev)
	fmt.Fprintf(&b, "|%s\n", middle)
	fmt.Fprintf(&b, "|%s\n", next)
	b.WriteString("|===\n")
	return b.String()
}

func navLink(from, to *document.Document) string {
	if to == nil || to == from {
		return ""
	}
	return fmt.Sprintf("<<%s#,%s>>", from.RelativePathTo(to), to.TitleOrStem())
}

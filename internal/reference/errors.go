package reference

import (
	"fmt"
	"strings"

	"github.com/mdekker/adocgen/internal/model"
)

// NotFoundError is returned when a name resolves to nothing at any namespace
// level.
type NotFoundError struct {
	Name string
	Lang string
	Kind string
}

func (e *NotFoundError) Error() string {
	lang := e.Lang
	if lang == "" {
		lang = "any"
	}
	kind := e.Kind
	if kind == "" {
		kind = "any"
	}
	return fmt.Sprintf("cannot find %s %s for %s", kind, e.Name, lang)
}

// AmbiguousReferenceError is returned when multiple elements match a query
// and the caller did not allow overload selection. Candidates carries every
// match for diagnostic reporting.
type AmbiguousReferenceError struct {
	Name       string
	Candidates []*model.Element
}

func (e *AmbiguousReferenceError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "multiple matches for %s. Please provide a more specific query:", e.Name)
	for _, c := range e.Candidates {
		fmt.Fprintf(&b, "\n- %s: %s %s", c.Language, c.Kind, signature(c))
	}
	return b.String()
}

// OverloadNotFoundError is returned when an exact parameter signature was
// requested but no overload matches it.
type OverloadNotFoundError struct {
	Name       string
	ArgTypes   []string
	Candidates []*model.Element
}

func (e *OverloadNotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "no overload of %s accepts (%s). Available overloads:",
		e.Name, strings.Join(e.ArgTypes, ", "))
	for _, c := range e.Candidates {
		fmt.Fprintf(&b, "\n- %s", signature(c))
	}
	return b.String()
}

func signature(e *model.Element) string {
	if !e.Kind.Callable() {
		return e.FullName
	}
	return fmt.Sprintf("%s(%s)", e.FullName, strings.Join(e.SignatureTypes(), ", "))
}

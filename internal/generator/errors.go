package generator

import (
	"fmt"
	"strings"

	"github.com/mdekker/adocgen/internal/document"
	"github.com/mdekker/adocgen/internal/model"
)

// ConsistencyViolation reports an element that is linked somewhere in the run
// but never inserted.
type ConsistencyViolation struct {
	Element        *model.Element
	ReferencedFrom []*document.Document
}

func (v ConsistencyViolation) String() string {
	refs := make([]string, len(v.ReferencedFrom))
	for i, d := range v.ReferencedFrom {
		refs[i] = d.String()
	}
	return fmt.Sprintf("%s: %s not included in the documentation, but linked from: %s",
		v.Element.Language, v.Element.FullName, strings.Join(refs, ", "))
}

// ConsistencyError aggregates all violations found at the end of a run.
type ConsistencyError struct {
	Violations []ConsistencyViolation
}

func (e *ConsistencyError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return strings.Join(msgs, "\n")
}

// DuplicateInsertError reports that the same element was inserted more than
// once.
type DuplicateInsertError struct {
	Element *model.Element
	First   *document.Document
	Second  *document.Document
}

func (e *DuplicateInsertError) Error() string {
	return fmt.Sprintf("duplicate insertion of %s: first in %s, again in %s",
		e.Element.FullName, e.First, e.Second)
}

// DuplicateAnchorError reports that an anchor name was declared twice.
type DuplicateAnchorError struct {
	Name string
}

func (e *DuplicateAnchorError) Error() string {
	return fmt.Sprintf("anchor %q is already declared", e.Name)
}

// UnknownAnchorError reports a cross-reference to an anchor that was never
// declared.
type UnknownAnchorError struct {
	Name string
}

func (e *UnknownAnchorError) Error() string {
	return fmt.Sprintf("anchor %q does not exist", e.Name)
}

// UnresolvedAnchorError reports, at finalization, an anchor reference that
// could not be bound to an output file. It names every document that
// referenced the anchor.
type UnresolvedAnchorError struct {
	Name           string
	ReferencedFrom []*document.Document
}

func (e *UnresolvedAnchorError) Error() string {
	refs := make([]string, len(e.ReferencedFrom))
	for i, d := range e.ReferencedFrom {
		refs[i] = d.String()
	}
	return fmt.Sprintf("anchor %q could not be resolved; referenced from: %s",
		e.Name, strings.Join(refs, ", "))
}

// IncludeNotFoundError reports an include directive pointing at a file that
// does not exist in the workspace.
type IncludeNotFoundError struct {
	FileName string
	Package  string
}

func (e *IncludeNotFoundError) Error() string {
	if e.Package != "" {
		return fmt.Sprintf("include file %q not found in package %q", e.FileName, e.Package)
	}
	return fmt.Sprintf("include file %q not found", e.FileName)
}

// InvalidDirectiveError reports a directive with missing or conflicting
// arguments.
type InvalidDirectiveError struct {
	Directive string
	Reason    string
}

func (e *InvalidDirectiveError) Error() string {
	return fmt.Sprintf("invalid %s directive: %s", e.Directive, e.Reason)
}

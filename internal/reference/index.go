// Package reference stores all documented elements loaded for a run and
// resolves name lookups against them.
package reference

import (
	"sort"

	"github.com/mdekker/adocgen/internal/model"
)

// Reference is the element index for one documentation run. It is built once
// from all loaded packages and is read-only afterwards, so it can be shared
// across parallel document generation without locking.
type Reference struct {
	elements []*model.Element
	byID     map[string]*model.Element
	byName   map[string][]*model.Element
}

func New() *Reference {
	return &Reference{
		byID:   make(map[string]*model.Element),
		byName: make(map[string][]*model.Element),
	}
}

// Build merges the parse results of all packages into one index. Elements
// from different packages documenting the same qualified name are preserved
// as distinct candidates.
func Build(packages ...[]*model.Element) *Reference {
	ref := New()
	for _, elements := range packages {
		for _, e := range elements {
			ref.AppendTree(e)
		}
	}
	return ref
}

// Append registers a single element. Members are not registered; use
// AppendTree for that.
func (r *Reference) Append(e *model.Element) {
	r.elements = append(r.elements, e)
	if e.ID != "" {
		r.byID[e.ID] = e
	}
	if e.Name != "" {
		r.byName[e.Name] = append(r.byName[e.Name], e)
	}
}

// AppendTree registers an element and all of its members, recursively.
func (r *Reference) AppendTree(e *model.Element) {
	r.Append(e)
	for _, m := range e.Members {
		r.AppendTree(m)
	}
}

// FindByID returns the element with the given id, or nil.
func (r *Reference) FindByID(id string) *model.Element {
	return r.byID[id]
}

// Elements returns all registered elements in registration order.
func (r *Reference) Elements() []*model.Element {
	return r.elements
}

// Len returns the number of registered elements.
func (r *Reference) Len() int {
	return len(r.elements)
}

// LookupCandidates returns all elements whose qualified name is exactly
// fullName, optionally restricted to one language. The result is sorted by
// (full name, id) so that first-match decisions never depend on map
// iteration order.
func (r *Reference) LookupCandidates(fullName, lang string) []*model.Element {
	short := model.ShortName(fullName)
	want := model.SplitQualifiedName(fullName)

	var matches []*model.Element
	for _, e := range r.byName[short] {
		if lang != "" && e.Language != lang {
			continue
		}
		if !sameQualifiedName(want, e.FullName) {
			continue
		}
		matches = append(matches, e)
	}
	SortCandidates(matches)
	return matches
}

// SortCandidates orders elements by (full name, id), the stable order used
// for every first-match decision.
func SortCandidates(elements []*model.Element) {
	sort.SliceStable(elements, func(i, j int) bool {
		if elements[i].FullName != elements[j].FullName {
			return elements[i].FullName < elements[j].FullName
		}
		return elements[i].ID < elements[j].ID
	})
}

// sameQualifiedName compares a qualified name split into segments against a
// full name string. Comparing segment-wise makes the match independent of the
// separator style used in the query.
func sameQualifiedName(want []string, fullName string) bool {
	have := model.SplitQualifiedName(fullName)
	if len(want) != len(have) {
		return false
	}
	for i := range want {
		if want[i] != have[i] {
			return false
		}
	}
	return true
}

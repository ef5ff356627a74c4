package generator

import (
	"github.com/mdekker/adocgen/internal/document"
	"github.com/mdekker/adocgen/internal/model"
)

// Tracker is the per-run ledger of which elements have been inserted (fully
// rendered) and which have been linked (referenced by name). It is mutated
// sequentially while documents are processed and read once at the end of the
// run.
//
// Tracker state never influences resolution results; it only feeds the final
// consistency check.
type Tracker struct {
	inserted    map[string]*document.Document
	linked      map[string]*linkEntry
	linkedOrder []string
}

type linkEntry struct {
	element *model.Element
	from    []*document.Document
}

func NewTracker() *Tracker {
	return &Tracker{
		inserted: make(map[string]*document.Document),
		linked:   make(map[string]*linkEntry),
	}
}

// RecordInsert notes that an element was fully rendered in doc. Inserting
// the same element twice is reported as a DuplicateInsertError; the second
// insertion is still recorded as valid for consistency purposes.
func (t *Tracker) RecordInsert(e *model.Element, doc *document.Document) error {
	if first, ok := t.inserted[e.ID]; ok {
		return &DuplicateInsertError{Element: e, First: first, Second: doc}
	}
	t.inserted[e.ID] = doc
	return nil
}

// RecordLink notes that an element was referenced from doc.
func (t *Tracker) RecordLink(e *model.Element, doc *document.Document) {
	entry, ok := t.linked[e.ID]
	if !ok {
		entry = &linkEntry{element: e}
		t.linked[e.ID] = entry
		t.linkedOrder = append(t.linkedOrder, e.ID)
	}
	entry.from = append(entry.from, doc)
}

// InsertedIn returns the document an element was inserted in, if any.
func (t *Tracker) InsertedIn(elementID string) (*document.Document, bool) {
	doc, ok := t.inserted[elementID]
	return doc, ok
}

// CheckConsistency verifies that every linked element was also inserted
// somewhere in the run. It runs once after all documents are processed; a
// link may legitimately precede its insert, so this cannot be checked
// incrementally.
func (t *Tracker) CheckConsistency() []ConsistencyViolation {
	var violations []ConsistencyViolation
	for _, id := range t.linkedOrder {
		if _, ok := t.inserted[id]; ok {
			continue
		}
		entry := t.linked[id]
		violations = append(violations, ConsistencyViolation{
			Element:        entry.element,
			ReferencedFrom: entry.from,
		})
	}
	return violations
}

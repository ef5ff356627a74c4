package reference

import (
	"errors"
	"sync"

	"github.com/mdekker/adocgen/internal/model"
	"github.com/mdekker/adocgen/internal/transcode"
)

// Options narrows a resolution query. All fields are optional.
type Options struct {
	// Kind restricts matches to one element kind.
	Kind model.Kind
	// Lang restricts matches to one language. When empty, DefaultLang is
	// applied as a soft filter instead.
	Lang string
	// Namespace is the current search namespace. Lookups prefer the most
	// nested enclosing scope, then walk outwards to the root.
	Namespace string
	// DefaultLang is the document's default language. Normally a narrowing
	// filter only: if it would eliminate every candidate, it is ignored.
	// With SourceLang configured it filters strictly, so a miss in the
	// target language triggers the transcoding fallback.
	DefaultLang string
	// SourceLang enables transcoding fallback: when no candidate exists in
	// the target language, resolution is retried in SourceLang and the
	// result is transcoded.
	SourceLang string
	// AllowOverloads selects the first overload (in stable order) instead of
	// failing when multiple overloads match.
	AllowOverloads bool
}

// targetLang returns the language the caller effectively asked for.
func (o Options) targetLang() string {
	if o.Lang != "" {
		return o.Lang
	}
	return o.DefaultLang
}

// Resolver answers name queries against a Reference. It applies, in order:
// direct lookup through the namespace walk, then transcoding fallback.
// Transcoded views are cached so repeated lookups return the same element.
type Resolver struct {
	ref        *Reference
	transcoder *transcode.Registry

	mu         sync.Mutex
	transcoded map[string]*model.Element
}

func NewResolver(ref *Reference, registry *transcode.Registry) *Resolver {
	return &Resolver{
		ref:        ref,
		transcoder: registry,
		transcoded: make(map[string]*model.Element),
	}
}

// Reference returns the underlying element index.
func (r *Resolver) Reference() *Reference {
	return r.ref
}

// Resolve finds exactly one element matching the query, or returns a
// classified failure: NotFoundError, AmbiguousReferenceError, or
// OverloadNotFoundError.
//
// The name may carry a parameter signature ("Name(int, string)") to select
// one overload. An empty signature ("Name()") requires a parameterless
// overload.
func (r *Resolver) Resolve(name string, opts Options) (*model.Element, error) {
	elem, err := r.resolveDirect(name, opts)
	if err == nil {
		return elem, nil
	}

	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		if elem, ok := r.resolveTranscoded(name, opts); ok {
			return elem, nil
		}
	}
	return nil, err
}

// resolveDirect implements the namespace search order: for namespace A::B and
// name C it tries A::B::C, then A::C, then C, and stops at the first prefix
// with at least one candidate.
func (r *Resolver) resolveDirect(name string, opts Options) (*model.Element, error) {
	spec := parseCallSpec(name)
	nameParts := model.SplitQualifiedName(spec.name)

	var nsParts []string
	if opts.Namespace != "" {
		nsParts = model.SplitQualifiedName(opts.Namespace)
	}

	for i := len(nsParts); i >= 0; i-- {
		qualified := append(append([]string{}, nsParts[:i]...), nameParts...)
		candidates := r.candidatesAt(qualified, opts)
		if len(candidates) == 0 {
			continue
		}
		return disambiguate(spec, candidates, opts)
	}

	return nil, &NotFoundError{Name: spec.name, Lang: opts.targetLang(), Kind: string(opts.Kind)}
}

// candidatesAt returns all candidates for one fully qualified name, with kind
// and language filters applied. The default language only narrows: if no
// candidate matches it, the unfiltered set is kept. When a transcoding source
// is configured the default language filters strictly instead, so an element
// existing only in the source language is never returned untranscoded.
func (r *Resolver) candidatesAt(qualified []string, opts Options) []*model.Element {
	fullName := joinQuery(qualified)
	candidates := r.ref.LookupCandidates(fullName, opts.Lang)
	if opts.Kind != "" {
		candidates = filterElements(candidates, func(e *model.Element) bool {
			return e.Kind == opts.Kind
		})
	}
	if opts.Lang == "" && opts.DefaultLang != "" {
		narrowed := filterElements(candidates, func(e *model.Element) bool {
			return e.Language == opts.DefaultLang
		})
		if len(narrowed) > 0 || opts.SourceLang != "" {
			candidates = narrowed
		}
	}
	return candidates
}

// disambiguate reduces a non-empty candidate set to a single element.
// Candidates arrive sorted by (full name, id); the first-match rule for
// allow-overloads picks in that order, which is declaration order for
// same-package overloads.
func disambiguate(spec callSpec, candidates []*model.Element, opts Options) (*model.Element, error) {
	if spec.hasArgs {
		matching := filterElements(candidates, spec.matches)
		if len(matching) == 0 {
			return nil, &OverloadNotFoundError{
				Name:       spec.name,
				ArgTypes:   spec.argTypes,
				Candidates: candidates,
			}
		}
		candidates = matching
	}

	if len(candidates) == 1 {
		return candidates[0], nil
	}

	if opts.AllowOverloads && sameOverloadSet(candidates) {
		return candidates[0], nil
	}

	return nil, &AmbiguousReferenceError{Name: spec.name, Candidates: candidates}
}

// resolveTranscoded retries the lookup in the configured source language and
// transcodes the result to the target language.
func (r *Resolver) resolveTranscoded(name string, opts Options) (*model.Element, bool) {
	target := opts.targetLang()
	if r.transcoder == nil || opts.SourceLang == "" || target == "" || opts.SourceLang == target {
		return nil, false
	}

	sourceOpts := opts
	sourceOpts.Lang = opts.SourceLang
	sourceOpts.DefaultLang = ""
	sourceOpts.SourceLang = ""

	source, err := r.resolveDirect(name, sourceOpts)
	if err != nil {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := transcode.TranscodedID(target, source.ID)
	if cached, ok := r.transcoded[id]; ok {
		return cached, true
	}

	view, err := r.transcoder.Transcode(source, target)
	if err != nil {
		return nil, false
	}
	r.transcoded[view.ID] = view
	return view, true
}

// FindByID looks up an element by identity, including transcoded views
// created earlier in the run.
func (r *Resolver) FindByID(id string) *model.Element {
	if e := r.ref.FindByID(id); e != nil {
		return e
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transcoded[id]
}

func sameOverloadSet(candidates []*model.Element) bool {
	first := candidates[0]
	for _, c := range candidates[1:] {
		if c.FullName != first.FullName || c.Kind != first.Kind || c.Language != first.Language {
			return false
		}
	}
	return true
}

func filterElements(elements []*model.Element, keep func(*model.Element) bool) []*model.Element {
	var out []*model.Element
	for _, e := range elements {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// joinQuery joins query segments with the canonical separator. The index
// compares names segment-wise, so the separator style is irrelevant as long
// as it is one of the recognized ones.
func joinQuery(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "::"
		}
		out += p
	}
	return out
}

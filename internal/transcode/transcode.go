// Package transcode presents elements documented in one language as if they
// were written in another. Transcoded views are synthesized on demand when a
// lookup fails for the target language but a source language is configured.
package transcode

import (
	"fmt"

	"github.com/mdekker/adocgen/internal/model"
)

// Transcoder converts elements from one source language to one target
// language.
type Transcoder interface {
	Source() string
	Target() string
	// Element returns a view of e in the target language. The original
	// element is left untouched.
	Element(e *model.Element) *model.Element
}

// Error reports that transcoding between a language pair is not supported.
type Error struct {
	SourceLang string
	TargetLang string
}

func (e *Error) Error() string {
	return fmt.Sprintf("transcoding from %s to %s is not supported", e.SourceLang, e.TargetLang)
}

// Registry holds the available transcoders keyed by language pair.
type Registry struct {
	transcoders map[[2]string]Transcoder
}

// NewRegistry returns a registry with the built-in transcoders registered.
func NewRegistry() *Registry {
	r := &Registry{transcoders: make(map[[2]string]Transcoder)}
	r.Register(&kotlinTranscoder{})
	r.Register(&swiftTranscoder{})
	return r
}

func (r *Registry) Register(t Transcoder) {
	r.transcoders[[2]string{t.Source(), t.Target()}] = t
}

// Supports reports whether a transcoder for the language pair exists.
func (r *Registry) Supports(source, target string) bool {
	_, ok := r.transcoders[[2]string{source, target}]
	return ok
}

// Transcode converts an element to the target language.
func (r *Registry) Transcode(e *model.Element, target string) (*model.Element, error) {
	t, ok := r.transcoders[[2]string{e.Language, target}]
	if !ok {
		return nil, &Error{SourceLang: e.Language, TargetLang: target}
	}
	return t.Element(e), nil
}

// TranscodedID derives the identity of a transcoded view from the source
// element's identity. Deterministic, so repeated transcoding within a run
// yields the same id.
func TranscodedID(target, sourceID string) string {
	return target + "-" + sourceID
}

// typeMapper rewrites a type name for the target language. Returning the
// input unchanged is always valid.
type typeMapper func(name string) string

// cloneElement produces a deep copy of an element bound to the target
// language, with TranscodedFrom pointing back at the source.
func cloneElement(e *model.Element, target string, mapType typeMapper) *model.Element {
	if e == nil {
		return nil
	}
	clone := *e
	clone.ID = TranscodedID(target, e.ID)
	clone.Language = target
	clone.TranscodedFrom = e

	clone.Params = cloneParams(e.Params, target, mapType)
	if e.Returns != nil {
		clone.Returns = &model.ReturnValue{
			Type:        cloneTypeRef(e.Returns.Type, target, mapType),
			Description: e.Returns.Description,
		}
	}

	clone.Members = make([]*model.Element, len(e.Members))
	for i, m := range e.Members {
		clone.Members[i] = cloneElement(m, target, mapType)
		clone.Members[i].Parent = &clone
	}
	return &clone
}

func cloneParams(params []model.Parameter, target string, mapType typeMapper) []model.Parameter {
	if params == nil {
		return nil
	}
	out := make([]model.Parameter, len(params))
	for i, p := range params {
		out[i] = p
		out[i].Type = cloneTypeRef(p.Type, target, mapType)
	}
	return out
}

func cloneTypeRef(t *model.TypeRef, target string, mapType typeMapper) *model.TypeRef {
	if t == nil {
		return nil
	}
	clone := *t
	clone.Language = target
	clone.Name = mapType(t.Name)
	if t.ID != "" {
		clone.ID = TranscodedID(target, t.ID)
	}
	if t.Nested != nil {
		clone.Nested = make([]*model.TypeRef, len(t.Nested))
		for i, n := range t.Nested {
			clone.Nested[i] = cloneTypeRef(n, target, mapType)
		}
	}
	clone.Args = cloneParams(t.Args, target, mapType)
	clone.Returns = cloneTypeRef(t.Returns, target, mapType)
	return &clone
}

// kotlinTranscoder presents Java elements as Kotlin.
type kotlinTranscoder struct{}

func (*kotlinTranscoder) Source() string { return "java" }
func (*kotlinTranscoder) Target() string { return "kotlin" }

var javaToKotlinTypes = map[string]string{
	"void":    "Unit",
	"boolean": "Boolean",
	"byte":    "Byte",
	"char":    "Char",
	"short":   "Short",
	"int":     "Int",
	"long":    "Long",
	"float":   "Float",
	"double":  "Double",
	"Object":  "Any",
	"String":  "String",
}

func (*kotlinTranscoder) Element(e *model.Element) *model.Element {
	return cloneElement(e, "kotlin", func(name string) string {
		if mapped, ok := javaToKotlinTypes[name]; ok {
			return mapped
		}
		return name
	})
}

// swiftTranscoder presents Objective-C elements as Swift.
type swiftTranscoder struct{}

func (*swiftTranscoder) Source() string { return "objc" }
func (*swiftTranscoder) Target() string { return "swift" }

var objcToSwiftTypes = map[string]string{
	"void":         "Void",
	"BOOL":         "Bool",
	"NSInteger":    "Int",
	"NSUInteger":   "UInt",
	"CGFloat":      "Double",
	"id":           "Any",
	"NSString":     "String",
	"NSArray":      "Array",
	"NSDictionary": "Dictionary",
}

func (*swiftTranscoder) Element(e *model.Element) *model.Element {
	return cloneElement(e, "swift", func(name string) string {
		if mapped, ok := objcToSwiftTypes[name]; ok {
			return mapped
		}
		return name
	})
}

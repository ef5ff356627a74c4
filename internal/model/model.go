// Package model defines the in-memory representation of documented API
// elements shared by the parser, the reference index, and the generator.
package model

import (
	"strconv"
	"strings"
)

// Kind classifies a documented language element.
type Kind string

const (
	KindNamespace   Kind = "namespace"
	KindClass       Kind = "class"
	KindStruct      Kind = "struct"
	KindInterface   Kind = "interface"
	KindProtocol    Kind = "protocol"
	KindUnion       Kind = "union"
	KindFunction    Kind = "function"
	KindConstructor Kind = "constructor"
	KindDestructor  Kind = "destructor"
	KindOperator    Kind = "operator"
	KindVariable    Kind = "variable"
	KindProperty    Kind = "property"
	KindEnum        Kind = "enum"
	KindEnumValue   Kind = "enumvalue"
	KindTypedef     Kind = "typedef"
	KindAlias       Kind = "alias"
)

// Callable reports whether elements of this kind carry a parameter list that
// participates in overload disambiguation.
func (k Kind) Callable() bool {
	switch k {
	case KindFunction, KindConstructor, KindDestructor, KindOperator:
		return true
	}
	return false
}

// namespaceSeparators lists the scope separators recognized in qualified
// names, tried in order.
var namespaceSeparators = []string{"::", "."}

// SplitQualifiedName splits a qualified name into its scope segments. Both
// "::" and "." are accepted as separators; the first one present wins.
func SplitQualifiedName(name string) []string {
	for _, sep := range namespaceSeparators {
		if strings.Contains(name, sep) {
			var parts []string
			for _, p := range strings.Split(name, sep) {
				p = strings.TrimSpace(p)
				if p != "" {
					parts = append(parts, p)
				}
			}
			return parts
		}
	}
	return []string{name}
}

// Separator returns the namespace separator customary for a language.
func Separator(language string) string {
	switch language {
	case "python", "java", "kotlin", "swift", "objc":
		return "."
	default:
		return "::"
	}
}

// JoinName joins scope segments using the separator for the given language.
func JoinName(language string, parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, Separator(language))
}

// ShortName returns the last segment of a qualified name.
func ShortName(name string) string {
	parts := SplitQualifiedName(name)
	if len(parts) == 0 {
		return name
	}
	return parts[len(parts)-1]
}

// SourceLocation points at the place an element was declared. Used only for
// diagnostics.
type SourceLocation struct {
	File string
	Line int
}

func (s SourceLocation) String() string {
	if s.File == "" {
		return "<unknown>"
	}
	if s.Line <= 0 {
		return s.File
	}
	return s.File + ":" + strconv.Itoa(s.Line)
}

// TypeRef is a reference to a type, possibly carrying qualifiers and nested
// type arguments.
type TypeRef struct {
	ID        string
	Name      string
	Language  string
	Namespace string
	Kind      Kind

	Prefix string
	Suffix string
	Nested []*TypeRef
	Args   []Parameter

	// Returns is set for closure-like types.
	Returns *TypeRef
}

// String renders the type as it appears in a declaration.
func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(t.Prefix)
	b.WriteString(t.Name)
	if len(t.Nested) > 0 {
		b.WriteString("<")
		for i, n := range t.Nested {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(n.String())
		}
		b.WriteString(">")
	}
	b.WriteString(t.Suffix)
	return b.String()
}

// Resolve fills in identity information from the element the type refers to.
func (t *TypeRef) Resolve(target *Element) {
	t.ID = target.ID
	t.Kind = target.Kind
}

// Parameter describes a single typed parameter of a callable element.
type Parameter struct {
	Type         *TypeRef
	Name         string
	Description  string
	DefaultValue string
}

// ReturnValue describes the value returned by a callable element.
type ReturnValue struct {
	Type        *TypeRef
	Description string
}

// Element is one documented language entity. Elements are created while
// parsing package data and are immutable afterwards, except for the lazily
// attached TranscodedFrom link.
type Element struct {
	// ID uniquely identifies the element within one documentation run.
	ID        string
	Name      string
	FullName  string
	Namespace string
	Language  string
	Kind      Kind

	Prot        string
	Definition  string
	Brief       string
	Description string
	Include     string

	Params  []Parameter
	Returns *ReturnValue

	Members []*Element
	// Parent is a weak back-reference to the enclosing scope. Never an
	// ownership edge; the index owns all elements.
	Parent *Element

	// TranscodedFrom points at the element in another language this element
	// is a transcoded view of.
	TranscodedFrom *Element

	Source SourceLocation
}

// SignatureTypes returns the normalized parameter type strings, used for
// overload disambiguation.
func (e *Element) SignatureTypes() []string {
	types := make([]string, len(e.Params))
	for i, p := range e.Params {
		types[i] = p.Type.String()
	}
	return types
}

func (e *Element) String() string {
	if e == nil {
		return "<nil>"
	}
	return string(e.Kind) + " " + e.FullName + " (" + e.Language + ")"
}

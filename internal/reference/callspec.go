package reference

import (
	"regexp"
	"strings"

	"github.com/mdekker/adocgen/internal/model"
)

// callSpec is a parsed element query of the form
//
//	<name>(<arg type 1>, <arg type 2>, ...)
//
// The parenthesized part is optional. When present, even if empty, the query
// requires an exact match on parameter types.
type callSpec struct {
	name     string
	argTypes []string
	hasArgs  bool
}

// parseCallSpec splits an element query into the name and the requested
// parameter types. Nested brackets inside type names are honored, so
// "func(map<string, int>, bool)" yields two argument types.
func parseCallSpec(spec string) callSpec {
	start := strings.Index(spec, "(")
	end := strings.LastIndex(spec, ")")
	if start == -1 || end == -1 || start > end {
		return callSpec{name: spec}
	}
	return callSpec{
		name:     spec[:start],
		argTypes: splitArgTypes(spec[start+1 : end]),
		hasArgs:  true,
	}
}

func splitArgTypes(argsSpec string) []string {
	if strings.TrimSpace(argsSpec) == "" {
		return []string{}
	}

	const nestedStart = "({[<"
	const nestedEnd = ")}]>"

	var args []string
	nested := 0
	cursor := 0
	for i := 0; i < len(argsSpec); i++ {
		switch {
		case strings.ContainsRune(nestedStart, rune(argsSpec[i])):
			nested++
		case strings.ContainsRune(nestedEnd, rune(argsSpec[i])):
			nested--
		case argsSpec[i] == ',' && nested == 0:
			args = append(args, normalizeTypeName(argsSpec[cursor:i]))
			cursor = i + 1
		}
	}
	if rest := argsSpec[cursor:]; strings.TrimSpace(rest) != "" {
		args = append(args, normalizeTypeName(rest))
	}
	return args
}

var (
	collapseSpaceRe = regexp.MustCompile(`\s+`)
	wordNonWordRe   = regexp.MustCompile(`(\w) (\W)`)
	nonWordWordRe   = regexp.MustCompile(`(\W) (\w)`)
	nonWordPairRe   = regexp.MustCompile(`(\W) (\W)`)
)

// normalizeTypeName collapses whitespace so that "const  T &" and "const T&"
// compare equal.
func normalizeTypeName(name string) string {
	name = strings.TrimSpace(name)
	name = collapseSpaceRe.ReplaceAllString(name, " ")
	name = wordNonWordRe.ReplaceAllString(name, "$1$2")
	name = nonWordWordRe.ReplaceAllString(name, "$1$2")
	name = nonWordPairRe.ReplaceAllString(name, "$1$2")
	return name
}

// matches reports whether an element's parameter types exactly match the
// requested argument types.
func (c callSpec) matches(e *model.Element) bool {
	if !c.hasArgs {
		return true
	}
	params := e.Params
	if len(c.argTypes) != len(params) {
		return false
	}
	for i, want := range c.argTypes {
		if normalizeTypeName(params[i].Type.String()) != want {
			return false
		}
	}
	return true
}

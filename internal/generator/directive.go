package generator

import (
	"regexp"
	"strings"
)

// directiveRe matches generator directives in document text, e.g.
//
//	adoc::insert[geo::Coordinate, lang=cpp]
//	adoc::link[process(int), text=the int overload]
var directiveRe = regexp.MustCompile(`adoc::([a-z-]+)\[([^\]]*)\]`)

// directive is one parsed occurrence of adoc::<command>[<args>].
type directive struct {
	command    string
	positional string
	args       map[string]string
}

// parseDirective splits the argument list of a directive. The first argument
// without a key is the positional argument (usually the element or file
// name); the rest are key=value pairs. Bare keys are flags with value
// "true". Commas inside brackets do not split, so overload signatures like
// "process(int, bool)" stay intact.
func parseDirective(command, rawArgs string) directive {
	d := directive{command: command, args: make(map[string]string)}

	for i, part := range splitTopLevel(rawArgs) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, isPair := cutArg(part)
		switch {
		case isPair:
			d.args[key] = strings.Trim(value, "'")
		case i == 0:
			d.positional = part
		default:
			d.args[part] = "true"
		}
	}
	return d
}

// cutArg splits "key=value", ignoring '=' that appears inside brackets so a
// positional like "f(a=b)" is not mistaken for a pair.
func cutArg(part string) (key, value string, isPair bool) {
	depth := 0
	for i := 0; i < len(part); i++ {
		switch part[i] {
		case '(', '<', '{', '[':
			depth++
		case ')', '>', '}', ']':
			depth--
		case '=':
			if depth == 0 {
				return strings.TrimSpace(part[:i]), strings.TrimSpace(part[i+1:]), true
			}
		}
	}
	return "", "", false
}

// splitTopLevel splits on commas that are not nested inside brackets or
// single quotes.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	quoted := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			quoted = !quoted
		case '(', '<', '{', '[':
			if !quoted {
				depth++
			}
		case ')', '>', '}', ']':
			if !quoted {
				depth--
			}
		case ',':
			if depth == 0 && !quoted {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// boolArg interprets a flag or key=value argument as a boolean.
func (d directive) boolArg(name string, fallback bool) bool {
	v, ok := d.args[name]
	if !ok {
		return fallback
	}
	return v != "false" && v != "no"
}

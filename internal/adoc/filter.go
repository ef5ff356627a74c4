// Package adoc renders resolved elements and their descriptions as AsciiDoc
// text.
package adoc

import (
	"fmt"
	"regexp"
	"strings"
)

type filterRule struct {
	include bool
	re      *regexp.Regexp
}

// MemberFilter selects which members of a compound element are inserted.
//
// A filter is a list of specs applied in order: "ALL", "NONE", an include
// pattern ("+<regexp>" or a bare regexp), or an exclude pattern
// ("-<regexp>"). If the first spec is an include, an implicit NONE is
// prepended; if it is an exclude, an implicit ALL is prepended.
type MemberFilter struct {
	rules []filterRule
}

// NewMemberFilter compiles a filter from its specs. An empty spec list
// includes everything.
func NewMemberFilter(specs []string) (*MemberFilter, error) {
	rules, err := compileRules(specs, true)
	if err != nil {
		return nil, err
	}
	return &MemberFilter{rules: rules}, nil
}

func compileRules(specs []string, implicitBase bool) ([]filterRule, error) {
	var rules []filterRule
	for i, spec := range specs {
		switch {
		case spec == "ALL":
			rules = append(rules, filterRule{include: true, re: nil})
		case spec == "NONE":
			rules = append(rules, filterRule{include: false, re: nil})
		default:
			include := true
			pattern := spec
			if strings.HasPrefix(spec, "-") {
				include = false
				pattern = spec[1:]
			} else if strings.HasPrefix(spec, "+") {
				pattern = spec[1:]
			}
			re, err := regexp.Compile("^(?:" + pattern + ")$")
			if err != nil {
				return nil, fmt.Errorf("invalid filter pattern %q: %w", spec, err)
			}
			if i == 0 && implicitBase {
				if include {
					rules = append(rules, filterRule{include: false})
				} else {
					rules = append(rules, filterRule{include: true})
				}
			}
			rules = append(rules, filterRule{include: include, re: re})
		}
	}
	return rules, nil
}

// Extend returns a filter that applies the extra specs after this filter's
// own rules. The extra specs get no implicit ALL or NONE base, so they refine
// the inclusion state left by the base filter instead of resetting it.
func (f *MemberFilter) Extend(specs []string) (*MemberFilter, error) {
	extra, err := compileRules(specs, false)
	if err != nil {
		return nil, err
	}
	combined := &MemberFilter{}
	combined.rules = append(combined.rules, f.rules...)
	combined.rules = append(combined.rules, extra...)
	return combined, nil
}

// Matches reports whether a member name passes the filter.
func (f *MemberFilter) Matches(name string) bool {
	included := true
	for _, r := range f.rules {
		if r.re == nil {
			included = r.include
			continue
		}
		if r.re.MatchString(name) {
			included = r.include
		}
	}
	return included
}

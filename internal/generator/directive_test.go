package generator

import (
	"reflect"
	"testing"
)

func TestParseDirective(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want directive
	}{
		{
			name: "positional only",
			raw:  "geo::Coordinate",
			want: directive{command: "insert", positional: "geo::Coordinate", args: map[string]string{}},
		},
		{
			name: "positional with pairs",
			raw:  "geo::Coordinate, lang=cpp, leveloffset=+2",
			want: directive{
				command:    "insert",
				positional: "geo::Coordinate",
				args:       map[string]string{"lang": "cpp", "leveloffset": "+2"},
			},
		},
		{
			name: "overload signature keeps its commas",
			raw:  "process(int, std::vector<bool>), kind=function",
			want: directive{
				command:    "insert",
				positional: "process(int, std::vector<bool>)",
				args:       map[string]string{"kind": "function"},
			},
		},
		{
			name: "quoted value with comma",
			raw:  "setup, text='Install, then configure'",
			want: directive{
				command:    "insert",
				positional: "setup",
				args:       map[string]string{"text": "Install, then configure"},
			},
		},
		{
			name: "bare flag",
			raw:  "extra.adoc, embed",
			want: directive{
				command:    "insert",
				positional: "extra.adoc",
				args:       map[string]string{"embed": "true"},
			},
		},
		{
			name: "equals inside brackets is not a pair",
			raw:  "f(a=b)",
			want: directive{command: "insert", positional: "f(a=b)", args: map[string]string{}},
		},
		{
			name: "empty arguments",
			raw:  "",
			want: directive{command: "insert", args: map[string]string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseDirective("insert", tt.raw)
			if got.positional != tt.want.positional {
				t.Errorf("positional = %q, want %q", got.positional, tt.want.positional)
			}
			if !reflect.DeepEqual(got.args, tt.want.args) {
				t.Errorf("args = %v, want %v", got.args, tt.want.args)
			}
		})
	}
}

func TestDirectiveRegexp(t *testing.T) {
	t.Parallel()

	line := "See adoc::link[geo::Coordinate] and adoc::cross-ref[anchor=setup, text=the setup]."
	matches := directiveRe.FindAllStringSubmatch(line, -1)
	if len(matches) != 2 {
		t.Fatalf("found %d directives, want 2", len(matches))
	}
	if matches[0][1] != "link" || matches[0][2] != "geo::Coordinate" {
		t.Errorf("first match = %q %q", matches[0][1], matches[0][2])
	}
	if matches[1][1] != "cross-ref" {
		t.Errorf("second command = %q, want cross-ref", matches[1][1])
	}
}

func TestBoolArg(t *testing.T) {
	t.Parallel()

	d := directive{args: map[string]string{"embed": "true", "link": "false"}}
	if !d.boolArg("embed", false) {
		t.Error("embed should be true")
	}
	if d.boolArg("link", true) {
		t.Error("link=false should be false")
	}
	if !d.boolArg("absent", true) {
		t.Error("absent flag should use the fallback")
	}
}

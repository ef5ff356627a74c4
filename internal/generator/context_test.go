package generator

import (
	"errors"
	"testing"

	"github.com/mdekker/adocgen/internal/document"
	"github.com/mdekker/adocgen/internal/model"
	"github.com/mdekker/adocgen/internal/reference"
	"github.com/mdekker/adocgen/internal/transcode"
)

func newTestContext(elements ...*model.Element) *Context {
	ref := reference.New()
	for _, e := range elements {
		ref.AppendTree(e)
	}
	resolver := reference.NewResolver(ref, transcode.NewRegistry())
	return NewContext(resolver, document.New("INPUT", "index.adoc"), false, false)
}

func TestSubContextDoesNotLeak(t *testing.T) {
	t.Parallel()

	ctx := newTestContext()
	ctx.SetNamespace("geo")
	if err := ctx.SetLanguage("cpp", ""); err != nil {
		t.Fatalf("SetLanguage() error = %v", err)
	}

	child := document.New("INPUT", "child.adoc")
	sub := ctx.SubContext(child)
	sub.SetNamespace("traffic")
	sub.ResetLanguage()

	if ctx.Namespace != "geo" || ctx.Language != "cpp" {
		t.Errorf("parent context changed: namespace=%q language=%q", ctx.Namespace, ctx.Language)
	}
	if sub.Namespace != "traffic" || sub.Language != "" {
		t.Errorf("sub context = namespace=%q language=%q", sub.Namespace, sub.Language)
	}
	if sub.Tracker != ctx.Tracker || sub.Anchors != ctx.Anchors {
		t.Error("tracker and anchors must be shared between contexts")
	}
}

func TestSubContextInheritsScope(t *testing.T) {
	t.Parallel()

	ctx := newTestContext()
	ctx.SetNamespace("geo")
	if err := ctx.SetLanguage("kotlin", "java"); err != nil {
		t.Fatalf("SetLanguage() error = %v", err)
	}

	sub := ctx.SubContext(document.New("INPUT", "child.adoc"))
	if sub.Namespace != "geo" || sub.Language != "kotlin" || sub.SourceLanguage != "java" {
		t.Errorf("sub context scope = %q/%q/%q, want geo/kotlin/java",
			sub.Namespace, sub.Language, sub.SourceLanguage)
	}
}

func TestSetLanguageValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		lang    string
		source  string
		wantErr bool
	}{
		{name: "language only", lang: "cpp"},
		{name: "language with source", lang: "kotlin", source: "java"},
		{name: "source without language", source: "java", wantErr: true},
		{name: "source equals language", lang: "java", source: "java", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := newTestContext()
			err := ctx.SetLanguage(tt.lang, tt.source)
			if (err != nil) != tt.wantErr {
				t.Errorf("SetLanguage(%q, %q) error = %v, wantErr %v", tt.lang, tt.source, err, tt.wantErr)
			}
			if tt.wantErr {
				var invalid *InvalidDirectiveError
				if !errors.As(err, &invalid) {
					t.Errorf("error = %v, want InvalidDirectiveError", err)
				}
			}
		})
	}
}

func TestWarnCollectsDuringPreprocessingOnly(t *testing.T) {
	t.Parallel()

	ctx := newTestContext()
	if err := ctx.Warn(errors.New("first")); err != nil {
		t.Fatalf("Warn() error = %v", err)
	}

	gen := ctx.SubContext(ctx.Document)
	gen.Preprocessing = false
	if err := gen.Warn(errors.New("second")); err != nil {
		t.Fatalf("Warn() error = %v", err)
	}

	if got := ctx.Warnings(); len(got) != 1 || got[0].Error() != "first" {
		t.Errorf("Warnings() = %v, want only the preprocessing warning", got)
	}
}

func TestWarnAsError(t *testing.T) {
	t.Parallel()

	ctx := newTestContext()
	ctx.WarningsAreErrors = true
	if err := ctx.Warn(errors.New("boom")); err == nil {
		t.Error("Warn() should return the error when warnings are errors")
	}
}

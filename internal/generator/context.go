package generator

import (
	"log"

	"github.com/mdekker/adocgen/internal/adoc"
	"github.com/mdekker/adocgen/internal/document"
	"github.com/mdekker/adocgen/internal/model"
	"github.com/mdekker/adocgen/internal/reference"
)

// Context carries the state visible to directives while one document is
// processed. The resolver, tracker and anchor coordinator are shared across
// the whole run; the namespace, language and filter fields are per-document
// values. SubContext copies the struct, so changes made inside an included
// document are structurally unable to leak back into the including one.
type Context struct {
	Resolver *reference.Resolver
	Tracker  *Tracker
	Anchors  *Coordinator

	Multipage         bool
	WarningsAreErrors bool
	// Preprocessing is true during the first pass, when inserts, links and
	// anchors are collected and no output is produced.
	Preprocessing bool

	Document *document.Document

	// Namespace is the current search namespace for element lookups.
	Namespace string
	// Language is the default language for element lookups.
	Language string
	// SourceLanguage enables transcoding fallback from another language.
	SourceLanguage string
	// Filter is the global member filter applied when inserting compounds.
	Filter *adoc.MemberFilter

	warnings *[]error
}

func NewContext(resolver *reference.Resolver, root *document.Document, multipage, warningsAreErrors bool) *Context {
	return &Context{
		Resolver:          resolver,
		Tracker:           NewTracker(),
		Anchors:           NewCoordinator(multipage),
		Multipage:         multipage,
		WarningsAreErrors: warningsAreErrors,
		Preprocessing:     true,
		Document:          root,
		warnings:          new([]error),
	}
}

// SubContext returns the context for processing an included document. Shared
// state stays shared; per-document values are copied.
func (c *Context) SubContext(doc *document.Document) *Context {
	sub := *c
	sub.Document = doc
	return &sub
}

// SetLanguage sets the default lookup language, optionally with a source
// language for transcoding fallback.
func (c *Context) SetLanguage(lang, source string) error {
	if source != "" && lang == "" {
		return &InvalidDirectiveError{Directive: "language", Reason: "source requires a language"}
	}
	if source != "" && source == lang {
		return &InvalidDirectiveError{Directive: "language", Reason: "source and language cannot be the same"}
	}
	c.Language = lang
	c.SourceLanguage = source
	return nil
}

// ResetLanguage clears the default language and transcoding source.
func (c *Context) ResetLanguage() {
	c.Language = ""
	c.SourceLanguage = ""
}

// SetNamespace sets the namespace lookups start from. Empty resets to the
// root namespace.
func (c *Context) SetNamespace(ns string) {
	c.Namespace = ns
}

// resolveOptions builds resolver options from the context plus directive
// arguments.
func (c *Context) resolveOptions(lang, kind string, allowOverloads bool) reference.Options {
	return reference.Options{
		Kind:           model.Kind(kind),
		Lang:           lang,
		Namespace:      c.Namespace,
		DefaultLang:    c.Language,
		SourceLang:     c.SourceLanguage,
		AllowOverloads: allowOverloads,
	}
}

// Warn reports a recoverable problem. With warnings-as-errors enabled the
// error is returned and aborts processing; otherwise it is logged and
// collected for the final report.
func (c *Context) Warn(err error) error {
	if c.WarningsAreErrors {
		return err
	}
	// Duplicate warnings from the two passes are fine for the log, but the
	// report should list each once; the preprocessing pass is the one that
	// collects.
	if c.Preprocessing {
		*c.warnings = append(*c.warnings, err)
	}
	log.Printf("warning: %s (in %s)", err, c.Document)
	return nil
}

// Warnings returns all warnings collected during the run.
func (c *Context) Warnings() []error {
	return *c.warnings
}

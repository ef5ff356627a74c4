// Package doxml loads Doxygen XML output into the element model. The index
// file lists all compounds; each compound has its own XML file with the full
// definition of the compound and its members.
package doxml

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mdekker/adocgen/internal/model"
)

type indexFile struct {
	Compounds []indexCompound `xml:"compound"`
}

type indexCompound struct {
	RefID string `xml:"refid,attr"`
	Kind  string `xml:"kind,attr"`
	Name  string `xml:"name"`
}

type compoundFile struct {
	Compounds []compoundDef `xml:"compounddef"`
}

type compoundDef struct {
	ID       string       `xml:"id,attr"`
	Kind     string       `xml:"kind,attr"`
	Language string       `xml:"language,attr"`
	Name     string       `xml:"compoundname"`
	Brief    description  `xml:"briefdescription"`
	Detailed description  `xml:"detaileddescription"`
	Includes []string     `xml:"includes"`
	Sections []sectionDef `xml:"sectiondef"`
	Location location     `xml:"location"`
}

type sectionDef struct {
	Members []memberDef `xml:"memberdef"`
}

type memberDef struct {
	ID         string      `xml:"id,attr"`
	Kind       string      `xml:"kind,attr"`
	Prot       string      `xml:"prot,attr"`
	Type       typeText    `xml:"type"`
	Definition string      `xml:"definition"`
	ArgsString string      `xml:"argsstring"`
	Name       string      `xml:"name"`
	Params     []paramDef  `xml:"param"`
	Values     []enumValue `xml:"enumvalue"`
	Brief      description `xml:"briefdescription"`
	Detailed   description `xml:"detaileddescription"`
	Location   location    `xml:"location"`
}

type paramDef struct {
	Type     typeText `xml:"type"`
	DeclName string   `xml:"declname"`
}

type enumValue struct {
	ID    string      `xml:"id,attr"`
	Name  string      `xml:"name"`
	Brief description `xml:"briefdescription"`
}

type location struct {
	File string `xml:"file,attr"`
	Line int    `xml:"line,attr"`
}

// typeText flattens a type node, dropping the <ref> markup Doxygen wraps
// around known type names.
type typeText struct {
	Text string
}

func (t *typeText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch tk := tok.(type) {
		case xml.CharData:
			b.Write(tk)
		case xml.EndElement:
			if tk.Name == start.Name {
				t.Text = strings.TrimSpace(b.String())
				return nil
			}
		}
	}
}

// description flattens the nested para markup of a Doxygen description into
// plain paragraphs.
type description struct {
	Text string
}

func (desc *description) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var paras []string
	var current strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch tk := tok.(type) {
		case xml.CharData:
			current.Write(tk)
		case xml.EndElement:
			if tk.Name.Local == "para" {
				if text := strings.TrimSpace(current.String()); text != "" {
					paras = append(paras, text)
				}
				current.Reset()
			}
			if tk.Name == start.Name {
				if text := strings.TrimSpace(current.String()); text != "" {
					paras = append(paras, text)
				}
				desc.Text = strings.Join(paras, "\n\n")
				return nil
			}
		}
	}
}

// compoundKinds are the index entries that carry their own XML file and
// become top-level elements. File and directory compounds are skipped.
var compoundKinds = map[string]model.Kind{
	"class":     model.KindClass,
	"struct":    model.KindStruct,
	"interface": model.KindInterface,
	"protocol":  model.KindProtocol,
	"union":     model.KindUnion,
	"namespace": model.KindNamespace,
}

var memberKinds = map[string]model.Kind{
	"function": model.KindFunction,
	"variable": model.KindVariable,
	"property": model.KindProperty,
	"enum":     model.KindEnum,
	"typedef":  model.KindTypedef,
}

// languageTag maps Doxygen's language attribute to the tags used for lookup.
func languageTag(doxygen string) string {
	switch doxygen {
	case "C++":
		return "cpp"
	case "Java":
		return "java"
	case "Objective-C":
		return "objc"
	case "Python":
		return "python"
	default:
		return strings.ToLower(doxygen)
	}
}

// LoadDirectory parses a Doxygen XML output directory into model elements.
// Compound files are parsed in parallel; element order follows index.xml so
// repeated runs produce the same result.
func LoadDirectory(ctx context.Context, dir string) ([]*model.Element, error) {
	data, err := os.ReadFile(filepath.Join(dir, "index.xml"))
	if err != nil {
		return nil, fmt.Errorf("read doxygen index: %w", err)
	}
	var index indexFile
	if err := xml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parse doxygen index: %w", err)
	}

	slots := make([][]*model.Element, len(index.Compounds))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i, compound := range index.Compounds {
		if _, ok := compoundKinds[compound.Kind]; !ok {
			continue
		}
		i, compound := i, compound
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			elements, err := loadCompound(filepath.Join(dir, compound.RefID+".xml"))
			if err != nil {
				return fmt.Errorf("compound %s: %w", compound.Name, err)
			}
			slots[i] = elements
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []*model.Element
	for _, elements := range slots {
		out = append(out, elements...)
	}
	return out, nil
}

func loadCompound(path string) ([]*model.Element, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file compoundFile
	if err := xml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	var out []*model.Element
	for _, def := range file.Compounds {
		out = append(out, buildCompound(def))
	}
	return out, nil
}

func buildCompound(def compoundDef) *model.Element {
	lang := languageTag(def.Language)
	parts := model.SplitQualifiedName(def.Name)
	namespace := model.JoinName(lang, parts[:len(parts)-1]...)

	e := &model.Element{
		ID:          def.ID,
		Name:        model.ShortName(def.Name),
		FullName:    def.Name,
		Namespace:   namespace,
		Language:    lang,
		Kind:        compoundKinds[def.Kind],
		Brief:       def.Brief.Text,
		Description: def.Detailed.Text,
		Source: model.SourceLocation{
			File: def.Location.File,
			Line: def.Location.Line,
		},
	}
	if len(def.Includes) > 0 {
		e.Include = def.Includes[0]
	}

	for _, section := range def.Sections {
		for _, member := range section.Members {
			if child := buildMember(member, e); child != nil {
				e.Members = append(e.Members, child)
			}
		}
	}
	return e
}

func buildMember(def memberDef, parent *model.Element) *model.Element {
	kind, ok := memberKinds[def.Kind]
	if !ok {
		return nil
	}

	e := &model.Element{
		ID:          def.ID,
		Name:        def.Name,
		FullName:    model.JoinName(parent.Language, parent.FullName, def.Name),
		Namespace:   parent.FullName,
		Language:    parent.Language,
		Kind:        kind,
		Prot:        def.Prot,
		Brief:       def.Brief.Text,
		Description: def.Detailed.Text,
		Parent:      parent,
		Source: model.SourceLocation{
			File: def.Location.File,
			Line: def.Location.Line,
		},
	}

	if def.Definition != "" {
		e.Definition = strings.TrimSpace(def.Definition + def.ArgsString)
	}

	if kind == model.KindFunction {
		for _, p := range def.Params {
			e.Params = append(e.Params, model.Parameter{
				Name: p.DeclName,
				Type: &model.TypeRef{Name: p.Type.Text, Language: parent.Language},
			})
		}
		if def.Type.Text != "" && def.Type.Text != "void" {
			e.Returns = &model.ReturnValue{
				Type: &model.TypeRef{Name: def.Type.Text, Language: parent.Language},
			}
		}
	}

	if kind == model.KindEnum {
		for _, v := range def.Values {
			e.Members = append(e.Members, &model.Element{
				ID:       v.ID,
				Name:     v.Name,
				FullName: model.JoinName(parent.Language, e.FullName, v.Name),
				Language: parent.Language,
				Kind:     model.KindEnumValue,
				Brief:    v.Brief.Text,
				Parent:   e,
			})
		}
	}
	return e
}

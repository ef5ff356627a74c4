package doxml

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mdekker/adocgen/internal/model"
)

const indexXML = `<?xml version="1.0" encoding="UTF-8"?>
<doxygenindex>
  <compound refid="classgeo_1_1Coordinate" kind="class"><name>geo::Coordinate</name></compound>
  <compound refid="indexpage" kind="page"><name>index</name></compound>
</doxygenindex>`

const coordinateXML = `<?xml version="1.0" encoding="UTF-8"?>
<doxygen>
  <compounddef id="classgeo_1_1Coordinate" kind="class" language="C++">
    <compoundname>geo::Coordinate</compoundname>
    <includes refid="coordinate_8hpp">coordinate.hpp</includes>
    <briefdescription><para>A geographical coordinate.</para></briefdescription>
    <detaileddescription>
      <para>Stores latitude and longitude.</para>
      <para>Altitude is optional.</para>
    </detaileddescription>
    <sectiondef kind="public-func">
      <memberdef kind="function" id="classgeo_1_1Coordinate_1a1" prot="public">
        <type>double</type>
        <definition>double geo::Coordinate::Latitude</definition>
        <argsstring>(int precision) const</argsstring>
        <name>Latitude</name>
        <param>
          <type><ref refid="int" kindref="member">int</ref></type>
          <declname>precision</declname>
        </param>
        <briefdescription><para>Latitude in degrees.</para></briefdescription>
        <detaileddescription/>
        <location file="include/coordinate.hpp" line="42"/>
      </memberdef>
      <memberdef kind="enum" id="classgeo_1_1Coordinate_1a2" prot="public">
        <type/>
        <name>Precision</name>
        <enumvalue id="classgeo_1_1Coordinate_1a2a1">
          <name>Coarse</name>
          <briefdescription><para>City level.</para></briefdescription>
        </enumvalue>
        <enumvalue id="classgeo_1_1Coordinate_1a2a2">
          <name>Fine</name>
          <briefdescription/>
        </enumvalue>
        <briefdescription/>
        <detaileddescription/>
        <location file="include/coordinate.hpp" line="20"/>
      </memberdef>
    </sectiondef>
    <location file="include/coordinate.hpp" line="12"/>
  </compounddef>
</doxygen>`

func writeXMLDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.xml":                  indexXML,
		"classgeo_1_1Coordinate.xml": coordinateXML,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadDirectory(t *testing.T) {
	t.Parallel()

	elements, err := LoadDirectory(context.Background(), writeXMLDir(t))
	if err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}
	if len(elements) != 1 {
		t.Fatalf("loaded %d top-level elements, want 1 (pages are skipped)", len(elements))
	}

	class := elements[0]
	if class.FullName != "geo::Coordinate" || class.Name != "Coordinate" {
		t.Errorf("class name = %q / %q", class.FullName, class.Name)
	}
	if class.Namespace != "geo" {
		t.Errorf("class namespace = %q, want geo", class.Namespace)
	}
	if class.Language != "cpp" || class.Kind != model.KindClass {
		t.Errorf("class language/kind = %q/%q", class.Language, class.Kind)
	}
	if class.Brief != "A geographical coordinate." {
		t.Errorf("class brief = %q", class.Brief)
	}
	if class.Description != "Stores latitude and longitude.\n\nAltitude is optional." {
		t.Errorf("class description = %q", class.Description)
	}
	if class.Include != "coordinate.hpp" {
		t.Errorf("class include = %q", class.Include)
	}
	if len(class.Members) != 2 {
		t.Fatalf("class has %d members, want 2", len(class.Members))
	}
}

func TestLoadDirectoryUnionCompound(t *testing.T) {
	t.Parallel()

	const unionIndexXML = `<?xml version="1.0" encoding="UTF-8"?>
<doxygenindex>
  <compound refid="uniongeo_1_1Packed" kind="union"><name>geo::Packed</name></compound>
</doxygenindex>`
	const unionXML = `<?xml version="1.0" encoding="UTF-8"?>
<doxygen>
  <compounddef id="uniongeo_1_1Packed" kind="union" language="C++">
    <compoundname>geo::Packed</compoundname>
    <briefdescription><para>Raw coordinate storage.</para></briefdescription>
    <detaileddescription/>
    <location file="include/packed.hpp" line="8"/>
  </compounddef>
</doxygen>`

	dir := t.TempDir()
	for name, content := range map[string]string{
		"index.xml":              unionIndexXML,
		"uniongeo_1_1Packed.xml": unionXML,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	elements, err := LoadDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}
	if len(elements) != 1 {
		t.Fatalf("loaded %d elements, want 1", len(elements))
	}
	if elements[0].Kind != model.KindUnion {
		t.Errorf("kind = %q, want %q", elements[0].Kind, model.KindUnion)
	}
	if elements[0].FullName != "geo::Packed" {
		t.Errorf("full name = %q, want geo::Packed", elements[0].FullName)
	}
}

func TestLoadDirectoryFunctionMember(t *testing.T) {
	t.Parallel()

	elements, err := LoadDirectory(context.Background(), writeXMLDir(t))
	if err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}

	fn := elements[0].Members[0]
	if fn.Name != "Latitude" || fn.Kind != model.KindFunction {
		t.Fatalf("member = %s", fn)
	}
	if fn.FullName != "geo::Coordinate::Latitude" {
		t.Errorf("member full name = %q", fn.FullName)
	}
	if fn.Parent != elements[0] {
		t.Error("member parent not wired to the compound")
	}
	if fn.Definition != "double geo::Coordinate::Latitude(int precision) const" {
		t.Errorf("member definition = %q", fn.Definition)
	}
	if len(fn.Params) != 1 || fn.Params[0].Name != "precision" || fn.Params[0].Type.Name != "int" {
		t.Errorf("member params = %+v", fn.Params)
	}
	if fn.Returns == nil || fn.Returns.Type.Name != "double" {
		t.Errorf("member returns = %+v", fn.Returns)
	}
	if fn.Source.File != "include/coordinate.hpp" || fn.Source.Line != 42 {
		t.Errorf("member source = %s", fn.Source)
	}
}

func TestLoadDirectoryEnumValues(t *testing.T) {
	t.Parallel()

	elements, err := LoadDirectory(context.Background(), writeXMLDir(t))
	if err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}

	enum := elements[0].Members[1]
	if enum.Kind != model.KindEnum || enum.Name != "Precision" {
		t.Fatalf("member = %s", enum)
	}
	if len(enum.Members) != 2 {
		t.Fatalf("enum has %d values, want 2", len(enum.Members))
	}
	coarse := enum.Members[0]
	if coarse.Kind != model.KindEnumValue || coarse.Name != "Coarse" || coarse.Brief != "City level." {
		t.Errorf("enum value = %+v", coarse)
	}
	if coarse.FullName != "geo::Coordinate::Precision::Coarse" {
		t.Errorf("enum value full name = %q", coarse.FullName)
	}
}

func TestLoadDirectoryMissingIndex(t *testing.T) {
	t.Parallel()

	if _, err := LoadDirectory(context.Background(), t.TempDir()); err == nil {
		t.Error("LoadDirectory() without index.xml should fail")
	}
}

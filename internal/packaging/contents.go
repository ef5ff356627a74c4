package packaging

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// Contents describes what an unpacked package provides, read from the
// contents.toml file at its root.
type Contents struct {
	Name string

	// ReferenceDir holds the Doxygen XML output, empty if the package ships
	// no API reference.
	ReferenceDir string
	// DocsDir holds the AsciiDoc sources, empty if the package ships none.
	DocsDir string
	// RootDoc is the entry document other packages may cross-reference,
	// relative to DocsDir.
	RootDoc string
}

// ReadContents parses the contents.toml of an unpacked package directory.
func ReadContents(dir string) (*Contents, error) {
	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, "contents.toml"))
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read package contents in %s: %w", dir, err)
	}

	c := &Contents{
		Name:    v.GetString("package.name"),
		RootDoc: v.GetString("asciidoc.root_doc"),
	}
	if c.Name == "" {
		return nil, fmt.Errorf("package in %s declares no name", dir)
	}

	if refType := v.GetString("reference.type"); refType != "" {
		if refType != "doxygen" {
			return nil, fmt.Errorf("package %s: unsupported reference type %q", c.Name, refType)
		}
		c.ReferenceDir = filepath.Join(dir, v.GetString("reference.dir"))
	}
	if src := v.GetString("asciidoc.src_dir"); src != "" {
		c.DocsDir = filepath.Join(dir, src)
	}
	return c, nil
}

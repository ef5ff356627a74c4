// Package packaging collects documentation packages: archives or local
// directories holding Doxygen XML and AsciiDoc sources. Downloads are cached
// in a content-addressed store and recorded in a ledger so repeat runs skip
// the network.
package packaging

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Source describes where packages of one family come from.
type Source struct {
	Type string `mapstructure:"type"`
	// URL is the download template for http sources. {name} and {version}
	// are substituted per package.
	URL string `mapstructure:"url"`
	// PackageDir is the directory template for local sources.
	PackageDir string `mapstructure:"package_dir"`
}

// PackageSpec is one requested package.
type PackageSpec struct {
	// Key is the table key of the package in the spec file.
	Key     string `mapstructure:"-"`
	Source  string `mapstructure:"source"`
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`

	// Type and the location fields may be given inline instead of through a
	// named source.
	Type       string `mapstructure:"type"`
	URL        string `mapstructure:"url"`
	PackageDir string `mapstructure:"package_dir"`
}

// Spec is the parsed package specification file.
type Spec struct {
	Sources  map[string]Source      `mapstructure:"sources"`
	Packages map[string]PackageSpec `mapstructure:"packages"`
}

// LoadSpec reads a TOML package specification file.
func LoadSpec(path string) (*Spec, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read package spec %s: %w", path, err)
	}

	var spec Spec
	if err := v.Unmarshal(&spec); err != nil {
		return nil, fmt.Errorf("parse package spec %s: %w", path, err)
	}

	for key, pkg := range spec.Packages {
		pkg.Key = key
		if pkg.Name == "" {
			pkg.Name = key
		}
		if pkg.Source != "" {
			src, ok := spec.Sources[pkg.Source]
			if !ok {
				return nil, fmt.Errorf("package %q references unknown source %q", key, pkg.Source)
			}
			if pkg.Type == "" {
				pkg.Type = src.Type
			}
			if pkg.URL == "" {
				pkg.URL = src.URL
			}
			if pkg.PackageDir == "" {
				pkg.PackageDir = src.PackageDir
			}
		}
		if pkg.Type == "" {
			return nil, fmt.Errorf("package %q has no type", key)
		}
		spec.Packages[key] = pkg
	}
	return &spec, nil
}

// ApplyVersions overrides package versions from a version file: CSV lines of
// "name,version", one package per line. Lines starting with # are skipped.
func (s *Spec) ApplyVersions(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read version file %s: %w", path, err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, version, ok := strings.Cut(line, ",")
		if !ok {
			return fmt.Errorf("version file %s: malformed line %q", path, line)
		}
		name = strings.TrimSpace(name)
		version = strings.TrimSpace(version)

		for key, pkg := range s.Packages {
			if pkg.Name == name {
				pkg.Version = version
				s.Packages[key] = pkg
			}
		}
	}
	return nil
}

// expand substitutes the {name} and {version} placeholders of a template.
func expand(template string, pkg PackageSpec) string {
	out := strings.ReplaceAll(template, "{name}", pkg.Name)
	return strings.ReplaceAll(out, "{version}", pkg.Version)
}

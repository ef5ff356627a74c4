package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mdekker/adocgen/internal/config"
	"github.com/mdekker/adocgen/internal/packaging"
	"github.com/mdekker/adocgen/internal/reference"
	"github.com/mdekker/adocgen/internal/transcode"
)

var (
	flagBuildDir          string
	flagMultipage         bool
	flagWarningsAreErrors bool
	flagPackageSpec       string
	flagVersionFile       string
)

var rootCmd = &cobra.Command{
	Use:   "adocgen <root-document>",
	Short: "AsciiDoc API documentation generator with cross-reference resolution",
	Long: `adocgen processes AsciiDoc documents containing adoc:: directives:
API elements parsed from Doxygen XML packages are inserted and linked, and
cross-document references are checked for consistency before output is
written.`,
	Args: cobra.ExactArgs(1),
	Run:  runGenerate,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("command failed: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagPackageSpec, "spec", "", "package specification file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagVersionFile, "versions", "", "version file pinning package versions")

	rootCmd.Flags().StringVar(&flagBuildDir, "build-dir", "", "output directory (overrides config)")
	rootCmd.Flags().BoolVar(&flagMultipage, "multipage", false, "keep included documents as separate pages")
	rootCmd.Flags().BoolVar(&flagWarningsAreErrors, "warnings-are-errors", false, "abort on the first warning")
}

// loadConfig merges the config file with command line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagPackageSpec != "" {
		cfg.PackageSpec = flagPackageSpec
	}
	if flagVersionFile != "" {
		cfg.VersionFile = flagVersionFile
	}
	if flagBuildDir != "" {
		cfg.BuildDir = flagBuildDir
	}
	if cmd.Flags().Changed("multipage") {
		cfg.Multipage = flagMultipage
	}
	if cmd.Flags().Changed("warnings-are-errors") {
		cfg.WarningsAreErrors = flagWarningsAreErrors
	}
	return cfg, nil
}

// collectPackages resolves the package spec into unpacked packages. An empty
// spec path means no packages beyond the input directory.
func collectPackages(ctx context.Context, cfg *config.Config) ([]*packaging.Package, error) {
	if cfg.PackageSpec == "" {
		return nil, nil
	}

	spec, err := packaging.LoadSpec(cfg.PackageSpec)
	if err != nil {
		return nil, err
	}
	if cfg.VersionFile != "" {
		if err := spec.ApplyVersions(cfg.VersionFile); err != nil {
			return nil, err
		}
	}

	ledger, err := packaging.OpenLedger(config.DBPath())
	if err != nil {
		return nil, err
	}
	defer ledger.Close()

	collector := packaging.NewCollector(
		packaging.NewCAS(config.CASDir()), ledger, config.WorkspaceDir())
	return collector.Collect(ctx, spec)
}

// buildResolver loads all API reference data of a workspace into an element
// index and wraps it in a resolver with the default transcoders.
func buildResolver(ctx context.Context, workspace *packaging.Workspace) (*reference.Resolver, error) {
	groups, err := workspace.LoadElements(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading api reference: %w", err)
	}
	ref := reference.Build(groups...)
	return reference.NewResolver(ref, transcode.NewRegistry()), nil
}

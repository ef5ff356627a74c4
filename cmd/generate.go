package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mdekker/adocgen/internal/generator"
	"github.com/mdekker/adocgen/internal/packaging"
)

func runGenerate(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	rootDoc := args[0]
	inputDir := filepath.Dir(rootDoc)

	packages, err := collectPackages(cmd.Context(), cfg)
	if err != nil {
		log.Fatalf("collecting packages: %v", err)
	}

	workspace := packaging.NewWorkspace(inputDir, packages)
	resolver, err := buildResolver(cmd.Context(), workspace)
	if err != nil {
		log.Fatalf("building element index: %v", err)
	}
	log.Printf("indexed %d api elements from %d packages", resolver.Reference().Len(), len(packages))

	engine := generator.NewEngine(resolver, workspace, generator.Settings{
		Multipage:         cfg.Multipage,
		WarningsAreErrors: cfg.WarningsAreErrors,
		RootPackage:       packaging.InputPackage,
	})

	result, err := engine.Run(filepath.Base(rootDoc))
	if err != nil {
		log.Fatalf("generation failed: %v", err)
	}

	for _, v := range result.Violations {
		log.Printf("warning: %s", v)
	}

	if err := writeOutput(cfg.BuildDir, result); err != nil {
		log.Fatalf("writing output: %v", err)
	}

	fmt.Printf("wrote %d files to %s (%d warnings)\n",
		len(result.Files), cfg.BuildDir, len(result.Warnings))
}

func writeOutput(buildDir string, result *generator.Result) error {
	for rel, content := range result.Files {
		path := filepath.Join(buildDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}

package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/mdekker/adocgen/internal/config"
	"github.com/mdekker/adocgen/internal/packaging"
)

var packagesPrune time.Duration

var packagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "Collect the packages of the spec and show the download cache",
	Run:   runPackages,
}

func init() {
	packagesCmd.Flags().DurationVar(&packagesPrune, "prune", 0,
		"also drop cache entries not used for this long (e.g. 720h)")
	rootCmd.AddCommand(packagesCmd)
}

func runPackages(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	packages, err := collectPackages(cmd.Context(), cfg)
	if err != nil {
		log.Fatalf("collecting packages: %v", err)
	}

	if len(packages) == 0 {
		fmt.Println("no packages configured")
	}
	for _, pkg := range packages {
		what := ""
		if pkg.Contents.ReferenceDir != "" {
			what = "api reference"
		}
		if pkg.Contents.DocsDir != "" {
			if what != "" {
				what += ", "
			}
			what += "documents"
		}
		fmt.Printf("%s %s (%s)\n  %s\n", pkg.Contents.Name, pkg.Spec.Version, what, pkg.Dir)
	}

	ledger, err := packaging.OpenLedger(config.DBPath())
	if err != nil {
		log.Fatalf("opening ledger: %v", err)
	}
	defer ledger.Close()

	if packagesPrune > 0 {
		n, err := ledger.Prune(time.Now().Add(-packagesPrune))
		if err != nil {
			log.Fatalf("pruning ledger: %v", err)
		}
		fmt.Printf("pruned %d cache entries\n", n)
	}

	entries, err := ledger.Entries()
	if err != nil {
		log.Fatalf("listing ledger: %v", err)
	}
	if len(entries) > 0 {
		fmt.Println("\ndownload cache:")
		for _, e := range entries {
			fmt.Printf("  %s %s  %s  fetched %s\n",
				e.Name, e.Version, e.ContentHash[:12], e.FetchedAt.Format(time.DateOnly))
		}
	}
}

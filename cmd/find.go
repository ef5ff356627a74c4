package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mdekker/adocgen/internal/adoc"
	"github.com/mdekker/adocgen/internal/model"
	"github.com/mdekker/adocgen/internal/packaging"
	"github.com/mdekker/adocgen/internal/reference"
)

var (
	findNamespace string
	findKind      string
	findLang      string
	findRender    bool
)

var findCmd = &cobra.Command{
	Use:   "find <name>",
	Short: "Look up an API element in the collected packages",
	Example: `  adocgen find geo::Coordinate --spec packages.toml
  adocgen find "process(int, bool)" --kind function
  adocgen find Coordinate --namespace geo --render`,
	Args: cobra.ExactArgs(1),
	Run:  runFind,
}

func init() {
	findCmd.Flags().StringVar(&findNamespace, "namespace", "", "namespace to start the search from")
	findCmd.Flags().StringVar(&findKind, "kind", "", "restrict to an element kind")
	findCmd.Flags().StringVar(&findLang, "lang", "", "restrict to a language")
	findCmd.Flags().BoolVar(&findRender, "render", false, "print the rendered AsciiDoc instead of a summary")
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	packages, err := collectPackages(cmd.Context(), cfg)
	if err != nil {
		log.Fatalf("collecting packages: %v", err)
	}

	workspace := packaging.NewWorkspace(".", packages)
	resolver, err := buildResolver(cmd.Context(), workspace)
	if err != nil {
		log.Fatalf("building element index: %v", err)
	}

	elem, err := resolver.Resolve(args[0], reference.Options{
		Kind:           model.Kind(findKind),
		Lang:           findLang,
		Namespace:      findNamespace,
		AllowOverloads: true,
	})
	if err != nil {
		log.Fatalf("%v", err)
	}

	if findRender {
		fmt.Print(adoc.RenderElement(elem, nil, 0, nil))
		return
	}

	fmt.Printf("%s\n", elem)
	fmt.Printf("  id:       %s\n", elem.ID)
	if elem.Namespace != "" {
		fmt.Printf("  scope:    %s\n", elem.Namespace)
	}
	if elem.Source.File != "" {
		fmt.Printf("  declared: %s\n", elem.Source)
	}
	if elem.Brief != "" {
		fmt.Printf("  brief:    %s\n", elem.Brief)
	}
	if len(elem.Members) > 0 {
		fmt.Printf("  members:  %d\n", len(elem.Members))
	}
}

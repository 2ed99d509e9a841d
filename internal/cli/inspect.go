package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odex-dev/odex/pkg/edm"
	"github.com/odex-dev/odex/pkg/pipeline"
)

// inspectCommand creates the inspect command for summarizing a service.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		metadataFile string
		noCache      bool
		refresh      bool
		showProps    bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [service]",
		Short: "Summarize an OData service's entity model",
		Long: `Summarize an OData service's entity model.

The inspect command fetches the service's $metadata document and prints the
protocol version, entity types, entity sets, and relationships. Pass a
profile name from profiles.toml or a service URL directly.

Metadata is cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{
				MetadataFile: metadataFile,
				Refresh:      refresh,
			}
			if len(args) > 0 {
				url, err := resolveService(args[0])
				if err != nil {
					return err
				}
				opts.ServiceURL = url
			}
			return c.runInspect(cmd.Context(), opts, noCache, showProps)
		},
	}

	cmd.Flags().StringVarP(&metadataFile, "metadata", "m", "", "read metadata from a local EDMX file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache and refetch")
	cmd.Flags().BoolVarP(&showProps, "properties", "p", false, "list each entity type's properties")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, opts pipeline.Options, noCache, showProps bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Fetching metadata...")
	spinner.Start()

	doc, cached, err := runner.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return fmt.Errorf("inspect: %w", err)
	}
	spinner.Stop()

	source := opts.ServiceURL
	if source == "" {
		source = opts.MetadataFile
	}

	printNewline()
	fmt.Println(StyleTitle.Render(source))
	printKeyValue("version", "OData "+string(doc.Version))
	printStats(len(doc.EntityTypes()), len(doc.Relationships()), cached)
	printNewline()

	for _, et := range doc.EntityTypes() {
		line := StyleHighlight.Render(et.Name)
		if set, ok := doc.EntitySetFor(et.Name); ok {
			line += StyleDim.Render("  (" + set.Name + ")")
		}
		fmt.Println(line)

		if showProps {
			for _, p := range et.Properties {
				marker := "  "
				if isKeyProperty(et, p.Name) {
					marker = StyleNumber.Render("* ")
				}
				fmt.Printf("  %s%s %s\n", marker, StyleValue.Render(p.Name), StyleDim.Render(edm.LocalName(p.Type)))
			}
		}

		for _, np := range et.NavigationProperties {
			arrow := iconArrow
			if np.IsCollection() {
				arrow += " *"
			}
			fmt.Println("    " + StyleDim.Render(arrow+" "+np.Name))
		}
	}

	if len(doc.Relationships()) > 0 {
		printNewline()
		fmt.Println(StyleTitle.Render("Relationships"))
		for _, rel := range doc.Relationships() {
			mult := strings.TrimSpace(rel.FromMultiplicity + ".." + rel.ToMultiplicity)
			fmt.Printf("  %s %s %s %s\n",
				StyleValue.Render(rel.FromEntity),
				StyleDim.Render(iconArrow),
				StyleValue.Render(rel.ToEntity),
				StyleDim.Render("("+rel.Name+" "+mult+")"))
		}
	}

	printNewline()
	printNextStep("Draw the diagram", "odex diagram "+source+" -f svg -o diagram.svg")
	return nil
}

func isKeyProperty(et edm.EntityType, name string) bool {
	for _, k := range et.Keys {
		if k == name {
			return true
		}
	}
	return false
}

package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/odex-dev/odex/pkg/odata"
	"github.com/odex-dev/odex/pkg/pipeline"
)

// browseCommand creates the browse command for interactive exploration.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		metadataFile string
		noCache      bool
		refresh      bool
		top          int
	)

	cmd := &cobra.Command{
		Use:   "browse [service]",
		Short: "Browse a service's entity sets interactively",
		Long: `Browse a service's entity sets interactively.

Fetches the service's $metadata and opens a picker listing every entity set.
Selecting one queries its first rows and prints them as a table.`,
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
			return c.runBrowse(cmd.Context(), opts, noCache, top)
		},
	}

	cmd.Flags().StringVarP(&metadataFile, "metadata", "m", "", "read metadata from a local EDMX file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache and refetch")
	cmd.Flags().IntVar(&top, "top", 10, "rows to fetch from the selected entity set")

	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, opts pipeline.Options, noCache bool, top int) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Fetching metadata...")
	spinner.Start()
	doc, _, err := runner.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return fmt.Errorf("browse: %w", err)
	}
	spinner.Stop()

	entries := buildBrowseEntries(doc)
	if len(entries) == 0 {
		printWarning("Service exposes no entity sets")
		return nil
	}

	model := NewEntitySetListModel(entries)
	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("browse: %w", err)
	}

	result, ok := final.(EntitySetListModel)
	if !ok || result.Selected == nil {
		return nil
	}
	selected := *result.Selected

	if opts.ServiceURL == "" {
		// Metadata came from a local file; there is no live endpoint to
		// pull rows from.
		printInfo("Selected %s (%s)", selected.SetName, selected.TypeName)
		printNextStep("Generate sample rows", "odex mock -m "+opts.MetadataFile+" -e "+selected.SetName)
		return nil
	}

	svc, err := odata.ParseServiceURL(opts.ServiceURL)
	if err != nil {
		return err
	}

	spinner = newSpinnerWithContext(ctx, "Querying "+selected.SetName+"...")
	spinner.Start()
	rs, err := runner.Client.Execute(ctx, svc.WithVersion(doc.Version), odata.Query{
		EntitySet: selected.SetName,
		Top:       top,
		Count:     true,
	}, opts.Refresh)
	if err != nil {
		spinner.StopWithError("Query failed")
		return fmt.Errorf("browse: %w", err)
	}
	spinner.Stop()

	printNewline()
	fmt.Println(StyleTitle.Render(selected.SetName))
	printResultTable(rs)
	if rs.Count >= 0 {
		printDetail("%d of %d rows", len(rs.Rows), rs.Count)
	} else {
		printDetail("%d rows", len(rs.Rows))
	}
	printNewline()
	printNextStep("Refine the query", "odex query "+opts.ServiceURL+" "+selected.SetName+" --filter '...'")
	return nil
}

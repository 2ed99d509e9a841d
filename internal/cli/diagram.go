package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	oerrors "github.com/odex-dev/odex/pkg/errors"
	"github.com/odex-dev/odex/pkg/pipeline"
)

// diagramCommand creates the diagram command for the full pipeline.
func (c *CLI) diagramCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "diagram [service]",
		Short: "Draw an entity relationship diagram for a service",
		Long: `Draw an entity relationship diagram for a service.

The diagram command fetches $metadata, places one box per entity type on a
grid, computes edge connection points (which side of each box an edge
attaches to, and where along that side), and renders the result.

Formats:
  json  the laid-out diagram with connection points (default)
  dot   Graphviz DOT with compass ports
  svg   rendered diagram
  png   rendered diagram

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				url, err := resolveService(args[0])
				if err != nil {
					return err
				}
				opts.ServiceURL = url
			}
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runDiagram(cmd.Context(), opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): json (default), dot, svg, png (comma-separated)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache and refetch")

	// Fetch flags
	cmd.Flags().StringVarP(&opts.MetadataFile, "metadata", "m", "", "read metadata from a local EDMX file")

	// Layout flags
	cmd.Flags().IntVar(&opts.Columns, "columns", 0, "grid columns (default 4)")
	cmd.Flags().Float64Var(&opts.NodeWidth, "node-width", 0, "node box width (default 250)")
	cmd.Flags().Float64Var(&opts.NodeHeight, "node-height", 0, "node box height (default 200)")
	cmd.Flags().StringVar(&opts.TieBreak, "tie-break", "", "side selection tie-break: horizontal (default), vertical")

	// Render flags
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include metadata in node labels")
	cmd.Flags().StringVar(&opts.RankDir, "rankdir", "", "Graphviz layout direction (TB, LR)")

	return cmd
}

func (c *CLI) runDiagram(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	if output != "" {
		if err := oerrors.ValidateOutputPath(output); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Building diagram...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Diagram failed")
		return fmt.Errorf("diagram: %w", err)
	}
	spinner.Stop()

	printStats(result.Stats.EntityCount, result.Stats.RelationshipCount, result.CacheInfo.LayoutHit)
	if result.Stats.SkippedEdges > 0 {
		printWarning("%d edge(s) skipped: endpoints missing from the model", result.Stats.SkippedEdges)
	}

	return writeArtifacts(result.Artifacts, opts.Formats, output)
}

// writeArtifacts writes rendered outputs to files, or the single artifact to
// stdout when no output path is given.
func writeArtifacts(artifacts map[string][]byte, formats []string, output string) error {
	if output == "" {
		if len(formats) == 1 {
			_, err := os.Stdout.Write(artifacts[formats[0]])
			return err
		}
		return fmt.Errorf("multiple formats need --output")
	}

	for _, format := range formats {
		path := output
		if len(formats) > 1 {
			ext := filepath.Ext(output)
			path = strings.TrimSuffix(output, ext) + "." + format
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

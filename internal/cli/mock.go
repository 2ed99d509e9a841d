package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	oerrors "github.com/odex-dev/odex/pkg/errors"
	"github.com/odex-dev/odex/pkg/mock"
	"github.com/odex-dev/odex/pkg/pipeline"
)

// mockCommand creates the mock command for generating sample data.
func (c *CLI) mockCommand() *cobra.Command {
	var (
		metadataFile string
		entitySet    string
		count        int
		seed         int64
		noCache      bool
	)

	cmd := &cobra.Command{
		Use:   "mock [service]",
		Short: "Generate deterministic sample data from a service's metadata",
		Long: `Generate deterministic sample data from a service's metadata.

The mock command reads the entity model and produces sample rows per entity
type: unique key values, type-appropriate properties, stable GUIDs. The same
seed always yields the same rows, making the output usable as test fixtures.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{MetadataFile: metadataFile}
			if len(args) > 0 {
				url, err := resolveService(args[0])
				if err != nil {
					return err
				}
				opts.ServiceURL = url
			}
			if entitySet != "" {
				if err := oerrors.ValidateEntitySetName(entitySet); err != nil {
					return err
				}
			}
			return c.runMock(cmd.Context(), opts, entitySet, count, seed, noCache)
		},
	}

	cmd.Flags().StringVarP(&metadataFile, "metadata", "m", "", "read metadata from a local EDMX file")
	cmd.Flags().StringVarP(&entitySet, "entity-set", "e", "", "generate only for this entity set")
	cmd.Flags().IntVarP(&count, "count", "n", 10, "rows per entity type")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runMock(ctx context.Context, opts pipeline.Options, entitySet string, count int, seed int64, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	doc, err := runner.Fetch(ctx, opts)
	if err != nil {
		return fmt.Errorf("mock: %w", err)
	}

	gen := mock.New(seed)
	out := map[string]any{}

	for _, et := range doc.EntityTypes() {
		set, ok := doc.EntitySetFor(et.Name)
		if !ok {
			continue
		}
		if entitySet != "" && set.Name != entitySet {
			continue
		}
		out[set.Name] = gen.Rows(et, count)
	}

	if len(out) == 0 {
		if entitySet != "" {
			return oerrors.New(oerrors.ErrCodeEntitySetNotFound, "no entity set %q in the model", entitySet)
		}
		return oerrors.New(oerrors.ErrCodeInvalidMetadata, "model exposes no entity sets")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

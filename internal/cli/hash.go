package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/beltwright/pkg/errors"
	"github.com/matzehuels/beltwright/pkg/graph"
	"github.com/matzehuels/beltwright/pkg/pipeline"
	"github.com/matzehuels/beltwright/pkg/registry"
)

// hashCommand creates the hash command.
func (c *CLI) hashCommand() *cobra.Command {
	var packages bool

	cmd := &cobra.Command{
		Use:               "hash [file]",
		Short:             "Print the content address of a circuit",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: circuitFileCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := c.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, registry.Hash(loaded.Graph))
			if packages {
				printPackages(loaded.Registry)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&packages, "packages", "p", false, "also list the packages in the document")

	return cmd
}

// printPackages lists packages with their stale marker.
func printPackages(reg *registry.Registry) {
	for _, h := range reg.Hashes() {
		p, _ := reg.Get(h)
		line := fmt.Sprintf("%s  %s", h, p.Name)
		if registry.IsStale(h) {
			printWarning("%s (stale)", line)
			continue
		}
		printDetail("%s", line)
	}
}

// migrateCommand creates the migrate command.
func (c *CLI) migrateCommand() *cobra.Command {
	var output string
	var lib bool
	var prune bool

	cmd := &cobra.Command{
		Use:   "migrate [file]",
		Short: "Re-address packages hashed with an older scheme",
		Long: `Re-address packages hashed with an older scheme.

With a file, the document's packages and references are rewritten and the
result is saved to --output (or over the input). With --library, the
package library is migrated in place.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: circuitFileCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if lib {
				return c.runLibraryMigrate(cmd.Context())
			}
			if len(args) != 1 {
				return errors.New(errors.ErrCodeInvalidInput, "migrate needs a file or --library")
			}
			if output == "" {
				output = args[0]
			}
			if err := errors.ValidatePath(output); err != nil {
				return err
			}
			return c.runMigrate(cmd.Context(), args[0], output, prune)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
	cmd.Flags().BoolVar(&lib, "library", false, "migrate the package library")
	cmd.Flags().BoolVar(&prune, "prune", false, "drop packages the circuit does not use")

	return cmd
}

func (c *CLI) runMigrate(ctx context.Context, input, output string, prune bool) error {
	loaded, err := c.load(ctx, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, c.mustConfig(), true)
	if err != nil {
		return err
	}
	defer runner.Close()

	spin := startSpinner(ctx, c.status, "Rehashing packages")
	res, err := runner.Migrate(loaded.Registry, loaded.Graph)
	if err == nil {
		spin.Stage("Saving " + output)
		err = pipeline.Save(output, res.Graph, res.Registry, graph.SerializeOptions{PruneUnused: prune})
	}
	spin.Stop()
	if err != nil {
		return err
	}

	printSuccess("Migrated %d packages", len(res.Rewrites))
	printRewrites(res.Rewrites)
	printFile(output)
	return nil
}

func (c *CLI) runLibraryMigrate(ctx context.Context) error {
	cfg := c.mustConfig()
	lib, err := openLibrary(cfg)
	if err != nil {
		return err
	}
	defer lib.Close()

	reg, err := lib.Registry(ctx)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer runner.Close()

	spin := startSpinner(ctx, c.status, "Rehashing library packages")
	res, err := runner.Migrate(reg, nil)
	if err == nil && len(res.Rewrites) > 0 {
		spin.Stage("Rewriting library")
		err = lib.Replace(ctx, res.Registry)
	}
	spin.Stop()
	if err != nil {
		return err
	}
	if len(res.Rewrites) == 0 {
		printInfo("Library is up to date")
		return nil
	}
	printSuccess("Migrated %d library packages", len(res.Rewrites))
	printRewrites(res.Rewrites)
	return nil
}

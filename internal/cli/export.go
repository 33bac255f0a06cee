package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/beltwright/pkg/config"
	"github.com/matzehuels/beltwright/pkg/errors"
	"github.com/matzehuels/beltwright/pkg/pipeline"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	output      string // output file path (stdout if empty)
	mode        string // generation mode override
	shortDesc   string // blueprint short description
	desc        string // blueprint long description
	icons       []int  // up to five header icon ids
	graphLayout bool   // use the layout regions stored in the graph header
	useLibrary  bool   // resolve packages missing from the document via the library
	noCache     bool   // disable the result cache
	refresh     bool   // recompute even when cached
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Assemble a circuit document into a blueprint string",
		Long: `Assemble a circuit document into a blueprint string.

Package references are expanded from the packages stored in the document,
and from the package library when --library is set.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: circuitFileCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(opts.icons) > 5 {
				return fmt.Errorf("at most 5 icons, got %d", len(opts.icons))
			}
			if err := errors.ValidateDescription(opts.desc); err != nil {
				return err
			}
			if opts.output != "" {
				if err := errors.ValidatePath(opts.output); err != nil {
					return err
				}
			}
			return c.runExport(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "generation mode: sorter, splice, airgap (default from config)")
	cmd.Flags().StringVar(&opts.shortDesc, "short-desc", "", "blueprint short description")
	cmd.Flags().StringVar(&opts.desc, "desc", "", "blueprint description")
	cmd.Flags().IntSliceVar(&opts.icons, "icon", nil, "header icon id (repeatable, up to 5)")
	cmd.Flags().BoolVar(&opts.graphLayout, "graph-layout", false, "use layout regions from the graph header")
	cmd.Flags().BoolVar(&opts.useLibrary, "library", false, "resolve packages from the package library")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if cached")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, input string, opts *exportOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.mode != "" {
		cfg = cfg.WithGeneration(config.GenerationMode(opts.mode))
	}

	spin := startSpinner(ctx, c.status, "Loading circuit")
	defer spin.Stop()

	loaded, err := c.load(ctx, input)
	if err != nil {
		return err
	}
	if opts.useLibrary {
		spin.Stage("Merging library packages")
		if err := c.mergeLibrary(ctx, cfg, loaded); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		Config:         cfg,
		ShortDesc:      opts.shortDesc,
		Desc:           opts.desc,
		UseGraphLayout: opts.graphLayout,
		Refresh:        opts.refresh,
		Logger:         c.Logger,
	}
	copy(popts.Icons[:], opts.icons)

	spin.Stage("Assembling blueprint")
	res, err := runner.Export(ctx, loaded.Graph, loaded.Registry, popts)
	elapsed := spin.Stop()
	if err != nil {
		return err
	}

	if opts.output == "" {
		fmt.Fprintln(stdout, res.Text)
		return nil
	}
	if err := os.WriteFile(opts.output, []byte(res.Text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	c.Logger.Debug("exported blueprint", "buildings", len(res.Blueprint.Buildings), "elapsed", elapsed)

	printSuccess("Exported blueprint")
	printFile(opts.output)
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, elapsed, res.CacheHit)
	printAssembly(res.Assembly)
	if n := len(loaded.Diagnostics); n > 0 {
		printWarning("Skipped %d malformed elements, see the log for details", n)
	}
	printNewline()
	printNextStep("Inspect it", fmt.Sprintf("%s import %s", appName, opts.output))
	return nil
}

// load parses a circuit document. Skipped elements are logged by the parser.
func (c *CLI) load(ctx context.Context, input string) (*pipeline.Loaded, error) {
	return pipeline.LoadFile(ctx, input, c.Logger)
}

// mergeLibrary adds library packages the document does not carry.
func (c *CLI) mergeLibrary(ctx context.Context, cfg config.Config, loaded *pipeline.Loaded) error {
	lib, err := openLibrary(cfg)
	if err != nil {
		return err
	}
	defer lib.Close()

	reg, err := lib.Registry(ctx)
	if err != nil {
		return err
	}
	n := pipeline.MergeRegistry(loaded.Registry, reg)
	c.Logger.Debug("merged library packages", "added", n)
	return nil
}

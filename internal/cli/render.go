package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/beltwright/pkg/errors"
	"github.com/matzehuels/beltwright/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file path
	format   string // "dot" or "svg"
	detailed bool   // show node ids and slot details
	noCache  bool   // disable the result cache
	refresh  bool   // recompute even when cached
}

// renderCommand creates the render command for drawing circuits.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: pipeline.FormatSVG}

	cmd := &cobra.Command{
		Use:               "render [file]",
		Short:             "Draw a circuit document as a node-link diagram",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: circuitFileCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(opts.format); err != nil {
				return err
			}
			if opts.output == "" {
				opts.output = outputPath(args[0], opts.format)
			}
			if err := errors.ValidatePath(opts.output); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with format extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node ids and slot details")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if cached")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	loaded, err := c.load(ctx, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, c.mustConfig(), opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spin := startSpinner(ctx, c.status, "Rendering "+strings.ToUpper(opts.format))
	data, cached, err := runner.Render(ctx, loaded.Graph, pipeline.RenderOptions{
		Format:   opts.format,
		Detailed: opts.detailed,
		Refresh:  opts.refresh,
	})
	elapsed := spin.Stop()
	if err != nil {
		return err
	}

	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Rendered %s", strings.ToUpper(opts.format))
	printFile(opts.output)
	printStats(loaded.Graph.NodeCount(), loaded.Graph.EdgeCount(), elapsed, cached)
	return nil
}

// outputPath replaces the extension of input with the format's.
func outputPath(input, format string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
}

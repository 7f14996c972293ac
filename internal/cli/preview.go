package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/graph"
	"github.com/matzehuels/atlas/pkg/pipeline"
	"github.com/matzehuels/atlas/pkg/render/nodelink"
)

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		flags      layoutFlags
		layoutFile string
		output     string
		preview    pipeline.PreviewOptions
	)

	cmd := &cobra.Command{
		Use:   "preview [graph.json]",
		Short: "Render a layout as SVG, PNG or DOT",
		Long: `Render a layout with Graphviz, pinning every node at its computed position.

The layout is computed with --algorithm (default radial) unless --layout names
a layout document written by 'atlas layout'. Nodes without a position are
left out. Bubble layouts have no positions and cannot be previewed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPreview(cmd.Context(), args[0], flags, layoutFile, output, preview)
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVarP(&layoutFile, "layout", "l", "", "render this layout document instead of computing one")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <input>.<algorithm>.<format>)")
	cmd.Flags().StringVarP(&preview.Format, "format", "f", nodelink.FormatSVG, "output format: "+strings.Join(nodelink.Formats, ", "))
	cmd.Flags().BoolVar(&preview.Labels, "labels", false, "draw node labels")

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, input string, flags layoutFlags, layoutFile, output string, opts pipeline.PreviewOptions) error {
	if !nodelink.ValidFormat(opts.Format) {
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want %s)", opts.Format, strings.Join(nodelink.Formats, ", "))
	}

	runner, cfg, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var (
		algorithm string
		data      []byte
		cached    bool
	)
	if layoutFile != "" {
		g, err := readGraph(c.Logger, input)
		if err != nil {
			return err
		}
		l, err := graph.ReadLayoutFile(layoutFile)
		if err != nil {
			return fmt.Errorf("load layout %s: %w", layoutFile, err)
		}
		algorithm = l.Algorithm
		data, cached, err = runner.PreviewLayout(ctx, g, l, opts)
		if err != nil {
			return err
		}
	} else {
		res, err := c.computeLayout(ctx, runner, cfg, input, flags)
		if err != nil {
			return err
		}
		algorithm = res.Layout.Algorithm
		data, cached, err = runner.Preview(ctx, res, opts)
		if err != nil {
			return err
		}
	}

	if output == "-" {
		_, err := out.Write(data)
		return err
	}
	if output == "" {
		output = defaultOutput(input, algorithm+"."+opts.Format)
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Preview rendered")
	printFile(output)
	if cached {
		printDetail("served from cache")
	}
	return nil
}

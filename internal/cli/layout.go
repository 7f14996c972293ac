package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/atlas/pkg/config"
	"github.com/matzehuels/atlas/pkg/graph"
	"github.com/matzehuels/atlas/pkg/pipeline"
)

// layoutFlags are the flags shared by every command that computes a layout.
type layoutFlags struct {
	algorithm string
	root      string
	refresh   bool
	noCache   bool
}

func (f *layoutFlags) register(cmd *cobra.Command, withAlgorithm bool) {
	if withAlgorithm {
		cmd.Flags().StringVarP(&f.algorithm, "algorithm", "a", "", "layout algorithm: "+strings.Join(graph.Algorithms, ", "))
		_ = cmd.RegisterFlagCompletionFunc("algorithm", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return graph.Algorithms, cobra.ShellCompDirectiveNoFileComp
		})
	}
	cmd.Flags().StringVar(&f.root, "root", "", "root node id (tree, radial, codebase, bubble)")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when a cached layout exists")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
		half   string
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute a layout and write it as JSON",
		Long: `Compute a layout for a graph document and write the layout document.

Without --algorithm, an interactive picker is shown when running in a
terminal; otherwise the radial layout is used.

Results are cached by graph content and configuration, so repeated runs on an
unchanged graph are served from the cache. Use --refresh to recompute.

--half also writes the positions as little-endian half floats, x then y for
each node in document order, for uploading large layouts to a renderer.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.algorithm == "" {
				alg, err := chooseAlgorithm()
				if err != nil {
					return err
				}
				if alg == "" {
					return nil
				}
				flags.algorithm = alg
			}
			return c.runLayout(cmd.Context(), args[0], flags, output, half)
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <input>.<algorithm>.layout.json)")
	cmd.Flags().StringVar(&half, "half", "", "also write half-float positions to this file")

	return cmd
}

// chooseAlgorithm shows the picker on an interactive terminal and returns
// the default algorithm otherwise.
func chooseAlgorithm() (string, error) {
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return pipeline.DefaultAlgorithm, nil
	}
	return pickAlgorithm(pipeline.DefaultAlgorithm)
}

func (c *CLI) runLayout(ctx context.Context, input string, flags layoutFlags, output, half string) error {
	runner, cfg, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := c.computeLayout(ctx, runner, cfg, input, flags)
	if err != nil {
		return err
	}
	if half != "" {
		if err := writeHalf(res, half); err != nil {
			return err
		}
	}

	if output == "-" {
		data, err := graph.MarshalLayout(res.Layout)
		if err != nil {
			return err
		}
		_, err = out.Write(append(data, '\n'))
		return err
	}
	if output == "" {
		output = defaultOutput(input, res.Layout.Algorithm+".layout.json")
	}
	if err := graph.WriteLayoutFile(res.Layout, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(res.Layout.Stats)
	if n := res.Layout.Stats.Nodes - res.Layout.Stats.Placed; n > 0 {
		printWarning("%d nodes are not reachable from the root and have no position", n)
	}
	if res.Layout.Algorithm != graph.AlgorithmBubble {
		printNewline()
		printNextStep("Preview", fmt.Sprintf("%s preview %s -a %s", appName, input, res.Layout.Algorithm))
	}
	return nil
}

// computeLayout reads input and runs it through runner behind a spinner.
func (c *CLI) computeLayout(ctx context.Context, runner *pipeline.Runner, cfg config.Config, input string, flags layoutFlags) (*pipeline.Result, error) {
	g, err := readGraph(c.Logger, input)
	if err != nil {
		return nil, err
	}
	if flags.algorithm == "" {
		flags.algorithm = pipeline.DefaultAlgorithm
	}

	opts := pipeline.Options{
		Algorithm: flags.algorithm,
		Root:      flags.root,
		Refresh:   flags.refresh,
		Config:    &cfg,
		Logger:    c.Logger,
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Computing %s layout...", flags.algorithm))
	spinner.Start()
	res, err := runner.Run(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return nil, err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return res, nil
}

func readGraph(logger *log.Logger, input string) (graph.Graph, error) {
	prog := newProgress(logger)
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return g, fmt.Errorf("load graph %s: %w", input, err)
	}
	prog.done(fmt.Sprintf("Read %d nodes and %d edges", g.NodeCount(), g.EdgeCount()))
	return g, nil
}

// defaultOutput replaces the extension of input with suffix.
func defaultOutput(input, suffix string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + suffix
}

// writeHalf writes the half-float position buffer of res to path.
func writeHalf(res *pipeline.Result, path string) error {
	data, err := res.HalfPositions()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write half positions %s: %w", path, err)
	}
	return nil
}

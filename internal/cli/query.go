package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/atlas/pkg/pipeline"
)

// queryFlags select the positions a query runs against and its output.
type queryFlags struct {
	layoutFlags
	asJSON bool
}

func (f *queryFlags) register(cmd *cobra.Command) {
	f.layoutFlags.register(cmd, true)
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print hits as JSON")
}

// queryCommand creates the query command and its subcommands.
func (c *CLI) queryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Find nodes by position",
		Long: `Find nodes by position.

Queries run against the positions stored in the graph document. With
--algorithm the layout is computed first and the query runs against it.`,
	}

	cmd.AddCommand(c.queryNearestCommand())
	cmd.AddCommand(c.queryRadiusCommand())
	cmd.AddCommand(c.queryRectCommand())

	return cmd
}

func (c *CLI) queryNearestCommand() *cobra.Command {
	var (
		flags      queryFlags
		x, y, dist float32
	)
	cmd := &cobra.Command{
		Use:   "nearest [graph.json]",
		Short: "Find the node closest to a point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQuery(cmd.Context(), args[0], flags, func(res *pipeline.Result) ([]pipeline.Hit, error) {
				hit, ok, err := res.Nearest(x, y, dist)
				if err != nil || !ok {
					return nil, err
				}
				return []pipeline.Hit{hit}, nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().Float32Var(&x, "x", 0, "query x")
	cmd.Flags().Float32Var(&y, "y", 0, "query y")
	cmd.Flags().Float32Var(&dist, "max-dist", 0, "ignore nodes farther than this (0 means unbounded)")
	return cmd
}

func (c *CLI) queryRadiusCommand() *cobra.Command {
	var (
		flags     queryFlags
		x, y, rad float32
	)
	cmd := &cobra.Command{
		Use:   "radius [graph.json]",
		Short: "Find the nodes within a distance of a point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQuery(cmd.Context(), args[0], flags, func(res *pipeline.Result) ([]pipeline.Hit, error) {
				return res.InRadius(x, y, rad)
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().Float32Var(&x, "x", 0, "center x")
	cmd.Flags().Float32Var(&y, "y", 0, "center y")
	cmd.Flags().Float32VarP(&rad, "radius", "r", 0, "search radius")
	_ = cmd.MarkFlagRequired("radius")
	return cmd
}

func (c *CLI) queryRectCommand() *cobra.Command {
	var (
		flags                  queryFlags
		minX, minY, maxX, maxY float32
	)
	cmd := &cobra.Command{
		Use:   "rect [graph.json]",
		Short: "Find the nodes inside an axis-aligned rectangle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQuery(cmd.Context(), args[0], flags, func(res *pipeline.Result) ([]pipeline.Hit, error) {
				return res.InRect(minX, minY, maxX, maxY)
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().Float32Var(&minX, "min-x", 0, "left edge")
	cmd.Flags().Float32Var(&minY, "min-y", 0, "bottom edge")
	cmd.Flags().Float32Var(&maxX, "max-x", 0, "right edge")
	cmd.Flags().Float32Var(&maxY, "max-y", 0, "top edge")
	return cmd
}

// runQuery positions the graph and prints the hits of query.
func (c *CLI) runQuery(ctx context.Context, input string, flags queryFlags, query func(*pipeline.Result) ([]pipeline.Hit, error)) error {
	res, err := c.positioned(ctx, input, flags.layoutFlags)
	if err != nil {
		return err
	}
	hits, err := query(res)
	if err != nil {
		return err
	}

	if flags.asJSON {
		if hits == nil {
			hits = []pipeline.Hit{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}
	printHits(hits)
	return nil
}

// positioned loads input with its document positions, or computes a layout
// when an algorithm is set.
func (c *CLI) positioned(ctx context.Context, input string, flags layoutFlags) (*pipeline.Result, error) {
	if flags.algorithm == "" {
		g, err := readGraph(c.Logger, input)
		if err != nil {
			return nil, err
		}
		return pipeline.Load(g)
	}

	runner, cfg, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	return c.computeLayout(ctx, runner, cfg, input, flags)
}

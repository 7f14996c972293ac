package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/atlas/pkg/engine"
	"github.com/matzehuels/atlas/pkg/graph"
	"github.com/matzehuels/atlas/pkg/layout/packing"
)

// graphStats summarizes a loaded graph without laying it out.
type graphStats struct {
	Nodes, Edges     int
	Pinned, Isolated int
	MaxOut, MaxIn    int
	Bounds           engine.Bounds
	HasBounds        bool
	Categories       map[string]int
}

func computeStats(l *graph.Loaded) graphStats {
	e := l.Engine
	s := graphStats{
		Nodes:      e.NodeCount(),
		Edges:      e.EdgeCount(),
		Categories: make(map[string]int),
	}
	s.Bounds, s.HasBounds = e.Bounds()

	for _, id := range e.NodeIDs() {
		out, in := e.OutDegree(id), e.InDegree(id)
		if e.IsNodePinned(id) {
			s.Pinned++
		}
		if out+in == 0 {
			s.Isolated++
		}
		s.MaxOut = max(s.MaxOut, out)
		s.MaxIn = max(s.MaxIn, in)
		if slot, ok := e.SlotOf(id); ok && slot < len(l.Categories) {
			s.Categories[packing.Category(l.Categories[slot]).String()]++
		}
	}
	return s
}

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [graph.json]",
		Short: "Print graph statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGraph(c.Logger, args[0])
			if err != nil {
				return err
			}
			loaded, err := graph.Load(g)
			if err != nil {
				return err
			}
			printGraphStats(computeStats(loaded))
			return nil
		},
	}
}

func printGraphStats(s graphStats) {
	printKeyValue("Nodes", strconv.Itoa(s.Nodes))
	printKeyValue("Edges", strconv.Itoa(s.Edges))
	printKeyValue("Pinned", strconv.Itoa(s.Pinned))
	printKeyValue("Isolated", strconv.Itoa(s.Isolated))
	printKeyValue("Max degree", fmt.Sprintf("%d out, %d in", s.MaxOut, s.MaxIn))
	if s.HasBounds {
		b := s.Bounds
		printKeyValue("Bounds", fmt.Sprintf("[%.1f, %.1f] × [%.1f, %.1f]", b.MinX, b.MaxX, b.MinY, b.MaxY))
	}

	names := make([]string, 0, len(s.Categories))
	for name := range s.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		printDetail("%-10s %d", name, s.Categories[name])
	}
}

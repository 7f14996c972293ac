package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/atlas/pkg/graph"
)

// communitiesCommand creates the communities command.
func (c *CLI) communitiesCommand() *cobra.Command {
	var (
		flags layoutFlags
		top   int
	)

	cmd := &cobra.Command{
		Use:   "communities [graph.json]",
		Short: "Detect communities and summarize them",
		Long: `Detect communities with the Louvain method and print the modularity and
the largest communities. Use 'layout -a community' to write the positions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.algorithm = graph.AlgorithmCommunity
			return c.runCommunities(cmd.Context(), args[0], flags, top)
		},
	}

	flags.register(cmd, false)
	cmd.Flags().IntVar(&top, "top", 10, "number of communities to list")

	return cmd
}

type communitySize struct {
	id      uint32
	members []string
}

func (c *CLI) runCommunities(ctx context.Context, input string, flags layoutFlags, top int) error {
	runner, cfg, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := c.computeLayout(ctx, runner, cfg, input, flags)
	if err != nil {
		return err
	}

	l := res.Layout
	printSuccess("Found %d communities", l.CommunityCount)
	if l.Modularity != nil {
		printKeyValue("Modularity", strconv.FormatFloat(*l.Modularity, 'f', 4, 64))
	}
	printKeyValue("Levels", strconv.Itoa(l.Levels))
	printStats(l.Stats)

	sizes := groupCommunities(l)
	if len(sizes) == 0 {
		return nil
	}
	if top > 0 && len(sizes) > top {
		sizes = sizes[:top]
	}
	printNewline()
	printCommunities(sizes)
	return nil
}

// groupCommunities returns the communities of l, largest first.
func groupCommunities(l graph.Layout) []communitySize {
	byID := make(map[uint32]*communitySize)
	for _, n := range l.Nodes {
		if n.Community == nil {
			continue
		}
		cs, ok := byID[*n.Community]
		if !ok {
			cs = &communitySize{id: *n.Community}
			byID[*n.Community] = cs
		}
		cs.members = append(cs.members, n.ID)
	}

	out := make([]communitySize, 0, len(byID))
	for _, cs := range byID {
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].members) != len(out[j].members) {
			return len(out[i].members) > len(out[j].members)
		}
		return out[i].id < out[j].id
	})
	return out
}

func printCommunities(sizes []communitySize) {
	rows := make([][]string, len(sizes))
	for i, cs := range sizes {
		rows[i] = []string{strconv.FormatUint(uint64(cs.id), 10), strconv.Itoa(len(cs.members)), sample(cs.members, 4)}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("Community", "Size", "Members").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 2:
				return StyleDim
			default:
				return StyleValue
			}
		})
	fmt.Fprintln(out, t.Render())
}

// sample joins the first n ids, noting how many were left out.
func sample(ids []string, n int) string {
	if len(ids) <= n {
		return strings.Join(ids, ", ")
	}
	return fmt.Sprintf("%s, … +%d", strings.Join(ids[:n], ", "), len(ids)-n)
}
